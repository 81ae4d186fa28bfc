package model

import "time"

/*

Subscription is the current-state relation of a student following a
school page.

StudentID: subscribing student's account id
PageID: followed page id
CreatedAt: time when the subscription was created

The pair is the primary key, so a student can hold at most one
subscription per page. Unsubscribing deletes the row; it never touches
FeedMembership, which is the historical record.

*/
type Subscription struct {
	StudentID uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	PageID    uint      `gorm:"primaryKey;autoIncrement:false" json:"page_id"`
	CreatedAt time.Time `json:"created_at"`
}
