package model

import "time"

/*

FeedMembership records that a news item belongs to a student's
aggregate feed. One row is written per subscriber when an item is
published (see publisher.FanOut).

StudentID: student whose feed includes the item
NewsID: the news item
CreatedAt: time when fan-out wrote the row

Append-only: rows are written exactly once per (subscriber at publish
time, news item) and survive later unsubscription. This is what
decouples "was subscribed when published" from "is subscribed now".

*/
type FeedMembership struct {
	StudentID uint      `gorm:"primaryKey;autoIncrement:false" json:"student_id"`
	NewsID    uint      `gorm:"primaryKey;autoIncrement:false" json:"news_id"`
	CreatedAt time.Time `json:"created_at"`
}
