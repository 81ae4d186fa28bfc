package model

import "time"

/*

NewsItem is a data model for a piece of news published under a school
page.

Id: primary key
PageID: page the item belongs to
AuthorID: account id of the publishing admin, always equals the owning
page's OwnerID (enforced at creation)
Title: title in plain text
Body: content in plain text
CreatedAt: time when the item was published
EditedAt: time of the last edit, nil when never edited
Deleted / DeletedAt: soft-delete marker, the row is kept for audit

Soft delete is deliberately explicit (a flag plus timestamp) rather
than gorm.DeletedAt so that feed queries spell out the filter and
nothing is excluded behind the caller's back.

*/
type NewsItem struct {
	Id        uint       `gorm:"primaryKey" json:"news_id"`
	PageID    uint       `gorm:"index" json:"page_id"`
	AuthorID  uint       `gorm:"index" json:"author_id"`
	Title     string     `gorm:"size:100" json:"title"`
	Body      string     `gorm:"size:500" json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
	Deleted   bool       `json:"-"`
	DeletedAt *time.Time `json:"-"`
}
