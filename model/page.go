package model

import "time"

/*

Page is a data model for a school page that news is published under.

Id: primary key
OwnerID: account id of the admin who created the page, only that admin
may publish to it
Location: school district, e.g. "Seocho-dong"
Name: school display name
CreatedAt: time when the page was created

Pages are never updated or deleted once created.

*/
type Page struct {
	Id        uint      `gorm:"primaryKey" json:"page_id"`
	OwnerID   uint      `gorm:"index" json:"owner_id"`
	Location  string    `gorm:"size:20" json:"location"`
	Name      string    `gorm:"size:20" json:"school_name"`
	CreatedAt time.Time `json:"created_at"`
}
