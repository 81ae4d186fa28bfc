package model

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

/*

Account is a data model for a registered user, either a student or a
school-page admin.

Id: primary key
Handle: login id, unique across all accounts
PasswordHash: bcrypt hash of the credential, never serialized
DisplayName: profile name shown next to published news
Role: "student" or "admin", fixed at sign-up
CreatedAt: time when the account was created

Profile data (DisplayName, Role) is immutable after sign-up.

*/
type Account struct {
	Id           uint      `gorm:"primaryKey" json:"account_id"`
	Handle       string    `gorm:"uniqueIndex;size:20" json:"handle"`
	PasswordHash string    `gorm:"size:200" json:"-"`
	DisplayName  string    `gorm:"size:10" json:"display_name"`
	Role         string    `gorm:"size:10" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
