package domain

import "time"

// User owns holdings and snapshots. Accounts are provisioned elsewhere; this
// service only reads them.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(255);uniqueIndex;not null" json:"username"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
