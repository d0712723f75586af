package types

import (
	"time"
)

// User rows are created implicitly on first write from any component and
// never deleted.
type User struct {
	ID        string    `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
