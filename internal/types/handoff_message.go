package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HandoffMessage is one mailbox row. Rows accumulate for audit; only the
// newest row per (user, to_component) is visible to receivers. The store
// does not enforce payload shape, receivers validate it.
type HandoffMessage struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UID           string         `gorm:"uniqueIndex;size:36;column:uid" json:"uid"`
	UserID        string         `gorm:"index:idx_handoff_user_to;not null;column:user_id" json:"user_id"`
	FromComponent Component      `gorm:"not null;column:from_component" json:"from_component"`
	ToComponent   Component      `gorm:"index:idx_handoff_user_to;not null;column:to_component" json:"to_component"`
	Payload       datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt     time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (HandoffMessage) TableName() string {
	return "agent_communications"
}

func (m *HandoffMessage) BeforeCreate(tx *gorm.DB) error {
	if m.UID == "" {
		m.UID = uuid.NewString()
	}
	return nil
}
