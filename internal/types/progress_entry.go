package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ProgressEntry is one append-only progress observation for a module. The
// newest entry per (user, module_id) is the module's current state; a
// module is complete iff that entry has StepNumber == 100.
type ProgressEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;not null;column:user_id" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ModuleID    string    `gorm:"not null;column:module_id" json:"module_id"`
	StepNumber  int       `gorm:"not null;column:step_number" json:"step_number"`
	Score       int       `gorm:"not null;column:score" json:"score"`
	CompletedAt time.Time `gorm:"not null;autoCreateTime;index" json:"completed_at"`
}

func (ProgressEntry) TableName() string {
	return "learning_progress"
}

// ModuleKey renders the opaque module_id for a 1-based module ordinal.
func ModuleKey(moduleNumber int) string {
	return fmt.Sprintf("module_%d", moduleNumber)
}

// ModuleNumberFromKey recovers the ordinal from a module_id, or 0 when the
// key is not in the module_N form.
func ModuleNumberFromKey(moduleID string) int {
	raw, ok := strings.CutPrefix(moduleID, "module_")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
