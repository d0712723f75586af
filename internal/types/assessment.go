package types

import (
	"time"
)

// Assessment is one classification of a user's free-text answer for one
// topic. Rows accumulate; the newest row per (user, topic) is the current
// value.
type Assessment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         string         `gorm:"index;not null;column:user_id" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Topic          Topic          `gorm:"not null;column:topic" json:"topic"`
	RawResponse    string         `gorm:"column:raw_response" json:"raw_response"`
	KnowledgeLevel KnowledgeLevel `gorm:"not null;column:knowledge_level" json:"knowledge_level"`
	RiskTolerance  RiskTolerance  `gorm:"not null;column:risk_tolerance" json:"risk_tolerance"`
	LearningStyle  LearningStyle  `gorm:"not null;column:learning_style" json:"learning_style"`
	Confidence     float64        `gorm:"not null;column:confidence_score" json:"confidence"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// NeedsTraining reports whether the classified level warrants a learning
// module (beginner or intermediate).
func (a *Assessment) NeedsTraining() bool {
	return a.KnowledgeLevel == KnowledgeBeginner || a.KnowledgeLevel == KnowledgeIntermediate
}
