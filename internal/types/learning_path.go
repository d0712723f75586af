package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Module is one curriculum unit embedded in a learning path. Serialized as
// JSON inside the path row, not a table of its own.
type Module struct {
	Topic         Topic          `json:"topic"`
	Title         string         `json:"title"`
	Difficulty    KnowledgeLevel `json:"difficulty"`
	Duration      string         `json:"duration"`
	ContentAreas  []string       `json:"content_areas"`
	Activities    []string       `json:"activities"`
	RiskFocus     string         `json:"risk_focus"`
	LearningStyle LearningStyle  `json:"learning_style"`
}

// LearningPath is an immutable snapshot of a user's curriculum. Re-planning
// appends a new row; the newest row is the current path.
type LearningPath struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UID               string         `gorm:"uniqueIndex;size:36;column:uid" json:"uid"`
	UserID            string         `gorm:"index;not null;column:user_id" json:"user_id"`
	User              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	RiskTolerance     RiskTolerance  `gorm:"not null;column:risk_tolerance" json:"risk_tolerance"`
	LearningStyle     LearningStyle  `gorm:"not null;column:learning_style" json:"learning_style"`
	TotalModules      int            `gorm:"not null;column:total_modules" json:"total_modules"`
	EstimatedDuration string         `gorm:"column:estimated_duration" json:"estimated_duration"`
	Modules           datatypes.JSON `gorm:"column:modules" json:"modules"`
	CreatedBy         Component      `gorm:"not null;column:created_by" json:"created_by"`
	CreatedAt         time.Time      `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}

func (p *LearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.UID == "" {
		p.UID = uuid.NewString()
	}
	return nil
}

// ModuleList decodes the embedded module sequence.
func (p *LearningPath) ModuleList() ([]Module, error) {
	if len(p.Modules) == 0 {
		return []Module{}, nil
	}
	var modules []Module
	if err := json.Unmarshal(p.Modules, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (p *LearningPath) SetModules(modules []Module) error {
	raw, err := json.Marshal(modules)
	if err != nil {
		return err
	}
	p.Modules = datatypes.JSON(raw)
	p.TotalModules = len(modules)
	return nil
}

// PathDocument is the wire form of a learning path exchanged through
// handoff payloads.
type PathDocument struct {
	UserID            string        `json:"user_id"`
	RiskTolerance     RiskTolerance `json:"risk_tolerance"`
	LearningStyle     LearningStyle `json:"learning_style"`
	TotalModules      int           `json:"total_modules"`
	EstimatedDuration string        `json:"estimated_duration"`
	Modules           []Module      `json:"modules"`
	CreatedBy         Component     `json:"created_by"`
}

func (p *LearningPath) Document() (PathDocument, error) {
	modules, err := p.ModuleList()
	if err != nil {
		return PathDocument{}, err
	}
	return PathDocument{
		UserID:            p.UserID,
		RiskTolerance:     p.RiskTolerance,
		LearningStyle:     p.LearningStyle,
		TotalModules:      p.TotalModules,
		EstimatedDuration: p.EstimatedDuration,
		Modules:           modules,
		CreatedBy:         p.CreatedBy,
	}, nil
}
