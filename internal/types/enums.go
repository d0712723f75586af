package types

// Closed-vocabulary fields from the assessment classifier. Unrecognized
// values always parse to a fixed fallback, never to an empty value.

type KnowledgeLevel string

const (
	KnowledgeBeginner     KnowledgeLevel = "beginner"
	KnowledgeIntermediate KnowledgeLevel = "intermediate"
	KnowledgeAdvanced     KnowledgeLevel = "advanced"
)

func (k KnowledgeLevel) Valid() bool {
	switch k {
	case KnowledgeBeginner, KnowledgeIntermediate, KnowledgeAdvanced:
		return true
	}
	return false
}

func ParseKnowledgeLevel(s string) KnowledgeLevel {
	if k := KnowledgeLevel(s); k.Valid() {
		return k
	}
	return KnowledgeIntermediate
}

type RiskTolerance string

const (
	RiskConservative RiskTolerance = "conservative"
	RiskModerate     RiskTolerance = "moderate"
	RiskAggressive   RiskTolerance = "aggressive"
)

func (r RiskTolerance) Valid() bool {
	switch r {
	case RiskConservative, RiskModerate, RiskAggressive:
		return true
	}
	return false
}

func ParseRiskTolerance(s string) RiskTolerance {
	if r := RiskTolerance(s); r.Valid() {
		return r
	}
	return RiskModerate
}

type LearningStyle string

const (
	StyleVisual     LearningStyle = "visual"
	StyleHandsOn    LearningStyle = "hands-on"
	StyleAnalytical LearningStyle = "analytical"
)

func (l LearningStyle) Valid() bool {
	switch l {
	case StyleVisual, StyleHandsOn, StyleAnalytical:
		return true
	}
	return false
}

func ParseLearningStyle(s string) LearningStyle {
	if l := LearningStyle(s); l.Valid() {
		return l
	}
	return StyleAnalytical
}

// Topic is one of the five curriculum areas the tutor covers.
type Topic string

const (
	TopicInvestmentBasics   Topic = "investment_basics"
	TopicRiskManagement     Topic = "risk_management"
	TopicRetirementPlanning Topic = "retirement_planning"
	TopicBudgeting          Topic = "budgeting"
	TopicFinancialGoals     Topic = "financial_goals"
)

func AllTopics() []Topic {
	return []Topic{
		TopicInvestmentBasics,
		TopicRiskManagement,
		TopicRetirementPlanning,
		TopicBudgeting,
		TopicFinancialGoals,
	}
}

func (t Topic) Valid() bool {
	for _, known := range AllTopics() {
		if t == known {
			return true
		}
	}
	return false
}
