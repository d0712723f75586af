package types

import "fmt"

// Payload schemas per (from, to) pair. The store keeps payloads opaque;
// the receiving side decodes into these and validates.

type KnowledgeArea struct {
	Topic Topic          `json:"topic"`
	Level KnowledgeLevel `json:"level"`
}

type AssessedProfile struct {
	PrimaryRiskTolerance RiskTolerance   `json:"primary_risk_tolerance"`
	PrimaryLearningStyle LearningStyle   `json:"primary_learning_style"`
	KnowledgeAreas       []KnowledgeArea `json:"knowledge_areas"`
}

// AssessmentCompletePayload travels assessment_agent -> planning_agent once
// the assessment gate passes.
type AssessmentCompletePayload struct {
	UserID              string          `json:"user_id"`
	AssessmentComplete  bool            `json:"assessment_complete"`
	TotalTopicsAssessed int             `json:"total_topics_assessed"`
	AssessmentSummary   string          `json:"assessment_summary"`
	UserProfile         AssessedProfile `json:"user_profile"`
	NextAgent           Component       `json:"next_agent"`
}

func (p *AssessmentCompletePayload) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("assessment handoff missing user_id")
	}
	if !p.AssessmentComplete {
		return fmt.Errorf("assessment handoff not marked complete")
	}
	if len(p.UserProfile.KnowledgeAreas) == 0 {
		return fmt.Errorf("assessment handoff carries no knowledge areas")
	}
	return nil
}

// PlanningCompletePayload travels planning_agent -> progress_agent after a
// learning path is persisted.
type PlanningCompletePayload struct {
	UserID            string       `json:"user_id"`
	LearningPathReady bool         `json:"learning_path_ready"`
	LearningPath      PathDocument `json:"learning_path"`
	HandoffMessage    string       `json:"handoff_message"`
	ModulesReady      int          `json:"modules_ready"`
	NextAgent         Component    `json:"next_agent"`
	PlanningComplete  bool         `json:"planning_complete"`
}

func (p *PlanningCompletePayload) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("planning handoff missing user_id")
	}
	if !p.LearningPathReady || !p.PlanningComplete {
		return fmt.Errorf("planning handoff not marked complete")
	}
	if len(p.LearningPath.Modules) == 0 {
		return fmt.Errorf("planning handoff carries no modules")
	}
	return nil
}

// Content request types accepted by the content delivery agent.
const (
	RequestModuleContent = "get_module_content"
	RequestLessonStep    = "get_lesson_step"
	RequestQuizQuestions = "get_quiz_questions"
)

func ValidContentRequestType(requestType string) bool {
	switch requestType {
	case RequestModuleContent, RequestLessonStep, RequestQuizQuestions:
		return true
	}
	return false
}

// ContentRequestPayload travels progress_agent -> content_delivery_agent.
type ContentRequestPayload struct {
	RequestType  string `json:"request_type"`
	UserID       string `json:"user_id"`
	ModuleNumber int    `json:"module_number"`
	StepNumber   int    `json:"step_number"`
}

func (p *ContentRequestPayload) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("content request missing user_id")
	}
	if !ValidContentRequestType(p.RequestType) {
		return fmt.Errorf("unknown request type: %s", p.RequestType)
	}
	return nil
}

// ContentResponsePayload travels content_delivery_agent -> progress_agent
// in answer to a content request.
type ContentResponsePayload struct {
	Content         string    `json:"content"`
	RequestType     string    `json:"request_type"`
	ModuleNumber    int       `json:"module_number"`
	StepNumber      int       `json:"step_number"`
	UserID          string    `json:"user_id"`
	RespondingAgent Component `json:"responding_agent"`
}

func (p *ContentResponsePayload) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("content response missing user_id")
	}
	if p.Content == "" {
		return fmt.Errorf("content response carries no content")
	}
	return nil
}
