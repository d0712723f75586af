package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/content"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/types"
)

// ModuleContent is a fully rendered lesson for one module.
type ModuleContent struct {
	ModuleNumber int                  `json:"module_number"`
	Title        string               `json:"title"`
	Topic        types.Topic          `json:"topic"`
	Difficulty   types.KnowledgeLevel `json:"difficulty"`
	Lesson       string               `json:"lesson"`
	KeyConcepts  []string             `json:"key_concepts"`
	Example      string               `json:"example"`
	StyleNote    string               `json:"style_note"`
	RiskNote     string               `json:"risk_note"`
	Rendered     string               `json:"rendered"`
}

// LessonStepView is one step of a module's fixed five-step sequence.
type LessonStepView struct {
	ModuleNumber int    `json:"module_number"`
	StepNumber   int    `json:"step_number"`
	TotalSteps   int    `json:"total_steps"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	NextStep     string `json:"next_step,omitempty"`
}

// QuizView is the question set for one module at its difficulty.
type QuizView struct {
	ModuleNumber int                    `json:"module_number"`
	Topic        types.Topic            `json:"topic"`
	Difficulty   types.KnowledgeLevel   `json:"difficulty"`
	Questions    []content.QuizQuestion `json:"questions"`
}

// LearningState is the content agent's read-only snapshot of where a user
// stands across the other agents' data. CurrentModule/CurrentStep come from
// the newest progress entry, zero when there is none.
type LearningState struct {
	UserID               string `json:"user_id"`
	AssessmentsCompleted int    `json:"assessments_completed"`
	LearningPathExists   bool   `json:"learning_path_exists"`
	TotalModules         int    `json:"total_modules"`
	ProgressEntries      int    `json:"progress_entries"`
	CurrentModule        int    `json:"current_module"`
	CurrentStep          int    `json:"current_step"`
}

// AssessmentStatus reports how far the user is from the planning gate.
type AssessmentStatus struct {
	AssessmentsCompleted int  `json:"assessments_completed"`
	AssessmentComplete   bool `json:"assessment_complete"`
	RemainingAssessments int  `json:"remaining_assessments"`
}

type ContentService interface {
	ModuleContent(ctx context.Context, userID string, moduleNumber int) (*ModuleContent, error)
	LessonStep(ctx context.Context, userID string, moduleNumber, stepNumber int) (*LessonStepView, error)
	QuizQuestions(ctx context.Context, userID string, moduleNumber int) (*QuizView, error)
	LearningState(ctx context.Context, userID string) (*LearningState, error)
	AssessmentStatus(ctx context.Context, userID string) (*AssessmentStatus, error)
	// ProcessPending answers the latest content request in the agent's
	// mailbox by mailing the rendered content back to the progress agent.
	// Returns (nil, nil) when the mailbox is empty.
	ProcessPending(ctx context.Context, userID string) (*types.ContentResponsePayload, error)
	// SendResponse renders and mails content directly, without a pending
	// request in the mailbox.
	SendResponse(ctx context.Context, userID, requestType string, moduleNumber, stepNumber int) (*types.ContentResponsePayload, error)
}

type contentService struct {
	db             *gorm.DB
	log            *logger.Logger
	assessmentRepo repos.AssessmentRepo
	pathRepo       repos.LearningPathRepo
	progressRepo   repos.ProgressRepo
	router         HandoffRouter
}

func NewContentService(db *gorm.DB, baseLog *logger.Logger, assessmentRepo repos.AssessmentRepo, pathRepo repos.LearningPathRepo, progressRepo repos.ProgressRepo, router HandoffRouter) ContentService {
	return &contentService{
		db:             db,
		log:            baseLog.With("service", "ContentService"),
		assessmentRepo: assessmentRepo,
		pathRepo:       pathRepo,
		progressRepo:   progressRepo,
		router:         router,
	}
}

// moduleAt resolves module N of the user's current path.
func (s *contentService) moduleAt(ctx context.Context, userID string, moduleNumber int) (*types.Module, error) {
	path, err := s.pathRepo.LatestForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("latest_learning_path", err)
	}
	if path == nil {
		return nil, apperr.Precondition(
			"no_learning_path",
			"no learning path found for user",
			"Create a learning path first.",
		)
	}
	modules, err := path.ModuleList()
	if err != nil {
		return nil, apperr.Store("decode_modules", err)
	}
	if moduleNumber < 1 || moduleNumber > len(modules) {
		return nil, apperr.Validation("module_out_of_range", "module %d does not exist, path has %d modules", moduleNumber, len(modules))
	}
	return &modules[moduleNumber-1], nil
}

func (s *contentService) ModuleContent(ctx context.Context, userID string, moduleNumber int) (*ModuleContent, error) {
	module, err := s.moduleAt(ctx, userID, moduleNumber)
	if err != nil {
		return nil, err
	}

	lesson := content.LessonFor(module.Topic, module.Difficulty)
	styleNote := content.StyleNoteFor(module.LearningStyle)
	riskNote := content.RiskNoteFor(riskFromFocus(module.RiskFocus))

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", module.Title)
	fmt.Fprintf(&b, "%s\n\n", lesson.Lesson)
	b.WriteString("## Key Concepts:\n")
	for _, c := range lesson.KeyConcepts {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	fmt.Fprintf(&b, "\n## Example:\n%s\n\n", lesson.Example)
	fmt.Fprintf(&b, "%s\n\n%s\n", styleNote, riskNote)

	return &ModuleContent{
		ModuleNumber: moduleNumber,
		Title:        module.Title,
		Topic:        module.Topic,
		Difficulty:   module.Difficulty,
		Lesson:       lesson.Lesson,
		KeyConcepts:  lesson.KeyConcepts,
		Example:      lesson.Example,
		StyleNote:    styleNote,
		RiskNote:     riskNote,
		Rendered:     b.String(),
	}, nil
}

// riskFromFocus recovers the tolerance a module was planned with from its
// risk-focus line. Modules embed the rendered line, not the enum.
func riskFromFocus(focus string) types.RiskTolerance {
	switch focus {
	case content.RiskFocusFor(types.RiskConservative):
		return types.RiskConservative
	case content.RiskFocusFor(types.RiskAggressive):
		return types.RiskAggressive
	default:
		return types.RiskModerate
	}
}

func (s *contentService) LessonStep(ctx context.Context, userID string, moduleNumber, stepNumber int) (*LessonStepView, error) {
	module, err := s.moduleAt(ctx, userID, moduleNumber)
	if err != nil {
		return nil, err
	}
	steps := content.StepsFor(module.Topic)
	if stepNumber < 1 || stepNumber > len(steps) {
		return nil, apperr.Validation("step_out_of_range", "step must be between 1 and %d, got %d", len(steps), stepNumber)
	}

	step := steps[stepNumber-1]
	view := &LessonStepView{
		ModuleNumber: moduleNumber,
		StepNumber:   stepNumber,
		TotalSteps:   len(steps),
		Title:        step.Title,
		Content:      step.Content,
	}
	if stepNumber < len(steps) {
		view.NextStep = steps[stepNumber].Title
	}
	return view, nil
}

func (s *contentService) QuizQuestions(ctx context.Context, userID string, moduleNumber int) (*QuizView, error) {
	module, err := s.moduleAt(ctx, userID, moduleNumber)
	if err != nil {
		return nil, err
	}
	return &QuizView{
		ModuleNumber: moduleNumber,
		Topic:        module.Topic,
		Difficulty:   module.Difficulty,
		Questions:    content.QuizFor(module.Topic, module.Difficulty),
	}, nil
}

func (s *contentService) LearningState(ctx context.Context, userID string) (*LearningState, error) {
	assessed, err := s.assessmentRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("count_assessments", err)
	}
	path, err := s.pathRepo.LatestForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("latest_learning_path", err)
	}
	entries, err := s.progressRepo.AllForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("list_progress", err)
	}

	state := &LearningState{
		UserID:               userID,
		AssessmentsCompleted: int(assessed),
		ProgressEntries:      len(entries),
	}
	if path != nil {
		state.LearningPathExists = true
		state.TotalModules = path.TotalModules
	}
	if len(entries) > 0 {
		state.CurrentModule = types.ModuleNumberFromKey(entries[0].ModuleID)
		state.CurrentStep = entries[0].StepNumber
	}
	return state, nil
}

func (s *contentService) AssessmentStatus(ctx context.Context, userID string) (*AssessmentStatus, error) {
	assessed, err := s.assessmentRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("count_assessments", err)
	}
	status := &AssessmentStatus{
		AssessmentsCompleted: int(assessed),
		AssessmentComplete:   assessed >= AssessmentGateCount,
	}
	if !status.AssessmentComplete {
		status.RemainingAssessments = AssessmentGateCount - int(assessed)
	}
	return status, nil
}

func (s *contentService) ProcessPending(ctx context.Context, userID string) (*types.ContentResponsePayload, error) {
	msg, err := s.router.Receive(ctx, userID, types.ComponentContent)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	var req types.ContentRequestPayload
	if err := DecodePayload(msg, &req); err != nil {
		return nil, err
	}

	rendered, err := s.renderRequest(ctx, &req)
	if err != nil {
		return nil, err
	}

	response := &types.ContentResponsePayload{
		Content:         rendered,
		RequestType:     req.RequestType,
		ModuleNumber:    req.ModuleNumber,
		StepNumber:      req.StepNumber,
		UserID:          req.UserID,
		RespondingAgent: types.ComponentContent,
	}
	if _, err := s.router.Send(ctx, req.UserID, types.ComponentContent, types.ComponentProgress, response); err != nil {
		return nil, err
	}
	s.log.Info("content request answered", "user_id", req.UserID, "request_type", req.RequestType, "module_number", req.ModuleNumber)
	return response, nil
}

func (s *contentService) SendResponse(ctx context.Context, userID, requestType string, moduleNumber, stepNumber int) (*types.ContentResponsePayload, error) {
	req := &types.ContentRequestPayload{
		RequestType:  requestType,
		UserID:       userID,
		ModuleNumber: moduleNumber,
		StepNumber:   stepNumber,
	}
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation("invalid_content_request", "%v", err)
	}
	rendered, err := s.renderRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	response := &types.ContentResponsePayload{
		Content:         rendered,
		RequestType:     requestType,
		ModuleNumber:    moduleNumber,
		StepNumber:      stepNumber,
		UserID:          userID,
		RespondingAgent: types.ComponentContent,
	}
	if _, err := s.router.Send(ctx, userID, types.ComponentContent, types.ComponentProgress, response); err != nil {
		return nil, err
	}
	return response, nil
}

func (s *contentService) renderRequest(ctx context.Context, req *types.ContentRequestPayload) (string, error) {
	switch req.RequestType {
	case types.RequestModuleContent:
		mc, err := s.ModuleContent(ctx, req.UserID, req.ModuleNumber)
		if err != nil {
			return "", err
		}
		return mc.Rendered, nil
	case types.RequestLessonStep:
		step, err := s.LessonStep(ctx, req.UserID, req.ModuleNumber, req.StepNumber)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "## Step %d of %d: %s\n\n%s\n", step.StepNumber, step.TotalSteps, step.Title, step.Content)
		if step.NextStep != "" {
			fmt.Fprintf(&b, "\nNext up: %s\n", step.NextStep)
		}
		return b.String(), nil
	case types.RequestQuizQuestions:
		quiz, err := s.QuizQuestions(ctx, req.UserID, req.ModuleNumber)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		fmt.Fprintf(&b, "## Quiz: %s (%s)\n\n", quiz.Topic, quiz.Difficulty)
		for i, q := range quiz.Questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
			for _, opt := range q.Options {
				fmt.Fprintf(&b, "   - %s\n", opt)
			}
		}
		return b.String(), nil
	default:
		return "", apperr.Validation("unknown_request_type", "unknown request type: %s", req.RequestType)
	}
}
