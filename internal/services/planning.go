package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/content"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/types"
	"github.com/finbridge/finlit-backend/internal/utils"
)

// MinAssessmentsForPath is the builder's own floor; the handoff gate
// upstream requires more, but path construction works from two.
const MinAssessmentsForPath = 2

// ReceivedHandoff pairs a decoded payload with its mailbox envelope so
// callers can report sender and timestamp.
type ReceivedHandoff[T any] struct {
	Payload *T
	Message *types.HandoffMessage
}

// DashboardInsights summarizes the user's plan for the dashboard surface.
type DashboardInsights struct {
	Insights           []string            `json:"insights"`
	LearningPlanExists bool                `json:"learning_plan_exists"`
	RiskTolerance      types.RiskTolerance `json:"risk_tolerance"`
	LearningStyle      types.LearningStyle `json:"learning_style"`
}

type PlanningService interface {
	// BuildLearningPath constructs and persists a new immutable path from
	// the user's latest-per-topic assessments. Fails with a precondition
	// error when fewer than MinAssessmentsForPath exist; nothing is
	// persisted on failure.
	BuildLearningPath(ctx context.Context, userID string) (*types.LearningPath, error)
	// CurrentPath returns (nil, nil) when the user has no path yet.
	CurrentPath(ctx context.Context, userID string) (*types.LearningPath, error)
	AssessmentHandoff(ctx context.Context, userID string) (*ReceivedHandoff[types.AssessmentCompletePayload], error)
	PrepareProgressHandoff(ctx context.Context, userID, message string) (*types.PlanningCompletePayload, error)
	DashboardInsights(ctx context.Context, userID string) (*DashboardInsights, error)
}

type planningService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	assessmentRepo repos.AssessmentRepo
	pathRepo       repos.LearningPathRepo
	router         HandoffRouter
}

func NewPlanningService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, assessmentRepo repos.AssessmentRepo, pathRepo repos.LearningPathRepo, router HandoffRouter) PlanningService {
	return &planningService{
		db:             db,
		log:            baseLog.With("service", "PlanningService"),
		userRepo:       userRepo,
		assessmentRepo: assessmentRepo,
		pathRepo:       pathRepo,
		router:         router,
	}
}

func (s *planningService) BuildLearningPath(ctx context.Context, userID string) (*types.LearningPath, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}

	assessments, err := s.assessmentRepo.LatestPerTopic(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("latest_assessments", err)
	}
	if len(assessments) < MinAssessmentsForPath {
		return nil, apperr.Precondition(
			"insufficient_assessments",
			fmt.Sprintf("need at least %d completed assessments to create a learning path", MinAssessmentsForPath),
			fmt.Sprintf("Complete %d more assessment(s) first.", MinAssessmentsForPath-len(assessments)),
		)
	}

	// Newest assessment wins for the path-wide profile.
	primaryRisk := assessments[0].RiskTolerance
	primaryStyle := assessments[0].LearningStyle

	// Partition by knowledge level, keeping newest-first order within each
	// group. Beginner-derived modules always come first: largest knowledge
	// gap, highest priority.
	var beginner, intermediate, advanced []*types.Assessment
	for _, a := range assessments {
		switch a.KnowledgeLevel {
		case types.KnowledgeBeginner:
			beginner = append(beginner, a)
		case types.KnowledgeIntermediate:
			intermediate = append(intermediate, a)
		default:
			advanced = append(advanced, a)
		}
	}

	var modules []types.Module
	for _, group := range [][]*types.Assessment{beginner, intermediate, advanced} {
		for _, a := range group {
			modules = append(modules, buildModule(a.Topic, a.KnowledgeLevel, primaryStyle, primaryRisk))
		}
	}

	path := &types.LearningPath{
		UserID:            userID,
		RiskTolerance:     primaryRisk,
		LearningStyle:     primaryStyle,
		EstimatedDuration: fmt.Sprintf("%d-%d hours", len(modules)*2, len(modules)*3),
		CreatedBy:         types.ComponentPlanning,
	}
	if err := path.SetModules(modules); err != nil {
		return nil, apperr.Store("encode_modules", err)
	}

	if err := s.userRepo.CreateIfAbsent(ctx, nil, userID); err != nil {
		return nil, apperr.Store("create_user", err)
	}
	if err := s.pathRepo.Append(ctx, nil, path); err != nil {
		return nil, apperr.Store("append_learning_path", err)
	}

	s.log.Info("learning path created", "user_id", userID, "total_modules", path.TotalModules)
	return path, nil
}

// buildModule customizes a (topic, difficulty) template by learning style
// and risk tolerance. Deterministic templating, no generation involved.
func buildModule(topic types.Topic, difficulty types.KnowledgeLevel, style types.LearningStyle, risk types.RiskTolerance) types.Module {
	tpl := content.TemplateFor(topic, difficulty)
	return types.Module{
		Topic:         topic,
		Title:         tpl.Title,
		Difficulty:    difficulty,
		Duration:      tpl.Duration,
		ContentAreas:  tpl.ContentAreas,
		Activities:    content.ActivitiesFor(style),
		RiskFocus:     content.RiskFocusFor(risk),
		LearningStyle: style,
	}
}

func (s *planningService) CurrentPath(ctx context.Context, userID string) (*types.LearningPath, error) {
	path, err := s.pathRepo.LatestForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("latest_learning_path", err)
	}
	return path, nil
}

func (s *planningService) AssessmentHandoff(ctx context.Context, userID string) (*ReceivedHandoff[types.AssessmentCompletePayload], error) {
	msg, err := s.router.Receive(ctx, userID, types.ComponentPlanning)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, apperr.NotFound(
			"no_assessment_handoff",
			"no assessment handoff found",
			"User needs to complete assessment first.",
		)
	}
	var payload types.AssessmentCompletePayload
	if err := DecodePayload(msg, &payload); err != nil {
		return nil, err
	}
	return &ReceivedHandoff[types.AssessmentCompletePayload]{Payload: &payload, Message: msg}, nil
}

func (s *planningService) PrepareProgressHandoff(ctx context.Context, userID, message string) (*types.PlanningCompletePayload, error) {
	path, err := s.pathRepo.LatestForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("latest_learning_path", err)
	}
	if path == nil {
		return nil, apperr.Precondition(
			"no_learning_path",
			"cannot prepare handoff, no learning path exists for user",
			"Create a learning path first.",
		)
	}

	doc, err := path.Document()
	if err != nil {
		return nil, apperr.Store("decode_modules", err)
	}
	payload := &types.PlanningCompletePayload{
		UserID:            userID,
		LearningPathReady: true,
		LearningPath:      doc,
		HandoffMessage:    message,
		ModulesReady:      len(doc.Modules),
		NextAgent:         types.ComponentProgress,
		PlanningComplete:  true,
	}
	if _, err := s.router.Send(ctx, userID, types.ComponentPlanning, types.ComponentProgress, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *planningService) DashboardInsights(ctx context.Context, userID string) (*DashboardInsights, error) {
	path, err := s.pathRepo.LatestForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("latest_learning_path", err)
	}
	if path == nil {
		return &DashboardInsights{
			Insights: []string{
				"Complete your financial assessment to unlock a personalized plan",
			},
			LearningPlanExists: false,
			RiskTolerance:      types.RiskModerate,
			LearningStyle:      types.StyleAnalytical,
		}, nil
	}

	return &DashboardInsights{
		Insights: []string{
			fmt.Sprintf("Risk Profile: %s investor with personalized strategies", utils.TitleWords(string(path.RiskTolerance))),
			fmt.Sprintf("Learning Approach: %s learning optimized for maximum retention", utils.TitleWords(string(path.LearningStyle))),
			fmt.Sprintf("Learning Path: %d personalized modules designed for your level", path.TotalModules),
			fmt.Sprintf("Timeline: %s to complete your financial education", path.EstimatedDuration),
		},
		LearningPlanExists: true,
		RiskTolerance:      path.RiskTolerance,
		LearningStyle:      path.LearningStyle,
	}, nil
}
