package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/types"
	"github.com/finbridge/finlit-backend/internal/utils"
)

// Keyword signals checked in fixed precedence order. Beginner signals win
// over advanced ones so a mixed answer never overestimates the user.
var (
	beginnerKeywords     = []string{"never", "don't know", "what is", "confused", "no idea", "help", "scared", "afraid", "new to", "beginner"}
	advancedKeywords     = []string{"comfortable", "know how", "familiar", "experienced", "expert", "confident", "understand", "regularly"}
	intermediateKeywords = []string{"sometimes", "a little", "basic", "okay", "decent", "some", "heard of", "somewhat"}

	conservativeKeywords = []string{"scared", "scary", "afraid", "safe", "conservative", "worried", "nervous", "careful"}
	aggressiveKeywords   = []string{"aggressive", "high risk", "willing to lose", "big returns", "risky"}

	visualKeywords  = []string{"show me", "visual", "charts", "graphs", "see", "pictures"}
	handsOnKeywords = []string{"hands-on", "practice", "try it", "do it myself", "interactive"}
)

// Evaluation is the classifier's output for one (response, topic) pair,
// before persistence fields are attached.
type Evaluation struct {
	Topic          types.Topic          `json:"topic"`
	KnowledgeLevel types.KnowledgeLevel `json:"knowledge_level"`
	RiskTolerance  types.RiskTolerance  `json:"risk_tolerance"`
	LearningStyle  types.LearningStyle  `json:"learning_style"`
	Confidence     float64              `json:"confidence"`
	NeedsTraining  bool                 `json:"needs_training"`
	ResponseText   string               `json:"response_text"`
}

// Evaluate classifies a free-text answer. Deterministic, stateless, and
// total: every input yields an in-vocabulary result with confidence in
// [0, 1].
func Evaluate(response string, topic types.Topic) Evaluation {
	lower := strings.ToLower(response)

	level := types.KnowledgeIntermediate
	confidence := 0.5
	switch {
	case containsAny(lower, beginnerKeywords):
		level = types.KnowledgeBeginner
		confidence = 0.9
	case containsAny(lower, advancedKeywords):
		level = types.KnowledgeAdvanced
		confidence = 0.8
	case containsAny(lower, intermediateKeywords):
		level = types.KnowledgeIntermediate
		confidence = 0.7
	}

	risk := types.RiskModerate
	switch {
	case containsAny(lower, conservativeKeywords):
		risk = types.RiskConservative
	case containsAny(lower, aggressiveKeywords):
		risk = types.RiskAggressive
	}

	style := types.StyleAnalytical
	switch {
	case containsAny(lower, visualKeywords):
		style = types.StyleVisual
	case containsAny(lower, handsOnKeywords):
		style = types.StyleHandsOn
	}

	return Evaluation{
		Topic:          topic,
		KnowledgeLevel: level,
		RiskTolerance:  risk,
		LearningStyle:  style,
		Confidence:     confidence,
		NeedsTraining:  level == types.KnowledgeBeginner || level == types.KnowledgeIntermediate,
		ResponseText:   response,
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// TopicRecommendations splits the curriculum into topics needing focus and
// topics never assessed.
type TopicRecommendations struct {
	FocusTopics      []string `json:"focus_topics"`
	UnassessedTopics []string `json:"unassessed_topics"`
}

// DatabaseInfo is the debug surface combining store totals with the
// caller's own assessment count.
type DatabaseInfo struct {
	UserAssessments int               `json:"user_assessments"`
	Stats           *types.StoreStats `json:"stats"`
}

type AssessmentService interface {
	// SaveAssessment classifies the response and appends the result; the
	// user row is created on first write.
	SaveAssessment(ctx context.Context, userID string, topic types.Topic, response string) (*Evaluation, error)
	History(ctx context.Context, userID string) ([]*types.Assessment, error)
	// TopicAssessment returns (nil, nil) when the topic was never assessed.
	TopicAssessment(ctx context.Context, userID string, topic types.Topic) (*types.Assessment, error)
	RecommendedTopics(ctx context.Context, userID string) (*TopicRecommendations, error)
	// CompleteAndHandoff sends the assessment-complete message to the
	// planning agent. Refused until the assessment gate passes.
	CompleteAndHandoff(ctx context.Context, userID, summary string) (*types.AssessmentCompletePayload, error)
	DatabaseInfo(ctx context.Context, userID string) (*DatabaseInfo, error)
}

type assessmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	userRepo       repos.UserRepo
	assessmentRepo repos.AssessmentRepo
	statsRepo      repos.StatsRepo
	router         HandoffRouter
}

func NewAssessmentService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, assessmentRepo repos.AssessmentRepo, statsRepo repos.StatsRepo, router HandoffRouter) AssessmentService {
	return &assessmentService{
		db:             db,
		log:            baseLog.With("service", "AssessmentService"),
		userRepo:       userRepo,
		assessmentRepo: assessmentRepo,
		statsRepo:      statsRepo,
		router:         router,
	}
}

func (s *assessmentService) SaveAssessment(ctx context.Context, userID string, topic types.Topic, response string) (*Evaluation, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	if !topic.Valid() {
		return nil, apperr.Validation("unknown_topic", "unknown topic %q", topic)
	}

	eval := Evaluate(response, topic)

	if err := s.userRepo.CreateIfAbsent(ctx, nil, userID); err != nil {
		return nil, apperr.Store("create_user", err)
	}
	row := &types.Assessment{
		UserID:         userID,
		Topic:          eval.Topic,
		RawResponse:    response,
		KnowledgeLevel: eval.KnowledgeLevel,
		RiskTolerance:  eval.RiskTolerance,
		LearningStyle:  eval.LearningStyle,
		Confidence:     eval.Confidence,
	}
	if err := s.assessmentRepo.Append(ctx, nil, row); err != nil {
		return nil, apperr.Store("append_assessment", err)
	}

	s.log.Info("assessment saved", "user_id", userID, "topic", topic, "knowledge_level", eval.KnowledgeLevel)
	return &eval, nil
}

func (s *assessmentService) History(ctx context.Context, userID string) ([]*types.Assessment, error) {
	rows, err := s.assessmentRepo.AllByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("list_assessments", err)
	}
	return rows, nil
}

func (s *assessmentService) TopicAssessment(ctx context.Context, userID string, topic types.Topic) (*types.Assessment, error) {
	if !topic.Valid() {
		return nil, apperr.Validation("unknown_topic", "unknown topic %q", topic)
	}
	row, err := s.assessmentRepo.LatestForTopic(ctx, nil, userID, topic)
	if err != nil {
		return nil, apperr.Store("latest_assessment", err)
	}
	return row, nil
}

func (s *assessmentService) RecommendedTopics(ctx context.Context, userID string) (*TopicRecommendations, error) {
	rows, err := s.assessmentRepo.AllByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("list_assessments", err)
	}

	assessed := make(map[types.Topic]bool, len(rows))
	var focus []string
	for _, row := range rows {
		if !assessed[row.Topic] && row.KnowledgeLevel == types.KnowledgeBeginner {
			focus = append(focus, utils.TitleWords(string(row.Topic)))
		}
		assessed[row.Topic] = true
	}

	var unassessed []string
	for _, topic := range types.AllTopics() {
		if !assessed[topic] {
			unassessed = append(unassessed, utils.TitleWords(string(topic)))
		}
	}

	return &TopicRecommendations{FocusTopics: focus, UnassessedTopics: unassessed}, nil
}

func (s *assessmentService) CompleteAndHandoff(ctx context.Context, userID, summary string) (*types.AssessmentCompletePayload, error) {
	rows, err := s.assessmentRepo.AllByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("list_assessments", err)
	}
	if len(rows) < AssessmentGateCount {
		return nil, apperr.Precondition(
			"assessment_gate",
			fmt.Sprintf("need at least %d topic assessments before creating your complete learning plan, you currently have %d", AssessmentGateCount, len(rows)),
			fmt.Sprintf("Complete %d more assessment(s) first.", AssessmentGateCount-len(rows)),
		)
	}

	areas := make([]types.KnowledgeArea, 0, len(rows))
	for _, row := range rows {
		areas = append(areas, types.KnowledgeArea{Topic: row.Topic, Level: row.KnowledgeLevel})
	}

	// Newest assessment wins for the whole-profile risk and style.
	payload := &types.AssessmentCompletePayload{
		UserID:              userID,
		AssessmentComplete:  true,
		TotalTopicsAssessed: len(rows),
		AssessmentSummary:   summary,
		UserProfile: types.AssessedProfile{
			PrimaryRiskTolerance: rows[0].RiskTolerance,
			PrimaryLearningStyle: rows[0].LearningStyle,
			KnowledgeAreas:       areas,
		},
		NextAgent: types.ComponentPlanning,
	}

	if _, err := s.router.Send(ctx, userID, types.ComponentAssessment, types.ComponentPlanning, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *assessmentService) DatabaseInfo(ctx context.Context, userID string) (*DatabaseInfo, error) {
	stats, err := s.statsRepo.Aggregate(ctx, nil)
	if err != nil {
		return nil, apperr.Store("aggregate_stats", err)
	}
	count, err := s.assessmentRepo.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("count_assessments", err)
	}
	return &DatabaseInfo{UserAssessments: int(count), Stats: stats}, nil
}
