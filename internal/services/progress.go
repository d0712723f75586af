package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/types"
)

// Step values are percent-of-module: a module starts at step 1 and is
// complete when its latest entry reaches completedStep.
const (
	startingStep  = 1
	completedStep = 100

	// hoursPerModule feeds the dashboard time estimate.
	hoursPerModule = 2.5

	// streakWindow caps how many recent entries count toward the streak.
	streakWindow = 7
)

// ModuleStart reports a freshly started module.
type ModuleStart struct {
	ModuleNumber int         `json:"module_number"`
	ModuleKey    string      `json:"module_id"`
	Title        string      `json:"title"`
	Topic        types.Topic `json:"topic"`
	CurrentStep  int         `json:"current_step"`
	Message      string      `json:"message"`
}

// ProgressRecord is one saved checkpoint with its performance read.
type ProgressRecord struct {
	ModuleNumber int    `json:"module_number"`
	Step         int    `json:"step"`
	Score        int    `json:"score"`
	Performance  string `json:"performance"`
	Feedback     string `json:"feedback"`
}

// ModuleCompletion reports a finished module and where the path stands.
type ModuleCompletion struct {
	ModuleNumber     int    `json:"module_number"`
	FinalScore       int    `json:"final_score"`
	Performance      string `json:"performance"`
	Certificate      string `json:"certificate"`
	CompletedModules int    `json:"completed_modules"`
	TotalModules     int    `json:"total_modules"`
	PathComplete     bool   `json:"path_complete"`
	NextModule       int    `json:"next_module,omitempty"`
}

// ModuleProgress is the latest state of one module, derived from its most
// recent progress entry.
type ModuleProgress struct {
	ModuleNumber int       `json:"module_number"`
	ModuleKey    string    `json:"module_id"`
	Title        string    `json:"title"`
	CurrentStep  int       `json:"current_step"`
	LatestScore  int       `json:"latest_score"`
	Completed    bool      `json:"completed"`
	LastActivity time.Time `json:"last_activity"`
}

// Overview aggregates a user's standing across the whole path.
type Overview struct {
	UserID            string           `json:"user_id"`
	TotalModules      int              `json:"total_modules"`
	ModulesTracked    int              `json:"modules_tracked"`
	CompletedModules  int              `json:"completed_modules"`
	AverageScore      float64          `json:"average_score"`
	OverallCompletion float64          `json:"overall_completion"`
	Modules           []ModuleProgress `json:"modules"`
}

// LearningModuleView is the dashboard's per-module card.
type LearningModuleView struct {
	Number     int                  `json:"number"`
	Title      string               `json:"title"`
	Topic      types.Topic          `json:"topic"`
	Difficulty types.KnowledgeLevel `json:"difficulty"`
	Duration   string               `json:"duration"`
	Status     string               `json:"status"`
	Progress   int                  `json:"progress"`
}

// DashboardStats is the headline-numbers block of the dashboard.
type DashboardStats struct {
	StreakDays       int     `json:"streak_days"`
	EstimatedHours   float64 `json:"estimated_hours"`
	CompletedModules int     `json:"completed_modules"`
	TotalModules     int     `json:"total_modules"`
	OverallProgress  float64 `json:"overall_progress"`
	NextModule       string  `json:"next_module"`
}

// DifficultyAdaptation recommends the next difficulty move for a module
// from its latest score, customized to the path's learning style.
type DifficultyAdaptation struct {
	ModuleNumber     int                 `json:"module_number"`
	CurrentScore     int                 `json:"current_score"`
	DifficultyChange string              `json:"difficulty_change"`
	Recommendation   string              `json:"recommendation"`
	NextAction       string              `json:"next_action"`
	StyleAdaptation  string              `json:"style_adaptation"`
	LearningStyle    types.LearningStyle `json:"learning_style"`
}

// Module card statuses.
const (
	StatusUpcoming   = "upcoming"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Difficulty moves, from strongest to weakest.
const (
	AdaptIncrease       = "increase"
	AdaptMaintain       = "maintain"
	AdaptSlightDecrease = "slight_decrease"
	AdaptDecrease       = "decrease"
)

type ProgressService interface {
	// StartModule appends the module's first checkpoint. The module must
	// exist in the user's current path.
	StartModule(ctx context.Context, userID string, moduleNumber int) (*ModuleStart, error)
	// SaveProgress appends a checkpoint; it never rewrites earlier ones.
	SaveProgress(ctx context.Context, userID string, moduleNumber, step, score int) (*ProgressRecord, error)
	CompleteModule(ctx context.Context, userID string, moduleNumber, finalScore int) (*ModuleCompletion, error)
	// AdaptDifficulty maps the module's current score to a difficulty move
	// with a style-specific adjustment. Purely advisory; nothing is persisted.
	AdaptDifficulty(ctx context.Context, userID string, moduleNumber, currentScore int) (*DifficultyAdaptation, error)
	Overview(ctx context.Context, userID string) (*Overview, error)
	LearningModules(ctx context.Context, userID string) ([]LearningModuleView, error)
	DashboardStats(ctx context.Context, userID string) (*DashboardStats, error)
	PlanningHandoff(ctx context.Context, userID string) (*ReceivedHandoff[types.PlanningCompletePayload], error)
	// RequestContent mails a content request to the content delivery agent.
	RequestContent(ctx context.Context, userID, requestType string, moduleNumber, stepNumber int) (*types.ContentRequestPayload, error)
	// ContentResponse reads the latest answer the content agent mailed back,
	// (nil, nil) when none exists yet.
	ContentResponse(ctx context.Context, userID string) (*types.ContentResponsePayload, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	pathRepo     repos.LearningPathRepo
	progressRepo repos.ProgressRepo
	router       HandoffRouter
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, pathRepo repos.LearningPathRepo, progressRepo repos.ProgressRepo, router HandoffRouter) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		userRepo:     userRepo,
		pathRepo:     pathRepo,
		progressRepo: progressRepo,
		router:       router,
	}
}

// performanceFor maps a score to its label and feedback line.
func performanceFor(score int) (label, feedback string) {
	switch {
	case score >= 90:
		return "Excellent", "Outstanding work! You've mastered this concept."
	case score >= 80:
		return "Good", "Great job! You have a solid understanding."
	case score >= 70:
		return "Satisfactory", "Good progress! Consider reviewing the key concepts."
	case score >= 60:
		return "Needs Improvement", "You're getting there! Additional practice recommended."
	default:
		return "Requires Review", "Let's review this material together before moving forward."
	}
}

func certificateFor(score int) string {
	switch {
	case score >= 90:
		return "Gold Certificate"
	case score >= 80:
		return "Silver Certificate"
	case score >= 70:
		return "Bronze Certificate"
	default:
		return "Completion Certificate"
	}
}

// completionTierFor is the banner tier reported alongside the certificate;
// its thresholds line up with the certificate tiers, not with the
// checkpoint labels from performanceFor.
func completionTierFor(score int) string {
	switch {
	case score >= 90:
		return "Outstanding"
	case score >= 80:
		return "Excellent"
	case score >= 70:
		return "Good"
	default:
		return "Completed"
	}
}

// pathModules loads the user's current path and its decoded modules.
// Returns a precondition error when no path exists.
func (s *progressService) pathModules(ctx context.Context, userID string) (*types.LearningPath, []types.Module, error) {
	path, err := s.pathRepo.LatestForUser(ctx, nil, userID)
	if err != nil {
		return nil, nil, apperr.Store("latest_learning_path", err)
	}
	if path == nil {
		return nil, nil, apperr.Precondition(
			"no_learning_path",
			"no learning path found for user",
			"Create a learning path first.",
		)
	}
	modules, err := path.ModuleList()
	if err != nil {
		return nil, nil, apperr.Store("decode_modules", err)
	}
	return path, modules, nil
}

func (s *progressService) StartModule(ctx context.Context, userID string, moduleNumber int) (*ModuleStart, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	path, modules, err := s.pathModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	if moduleNumber < 1 || moduleNumber > path.TotalModules {
		return nil, apperr.Validation("module_out_of_range", "module %d does not exist, path has %d modules", moduleNumber, path.TotalModules)
	}

	if err := s.userRepo.CreateIfAbsent(ctx, nil, userID); err != nil {
		return nil, apperr.Store("create_user", err)
	}
	entry := &types.ProgressEntry{
		UserID:     userID,
		ModuleID:   types.ModuleKey(moduleNumber),
		StepNumber: startingStep,
		Score:      0,
	}
	if err := s.progressRepo.Append(ctx, nil, entry); err != nil {
		return nil, apperr.Store("append_progress", err)
	}

	module := modules[moduleNumber-1]
	s.log.Info("module started", "user_id", userID, "module", entry.ModuleID)
	return &ModuleStart{
		ModuleNumber: moduleNumber,
		ModuleKey:    entry.ModuleID,
		Title:        module.Title,
		Topic:        module.Topic,
		CurrentStep:  startingStep,
		Message:      fmt.Sprintf("Started module %d: %s", moduleNumber, module.Title),
	}, nil
}

func (s *progressService) SaveProgress(ctx context.Context, userID string, moduleNumber, step, score int) (*ProgressRecord, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	if moduleNumber < 1 {
		return nil, apperr.Validation("module_out_of_range", "module_number must be positive, got %d", moduleNumber)
	}
	if step < 0 || step > completedStep {
		return nil, apperr.Validation("step_out_of_range", "step must be between 0 and %d, got %d", completedStep, step)
	}
	if score < 0 || score > 100 {
		return nil, apperr.Validation("score_out_of_range", "score must be between 0 and 100, got %d", score)
	}

	if err := s.userRepo.CreateIfAbsent(ctx, nil, userID); err != nil {
		return nil, apperr.Store("create_user", err)
	}
	entry := &types.ProgressEntry{
		UserID:     userID,
		ModuleID:   types.ModuleKey(moduleNumber),
		StepNumber: step,
		Score:      score,
	}
	if err := s.progressRepo.Append(ctx, nil, entry); err != nil {
		return nil, apperr.Store("append_progress", err)
	}

	label, feedback := performanceFor(score)
	return &ProgressRecord{
		ModuleNumber: moduleNumber,
		Step:         step,
		Score:        score,
		Performance:  label,
		Feedback:     feedback,
	}, nil
}

func (s *progressService) CompleteModule(ctx context.Context, userID string, moduleNumber, finalScore int) (*ModuleCompletion, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	if finalScore < 0 || finalScore > 100 {
		return nil, apperr.Validation("score_out_of_range", "final_score must be between 0 and 100, got %d", finalScore)
	}
	path, _, err := s.pathModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	if moduleNumber < 1 || moduleNumber > path.TotalModules {
		return nil, apperr.Validation("module_out_of_range", "module %d does not exist, path has %d modules", moduleNumber, path.TotalModules)
	}

	entry := &types.ProgressEntry{
		UserID:     userID,
		ModuleID:   types.ModuleKey(moduleNumber),
		StepNumber: completedStep,
		Score:      finalScore,
	}
	if err := s.progressRepo.Append(ctx, nil, entry); err != nil {
		return nil, apperr.Store("append_progress", err)
	}

	latest, err := s.latestPerModule(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := 0
	for _, e := range latest {
		if e.StepNumber >= completedStep {
			completed++
		}
	}

	result := &ModuleCompletion{
		ModuleNumber:     moduleNumber,
		FinalScore:       finalScore,
		Performance:      completionTierFor(finalScore),
		Certificate:      certificateFor(finalScore),
		CompletedModules: completed,
		TotalModules:     path.TotalModules,
		PathComplete:     completed >= path.TotalModules,
	}
	if !result.PathComplete && moduleNumber < path.TotalModules {
		result.NextModule = moduleNumber + 1
	}
	s.log.Info("module completed", "user_id", userID, "module", entry.ModuleID, "score", finalScore, "certificate", result.Certificate)
	return result, nil
}

func (s *progressService) AdaptDifficulty(ctx context.Context, userID string, moduleNumber, currentScore int) (*DifficultyAdaptation, error) {
	if userID == "" {
		return nil, apperr.Validation("missing_user_id", "user_id is required")
	}
	if currentScore < 0 || currentScore > 100 {
		return nil, apperr.Validation("score_out_of_range", "current_score must be between 0 and 100, got %d", currentScore)
	}
	path, _, err := s.pathModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	if moduleNumber < 1 || moduleNumber > path.TotalModules {
		return nil, apperr.Validation("module_out_of_range", "module %d does not exist, path has %d modules", moduleNumber, path.TotalModules)
	}

	var change, recommendation, nextAction string
	switch {
	case currentScore >= 90:
		change = AdaptIncrease
		recommendation = "Excellent performance! Let's challenge you with advanced concepts."
		nextAction = "Add bonus advanced materials and accelerated learning path."
	case currentScore >= 80:
		change = AdaptMaintain
		recommendation = "Great work! Continue at current difficulty level."
		nextAction = "Proceed with standard curriculum progression."
	case currentScore >= 60:
		change = AdaptSlightDecrease
		recommendation = "Good effort! Let's reinforce concepts with additional practice."
		nextAction = "Add supplementary exercises and review materials."
	default:
		change = AdaptDecrease
		recommendation = "Let's slow down and focus on fundamentals."
		nextAction = "Switch to basic explanations and guided practice."
	}

	return &DifficultyAdaptation{
		ModuleNumber:     moduleNumber,
		CurrentScore:     currentScore,
		DifficultyChange: change,
		Recommendation:   recommendation,
		NextAction:       nextAction,
		StyleAdaptation:  styleAdaptationFor(path.LearningStyle, change),
		LearningStyle:    path.LearningStyle,
	}, nil
}

// styleAdaptationFor customizes a difficulty move per learning style. Only
// the full decrease gets the simplified variant; a slight decrease keeps the
// current approach.
func styleAdaptationFor(style types.LearningStyle, change string) string {
	switch style {
	case types.StyleVisual:
		switch change {
		case AdaptIncrease:
			return "Add complex charts and advanced visualizations"
		case AdaptDecrease:
			return "Use simpler diagrams and step-by-step visual guides"
		default:
			return "Continue with current visual approach"
		}
	case types.StyleHandsOn:
		switch change {
		case AdaptIncrease:
			return "Introduce advanced simulations and real-world scenarios"
		case AdaptDecrease:
			return "Provide more guided practice and simplified exercises"
		default:
			return "Maintain current interactive approach"
		}
	default:
		switch change {
		case AdaptIncrease:
			return "Add detailed case studies and complex analysis"
		case AdaptDecrease:
			return "Break down concepts into smaller analytical steps"
		default:
			return "Continue with current analytical depth"
		}
	}
}

// latestPerModule reduces the full (newest-first) entry history to the
// most recent entry per module key.
func (s *progressService) latestPerModule(ctx context.Context, userID string) (map[string]*types.ProgressEntry, error) {
	entries, err := s.progressRepo.AllForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("list_progress", err)
	}
	latest := make(map[string]*types.ProgressEntry, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.ModuleID]; !seen {
			latest[e.ModuleID] = e
		}
	}
	return latest, nil
}

func (s *progressService) Overview(ctx context.Context, userID string) (*Overview, error) {
	path, modules, err := s.pathModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestPerModule(ctx, userID)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		UserID:       userID,
		TotalModules: path.TotalModules,
		Modules:      make([]ModuleProgress, 0, len(latest)),
	}
	scoreSum := 0
	for n := 1; n <= path.TotalModules; n++ {
		key := types.ModuleKey(n)
		e, ok := latest[key]
		if !ok {
			continue
		}
		title := ""
		if n <= len(modules) {
			title = modules[n-1].Title
		}
		done := e.StepNumber >= completedStep
		if done {
			overview.CompletedModules++
		}
		overview.Modules = append(overview.Modules, ModuleProgress{
			ModuleNumber: n,
			ModuleKey:    key,
			Title:        title,
			CurrentStep:  e.StepNumber,
			LatestScore:  e.Score,
			Completed:    done,
			LastActivity: e.CompletedAt,
		})
		scoreSum += e.Score
	}
	overview.ModulesTracked = len(overview.Modules)
	if overview.ModulesTracked > 0 {
		overview.AverageScore = round1(float64(scoreSum) / float64(overview.ModulesTracked))
	}
	if path.TotalModules > 0 {
		overview.OverallCompletion = round1(float64(overview.CompletedModules) / float64(path.TotalModules) * 100)
	}
	return overview, nil
}

func (s *progressService) LearningModules(ctx context.Context, userID string) ([]LearningModuleView, error) {
	path, modules, err := s.pathModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := s.latestPerModule(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]LearningModuleView, 0, path.TotalModules)
	for n := 1; n <= path.TotalModules && n <= len(modules); n++ {
		m := modules[n-1]
		view := LearningModuleView{
			Number:     n,
			Title:      m.Title,
			Topic:      m.Topic,
			Difficulty: m.Difficulty,
			Duration:   m.Duration,
			Status:     StatusUpcoming,
		}
		if e, ok := latest[types.ModuleKey(n)]; ok {
			view.Progress = e.StepNumber
			if e.StepNumber >= completedStep {
				view.Status = StatusCompleted
			} else {
				view.Status = StatusInProgress
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *progressService) DashboardStats(ctx context.Context, userID string) (*DashboardStats, error) {
	path, modules, err := s.pathModules(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := s.progressRepo.AllForUser(ctx, nil, userID)
	if err != nil {
		return nil, apperr.Store("list_progress", err)
	}

	latest := make(map[string]*types.ProgressEntry, len(entries))
	for _, e := range entries {
		if _, seen := latest[e.ModuleID]; !seen {
			latest[e.ModuleID] = e
		}
	}

	stats := &DashboardStats{TotalModules: path.TotalModules}

	// Streak approximates recent activity: up to streakWindow most
	// recent entries count one day each.
	stats.StreakDays = len(entries)
	if stats.StreakDays > streakWindow {
		stats.StreakDays = streakWindow
	}

	nextNumber := 0
	firstUpcoming := 0
	hours := 0.0
	for n := 1; n <= path.TotalModules; n++ {
		e, ok := latest[types.ModuleKey(n)]
		if !ok {
			if firstUpcoming == 0 {
				firstUpcoming = n
			}
			continue
		}
		if e.StepNumber >= completedStep {
			stats.CompletedModules++
			hours += hoursPerModule
		} else {
			hours += float64(e.StepNumber) / 100 * hoursPerModule
			if nextNumber == 0 {
				nextNumber = n
			}
		}
	}
	if nextNumber == 0 {
		nextNumber = firstUpcoming
	}
	if nextNumber > 0 && nextNumber <= len(modules) {
		stats.NextModule = modules[nextNumber-1].Title
	} else {
		stats.NextModule = "All modules completed"
	}
	stats.EstimatedHours = round1(hours)
	if path.TotalModules > 0 {
		stats.OverallProgress = round1(float64(stats.CompletedModules) / float64(path.TotalModules) * 100)
	}
	return stats, nil
}

func (s *progressService) PlanningHandoff(ctx context.Context, userID string) (*ReceivedHandoff[types.PlanningCompletePayload], error) {
	msg, err := s.router.Receive(ctx, userID, types.ComponentProgress)
	if err != nil {
		return nil, err
	}
	// The progress mailbox is shared with content replies; only the newest
	// message counts, and it must come from the planning agent.
	if msg == nil || msg.FromComponent != types.ComponentPlanning {
		return nil, apperr.NotFound(
			"no_planning_handoff",
			"no planning handoff found",
			"Create a learning path first.",
		)
	}
	var payload types.PlanningCompletePayload
	if err := DecodePayload(msg, &payload); err != nil {
		return nil, err
	}
	return &ReceivedHandoff[types.PlanningCompletePayload]{Payload: &payload, Message: msg}, nil
}

func (s *progressService) RequestContent(ctx context.Context, userID, requestType string, moduleNumber, stepNumber int) (*types.ContentRequestPayload, error) {
	payload := &types.ContentRequestPayload{
		RequestType:  requestType,
		UserID:       userID,
		ModuleNumber: moduleNumber,
		StepNumber:   stepNumber,
	}
	if err := payload.Validate(); err != nil {
		return nil, apperr.Validation("invalid_content_request", "%v", err)
	}
	if _, err := s.router.Send(ctx, userID, types.ComponentProgress, types.ComponentContent, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *progressService) ContentResponse(ctx context.Context, userID string) (*types.ContentResponsePayload, error) {
	msg, err := s.router.Receive(ctx, userID, types.ComponentProgress)
	if err != nil {
		return nil, err
	}
	// A newest message from planning means no content reply has arrived yet.
	if msg == nil || msg.FromComponent != types.ComponentContent {
		return nil, nil
	}
	var payload types.ContentResponsePayload
	if err := DecodePayload(msg, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
