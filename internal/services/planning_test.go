package services

import (
	"context"
	"testing"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/types"
)

func saveResponse(t *testing.T, svc AssessmentService, userID string, topic types.Topic, response string) {
	t.Helper()
	if _, err := svc.SaveAssessment(context.Background(), userID, topic, response); err != nil {
		t.Fatalf("save assessment for %s: %v", topic, err)
	}
}

func TestBuildLearningPathRequiresTwoAssessments(t *testing.T) {
	env := newTestEnv(t)
	assessSvc := env.assessmentService()
	planSvc := env.planningService()
	ctx := context.Background()

	saveResponse(t, assessSvc, "u1", types.TopicBudgeting, "I'm new to budgeting")

	_, err := planSvc.BuildLearningPath(ctx, "u1")
	if apperr.KindOf(err) != apperr.KindPrecondition {
		t.Fatalf("expected precondition error with 1 assessment, got %v", err)
	}

	// Re-assessing the same topic does not help; the builder needs
	// distinct topics.
	saveResponse(t, assessSvc, "u1", types.TopicBudgeting, "still new to budgeting")
	_, err = planSvc.BuildLearningPath(ctx, "u1")
	if apperr.KindOf(err) != apperr.KindPrecondition {
		t.Fatalf("expected precondition error with 1 distinct topic, got %v", err)
	}

	saveResponse(t, assessSvc, "u1", types.TopicRetirementPlanning, "what is a 401k")
	path, err := planSvc.BuildLearningPath(ctx, "u1")
	if err != nil {
		t.Fatalf("build with 2 topics: %v", err)
	}
	if path.TotalModules != 2 {
		t.Fatalf("total modules: got %d, want 2", path.TotalModules)
	}
	if path.EstimatedDuration != "4-6 hours" {
		t.Fatalf("estimated duration: got %q, want %q", path.EstimatedDuration, "4-6 hours")
	}
}

func TestBuildLearningPathOrdersByDifficulty(t *testing.T) {
	env := newTestEnv(t)
	assessSvc := env.assessmentService()
	planSvc := env.planningService()
	ctx := context.Background()

	// Advanced first chronologically, beginner last: the path must still
	// lead with beginner modules.
	saveResponse(t, assessSvc, "u1", types.TopicInvestmentBasics, "I'm experienced and trade regularly")
	saveResponse(t, assessSvc, "u1", types.TopicBudgeting, "I know a little about budgets")
	saveResponse(t, assessSvc, "u1", types.TopicRiskManagement, "I'm new to risk and worried about losing money")

	path, err := planSvc.BuildLearningPath(ctx, "u1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	modules, err := path.ModuleList()
	if err != nil {
		t.Fatalf("module list: %v", err)
	}
	if len(modules) != 3 {
		t.Fatalf("module count: got %d, want 3", len(modules))
	}

	wantOrder := []types.KnowledgeLevel{
		types.KnowledgeBeginner,
		types.KnowledgeIntermediate,
		types.KnowledgeAdvanced,
	}
	for i, want := range wantOrder {
		if modules[i].Difficulty != want {
			t.Fatalf("module %d difficulty: got %q, want %q", i+1, modules[i].Difficulty, want)
		}
	}
	if modules[0].Topic != types.TopicRiskManagement {
		t.Fatalf("first module topic: got %q, want risk_management", modules[0].Topic)
	}

	// Profile comes from the newest assessment, which was conservative.
	if path.RiskTolerance != types.RiskConservative {
		t.Fatalf("path risk tolerance: got %q, want conservative", path.RiskTolerance)
	}
	for _, m := range modules {
		if m.RiskFocus != "Focus on low-risk, stable investment options" {
			t.Fatalf("module risk focus: got %q", m.RiskFocus)
		}
	}
}

func TestRebuildAppendsNewPath(t *testing.T) {
	env := newTestEnv(t)
	assessSvc := env.assessmentService()
	planSvc := env.planningService()
	ctx := context.Background()

	saveResponse(t, assessSvc, "u1", types.TopicBudgeting, "I'm new to budgeting")
	saveResponse(t, assessSvc, "u1", types.TopicFinancialGoals, "no idea where to start")

	first, err := planSvc.BuildLearningPath(ctx, "u1")
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	saveResponse(t, assessSvc, "u1", types.TopicInvestmentBasics, "never bought a stock")
	second, err := planSvc.BuildLearningPath(ctx, "u1")
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if first.UID == second.UID {
		t.Fatal("rebuild must append a new path row, not rewrite the old one")
	}

	current, err := planSvc.CurrentPath(ctx, "u1")
	if err != nil {
		t.Fatalf("current path: %v", err)
	}
	if current == nil || current.UID != second.UID {
		t.Fatal("current path should be the newest one")
	}
	if current.TotalModules != 3 {
		t.Fatalf("current path modules: got %d, want 3", current.TotalModules)
	}
}

func TestPrepareProgressHandoff(t *testing.T) {
	env := newTestEnv(t)
	assessSvc := env.assessmentService()
	planSvc := env.planningService()
	ctx := context.Background()

	_, err := planSvc.PrepareProgressHandoff(ctx, "u1", "path ready")
	if apperr.KindOf(err) != apperr.KindPrecondition {
		t.Fatalf("expected precondition error without a path, got %v", err)
	}

	saveResponse(t, assessSvc, "u1", types.TopicBudgeting, "I'm new to budgeting")
	saveResponse(t, assessSvc, "u1", types.TopicFinancialGoals, "no idea where to start")
	if _, err := planSvc.BuildLearningPath(ctx, "u1"); err != nil {
		t.Fatalf("build: %v", err)
	}

	payload, err := planSvc.PrepareProgressHandoff(ctx, "u1", "path ready")
	if err != nil {
		t.Fatalf("prepare handoff: %v", err)
	}
	if payload.ModulesReady != 2 || !payload.PlanningComplete {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	received, err := env.progressService().PlanningHandoff(ctx, "u1")
	if err != nil {
		t.Fatalf("planning handoff receive: %v", err)
	}
	if received.Payload.LearningPath.TotalModules != 2 {
		t.Fatalf("handoff path modules: got %d, want 2", received.Payload.LearningPath.TotalModules)
	}
}

func TestDashboardInsights(t *testing.T) {
	env := newTestEnv(t)
	planSvc := env.planningService()
	ctx := context.Background()

	insights, err := planSvc.DashboardInsights(ctx, "u1")
	if err != nil {
		t.Fatalf("insights without path: %v", err)
	}
	if insights.LearningPlanExists {
		t.Fatal("no path yet, learning_plan_exists should be false")
	}

	assessSvc := env.assessmentService()
	saveResponse(t, assessSvc, "u1", types.TopicBudgeting, "I'm new to budgeting")
	saveResponse(t, assessSvc, "u1", types.TopicFinancialGoals, "no idea where to start")
	if _, err := planSvc.BuildLearningPath(ctx, "u1"); err != nil {
		t.Fatalf("build: %v", err)
	}

	insights, err = planSvc.DashboardInsights(ctx, "u1")
	if err != nil {
		t.Fatalf("insights with path: %v", err)
	}
	if !insights.LearningPlanExists {
		t.Fatal("learning_plan_exists should be true after building a path")
	}
	if len(insights.Insights) != 4 {
		t.Fatalf("insight lines: got %d, want 4", len(insights.Insights))
	}
}
