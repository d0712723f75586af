package services

import (
	"context"
	"strings"
	"testing"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/types"
)

func TestModuleContentRendersLesson(t *testing.T) {
	env := newTestEnv(t)
	svc := env.contentService()
	ctx := context.Background()

	_, err := svc.ModuleContent(ctx, "u1", 1)
	if apperr.KindOf(err) != apperr.KindPrecondition {
		t.Fatalf("expected precondition error without a path, got %v", err)
	}

	buildPathFor(t, env, "u1")

	mc, err := svc.ModuleContent(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("module content: %v", err)
	}
	if mc.Topic != types.TopicBudgeting || mc.Difficulty != types.KnowledgeBeginner {
		t.Fatalf("module 1 should be the beginner budgeting module, got %s/%s", mc.Topic, mc.Difficulty)
	}
	if len(mc.KeyConcepts) == 0 {
		t.Fatal("lesson must carry key concepts")
	}
	for _, part := range []string{mc.Title, mc.Lesson, mc.Example, mc.StyleNote, mc.RiskNote} {
		if !strings.Contains(mc.Rendered, part) {
			t.Fatalf("rendered content missing %q", part)
		}
	}

	_, err = svc.ModuleContent(ctx, "u1", 9)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for module 9 of 3, got %v", err)
	}
}

func TestLessonStepSequence(t *testing.T) {
	env := newTestEnv(t)
	svc := env.contentService()
	ctx := context.Background()
	buildPathFor(t, env, "u1")

	step, err := svc.LessonStep(ctx, "u1", 1, 1)
	if err != nil {
		t.Fatalf("lesson step: %v", err)
	}
	if step.TotalSteps != 5 {
		t.Fatalf("total steps: got %d, want 5", step.TotalSteps)
	}
	if step.NextStep == "" {
		t.Fatal("step 1 of 5 must preview the next step")
	}

	last, err := svc.LessonStep(ctx, "u1", 1, 5)
	if err != nil {
		t.Fatalf("last step: %v", err)
	}
	if last.NextStep != "" {
		t.Fatalf("final step must not preview a next step, got %q", last.NextStep)
	}

	_, err = svc.LessonStep(ctx, "u1", 1, 6)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for step 6, got %v", err)
	}
}

func TestQuizQuestionsMatchModuleDifficulty(t *testing.T) {
	env := newTestEnv(t)
	svc := env.contentService()
	ctx := context.Background()
	buildPathFor(t, env, "u1")

	quiz, err := svc.QuizQuestions(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if quiz.Difficulty != types.KnowledgeBeginner {
		t.Fatalf("quiz difficulty: got %q, want beginner", quiz.Difficulty)
	}
	if len(quiz.Questions) == 0 {
		t.Fatal("quiz must carry questions, with a fallback when the bank has none")
	}
	for _, q := range quiz.Questions {
		if q.Question == "" || len(q.Options) == 0 || q.Correct == "" {
			t.Fatalf("malformed question: %+v", q)
		}
	}
}

func TestLearningStateAndAssessmentStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := env.contentService()
	ctx := context.Background()

	state, err := svc.LearningState(ctx, "u1")
	if err != nil {
		t.Fatalf("empty state: %v", err)
	}
	if state.AssessmentsCompleted != 0 || state.LearningPathExists {
		t.Fatalf("fresh user state: %+v", state)
	}

	status, err := svc.AssessmentStatus(ctx, "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.AssessmentComplete || status.RemainingAssessments != AssessmentGateCount {
		t.Fatalf("fresh user status: %+v", status)
	}

	buildPathFor(t, env, "u1")
	if _, err := env.progressService().StartModule(ctx, "u1", 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	state, err = svc.LearningState(ctx, "u1")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.AssessmentsCompleted != 3 || !state.LearningPathExists || state.TotalModules != 3 || state.ProgressEntries != 1 {
		t.Fatalf("state after activity: %+v", state)
	}
	if state.CurrentModule != 1 || state.CurrentStep != 1 {
		t.Fatalf("current position: got module %d step %d, want 1/1", state.CurrentModule, state.CurrentStep)
	}

	status, err = svc.AssessmentStatus(ctx, "u1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.AssessmentComplete || status.RemainingAssessments != 0 {
		t.Fatalf("status after 3 assessments: %+v", status)
	}
}

func TestProcessPendingAnswersRequest(t *testing.T) {
	env := newTestEnv(t)
	contentSvc := env.contentService()
	progressSvc := env.progressService()
	ctx := context.Background()

	// Empty mailbox: nothing to do.
	response, err := contentSvc.ProcessPending(ctx, "u1")
	if err != nil {
		t.Fatalf("process empty mailbox: %v", err)
	}
	if response != nil {
		t.Fatalf("expected nil response for empty mailbox, got %+v", response)
	}

	buildPathFor(t, env, "u1")
	if _, err := progressSvc.RequestContent(ctx, "u1", types.RequestModuleContent, 1, 0); err != nil {
		t.Fatalf("request content: %v", err)
	}

	response, err = contentSvc.ProcessPending(ctx, "u1")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if response == nil {
		t.Fatal("expected a response for the pending request")
	}
	if response.RespondingAgent != types.ComponentContent || response.Content == "" {
		t.Fatalf("unexpected response: %+v", response)
	}

	// The reply lands in the progress agent's mailbox.
	reply, err := progressSvc.ContentResponse(ctx, "u1")
	if err != nil {
		t.Fatalf("content response: %v", err)
	}
	if reply == nil || reply.RequestType != types.RequestModuleContent {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSendResponseWithoutPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	contentSvc := env.contentService()
	ctx := context.Background()
	buildPathFor(t, env, "u1")

	_, err := contentSvc.SendResponse(ctx, "u1", "get_homework", 1, 0)
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for unknown request type, got %v", err)
	}

	response, err := contentSvc.SendResponse(ctx, "u1", types.RequestLessonStep, 1, 3)
	if err != nil {
		t.Fatalf("send response: %v", err)
	}
	if !strings.Contains(response.Content, "Step 3 of 5") {
		t.Fatalf("unexpected rendered content: %q", response.Content)
	}

	reply, err := env.progressService().ContentResponse(ctx, "u1")
	if err != nil {
		t.Fatalf("content response: %v", err)
	}
	if reply == nil || reply.StepNumber != 3 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}
