package services

import (
	"context"
	"testing"

	"github.com/finbridge/finlit-backend/internal/apperr"
	"github.com/finbridge/finlit-backend/internal/types"
)

func seedAssessments(t *testing.T, env *testEnv, userID string, n int) {
	t.Helper()
	ctx := context.Background()
	if err := env.userRepo.CreateIfAbsent(ctx, nil, userID); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for i := 0; i < n; i++ {
		row := &types.Assessment{
			UserID:         userID,
			Topic:          types.TopicBudgeting,
			RawResponse:    "seed",
			KnowledgeLevel: types.KnowledgeBeginner,
			RiskTolerance:  types.RiskModerate,
			LearningStyle:  types.StyleAnalytical,
			Confidence:     0.9,
		}
		if err := env.assessmentRepo.Append(ctx, nil, row); err != nil {
			t.Fatalf("seed assessment %d: %v", i, err)
		}
	}
}

func validPlanningPayload(userID string) *types.AssessmentCompletePayload {
	return &types.AssessmentCompletePayload{
		UserID:              userID,
		AssessmentComplete:  true,
		TotalTopicsAssessed: 3,
		UserProfile: types.AssessedProfile{
			PrimaryRiskTolerance: types.RiskModerate,
			PrimaryLearningStyle: types.StyleAnalytical,
			KnowledgeAreas: []types.KnowledgeArea{
				{Topic: types.TopicBudgeting, Level: types.KnowledgeBeginner},
			},
		},
		NextAgent: types.ComponentPlanning,
	}
}

func TestSendEnforcesAssessmentGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seedAssessments(t, env, "u1", AssessmentGateCount-1)
	_, err := env.router.Send(ctx, "u1", types.ComponentAssessment, types.ComponentPlanning, validPlanningPayload("u1"))
	if apperr.KindOf(err) != apperr.KindPrecondition {
		t.Fatalf("expected precondition error below the gate, got %v", err)
	}

	// Nothing was mailed.
	msg, err := env.router.Receive(ctx, "u1", types.ComponentPlanning)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg != nil {
		t.Fatalf("refused send must not leave a message, got %+v", msg)
	}

	seedAssessments(t, env, "u1", 1)
	if _, err := env.router.Send(ctx, "u1", types.ComponentAssessment, types.ComponentPlanning, validPlanningPayload("u1")); err != nil {
		t.Fatalf("send at the gate: %v", err)
	}
}

func TestGateOnlyGuardsAssessmentToPlanning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// No assessments at all, but progress -> content is unguarded.
	payload := &types.ContentRequestPayload{
		RequestType:  types.RequestModuleContent,
		UserID:       "u1",
		ModuleNumber: 1,
	}
	if _, err := env.router.Send(ctx, "u1", types.ComponentProgress, types.ComponentContent, payload); err != nil {
		t.Fatalf("ungated edge should send freely: %v", err)
	}
}

func TestReceiveLatestOnlyAndIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := &types.ContentRequestPayload{RequestType: types.RequestModuleContent, UserID: "u1", ModuleNumber: 1}
	second := &types.ContentRequestPayload{RequestType: types.RequestQuizQuestions, UserID: "u1", ModuleNumber: 2}
	if _, err := env.router.Send(ctx, "u1", types.ComponentProgress, types.ComponentContent, first); err != nil {
		t.Fatalf("send first: %v", err)
	}
	if _, err := env.router.Send(ctx, "u1", types.ComponentProgress, types.ComponentContent, second); err != nil {
		t.Fatalf("send second: %v", err)
	}

	msg, err := env.router.Receive(ctx, "u1", types.ComponentContent)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg == nil {
		t.Fatal("expected a message")
	}
	var got types.ContentRequestPayload
	if err := DecodePayload(msg, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RequestType != types.RequestQuizQuestions || got.ModuleNumber != 2 {
		t.Fatalf("receive must return the newest message, got %+v", got)
	}

	// Receiving again returns the same message; nothing is consumed.
	again, err := env.router.Receive(ctx, "u1", types.ComponentContent)
	if err != nil {
		t.Fatalf("receive again: %v", err)
	}
	if again == nil || again.UID != msg.UID {
		t.Fatalf("repeat receive should be idempotent, got %+v", again)
	}
}

func TestReceiveIsScopedByUserAndComponent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload := &types.ContentRequestPayload{RequestType: types.RequestModuleContent, UserID: "u1", ModuleNumber: 1}
	if _, err := env.router.Send(ctx, "u1", types.ComponentProgress, types.ComponentContent, payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, tc := range []struct {
		user string
		to   types.Component
	}{
		{"u2", types.ComponentContent},
		{"u1", types.ComponentPlanning},
	} {
		msg, err := env.router.Receive(ctx, tc.user, tc.to)
		if err != nil {
			t.Fatalf("receive %s/%s: %v", tc.user, tc.to, err)
		}
		if msg != nil {
			t.Fatalf("mailbox %s/%s should be empty, got %+v", tc.user, tc.to, msg)
		}
	}
}

func TestSendRejectsInvalidAddressing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	payload := &types.ContentRequestPayload{RequestType: types.RequestModuleContent, UserID: "u1", ModuleNumber: 1}

	tests := []struct {
		name string
		user string
		from types.Component
		to   types.Component
	}{
		{"empty user", "", types.ComponentProgress, types.ComponentContent},
		{"unknown from", "u1", types.Component("billing_agent"), types.ComponentContent},
		{"unknown to", "u1", types.ComponentProgress, types.Component("billing_agent")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.router.Send(ctx, tt.user, tt.from, tt.to, payload)
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodePayloadValidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Valid envelope carrying a payload that fails its own validation once
	// decoded as a different schema.
	payload := &types.ContentRequestPayload{RequestType: types.RequestModuleContent, UserID: "u1", ModuleNumber: 1}
	if _, err := env.router.Send(ctx, "u1", types.ComponentProgress, types.ComponentContent, payload); err != nil {
		t.Fatalf("send: %v", err)
	}
	msg, err := env.router.Receive(ctx, "u1", types.ComponentContent)
	if err != nil || msg == nil {
		t.Fatalf("receive: msg=%v err=%v", msg, err)
	}

	var wrong types.PlanningCompletePayload
	if err := DecodePayload(msg, &wrong); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error decoding mismatched schema, got %v", err)
	}

	if err := DecodePayload(nil, &wrong); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found error for nil message, got %v", err)
	}
}
