package content

import (
	"strings"
	"testing"

	"github.com/finbridge/finlit-backend/internal/types"
)

func TestTemplateLookupCoversAllTopicsAndLevels(t *testing.T) {
	levels := []types.KnowledgeLevel{
		types.KnowledgeBeginner,
		types.KnowledgeIntermediate,
		types.KnowledgeAdvanced,
	}
	for _, topic := range types.AllTopics() {
		for _, level := range levels {
			tpl := TemplateFor(topic, level)
			if tpl.Title == "" || tpl.Duration == "" {
				t.Fatalf("%s/%s: incomplete template %+v", topic, level, tpl)
			}
			if len(tpl.ContentAreas) == 0 {
				t.Fatalf("%s/%s: template has no content areas", topic, level)
			}
		}
	}
}

func TestTemplateFallback(t *testing.T) {
	tpl := TemplateFor(types.Topic("estate_planning"), types.KnowledgeBeginner)
	if tpl.Title != "Estate Planning - Beginner" {
		t.Fatalf("fallback title: got %q", tpl.Title)
	}
	if tpl.Duration != "1 hour" {
		t.Fatalf("fallback duration: got %q", tpl.Duration)
	}
}

func TestLessonLookup(t *testing.T) {
	lesson := LessonFor(types.TopicInvestmentBasics, types.KnowledgeBeginner)
	if !strings.Contains(lesson.Lesson, "Investment") {
		t.Fatalf("unexpected beginner investment lesson: %q", lesson.Lesson)
	}
	if len(lesson.KeyConcepts) == 0 || lesson.Example == "" {
		t.Fatalf("incomplete lesson: %+v", lesson)
	}

	fallback := LessonFor(types.TopicBudgeting, types.KnowledgeAdvanced)
	if len(fallback.KeyConcepts) == 0 {
		t.Fatal("fallback lesson must still carry concepts")
	}
}

func TestStepsAlwaysFive(t *testing.T) {
	for _, topic := range types.AllTopics() {
		steps := StepsFor(topic)
		if len(steps) != 5 {
			t.Fatalf("%s: got %d steps, want 5", topic, len(steps))
		}
		for i, s := range steps {
			if s.Title == "" || s.Content == "" {
				t.Fatalf("%s step %d is incomplete: %+v", topic, i+1, s)
			}
		}
	}
	if got := StepsFor(types.Topic("estate_planning")); len(got) != 5 {
		t.Fatalf("fallback steps: got %d, want 5", len(got))
	}
}

func TestQuizLookupAndFallback(t *testing.T) {
	quiz := QuizFor(types.TopicInvestmentBasics, types.KnowledgeBeginner)
	if len(quiz) != 3 {
		t.Fatalf("beginner investment quiz: got %d questions, want 3", len(quiz))
	}
	for _, q := range quiz {
		if len(q.Options) != 4 {
			t.Fatalf("question %q: got %d options, want 4", q.Question, len(q.Options))
		}
	}

	fallback := QuizFor(types.TopicFinancialGoals, types.KnowledgeAdvanced)
	if len(fallback) != 1 {
		t.Fatalf("fallback quiz: got %d questions, want 1", len(fallback))
	}
}

func TestStyleAndRiskNotes(t *testing.T) {
	styles := []types.LearningStyle{types.StyleVisual, types.StyleHandsOn, types.StyleAnalytical}
	seen := map[string]bool{}
	for _, style := range styles {
		note := StyleNoteFor(style)
		if note == "" || seen[note] {
			t.Fatalf("style note for %s must be distinct and non-empty", style)
		}
		seen[note] = true
		if len(ActivitiesFor(style)) != 3 {
			t.Fatalf("activities for %s: want 3", style)
		}
	}

	risks := []types.RiskTolerance{types.RiskConservative, types.RiskModerate, types.RiskAggressive}
	seenRisk := map[string]bool{}
	for _, risk := range risks {
		note := RiskNoteFor(risk)
		if note == "" || seenRisk[note] {
			t.Fatalf("risk note for %s must be distinct and non-empty", risk)
		}
		seenRisk[note] = true
		if RiskFocusFor(risk) == "" {
			t.Fatalf("risk focus for %s must not be empty", risk)
		}
	}
}
