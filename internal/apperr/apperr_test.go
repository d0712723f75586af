package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad_input", "value %d out of range", 7), KindValidation},
		{"precondition", Precondition("gate", "not enough data", "Do more first."), KindPrecondition},
		{"not found", NotFound("missing", "nothing here", ""), KindNotFound},
		{"store", Store("query", errors.New("disk full")), KindStore},
		{"wrapped", fmt.Errorf("outer: %w", Precondition("gate", "not enough data", "")), KindPrecondition},
		{"plain", errors.New("whatever"), KindUnknown},
		{"nil", nil, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStoreHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Store("append_row", cause)
	if err.Error() == cause.Error() {
		t.Fatal("store error must not leak the cause in its message")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause must remain reachable for logs via Unwrap")
	}
}

func TestUserMessageIncludesGuidance(t *testing.T) {
	err := Precondition("gate", "need at least 3 assessments", "Complete 2 more assessment(s) first.")
	want := "need at least 3 assessments Complete 2 more assessment(s) first."
	if got := err.UserMessage(); got != want {
		t.Fatalf("UserMessage: got %q, want %q", got, want)
	}
}
