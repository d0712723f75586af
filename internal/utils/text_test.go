package utils

import "testing"

func TestTitleWords(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"investment_basics", "Investment Basics"},
		{"risk_management", "Risk Management"},
		{"budgeting", "Budgeting"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleWords(tt.in); got != tt.want {
			t.Fatalf("TitleWords(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
