package questions

import (
	"reflect"
	"testing"
)

func TestIsCorrect(t *testing.T) {
	q := Question{CorrectAnswer: "B"}

	tests := []struct {
		choice string
		want   bool
	}{
		{"B", true},
		{"b", true},
		{" b ", true},
		{"A", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := q.IsCorrect(tt.choice); got != tt.want {
			t.Errorf("IsCorrect(%q) = %v, want %v", tt.choice, got, tt.want)
		}
	}
}

func TestOptionsOrder(t *testing.T) {
	q := Question{OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d"}
	opts := q.Options()
	if len(opts) != 4 {
		t.Fatalf("len(Options()) = %d, want 4", len(opts))
	}
	for i, want := range []string{"A", "B", "C", "D"} {
		if opts[i].Letter != want {
			t.Errorf("Options()[%d].Letter = %q, want %q", i, opts[i].Letter, want)
		}
	}
}

func TestTagList(t *testing.T) {
	tests := []struct {
		tags string
		want []string
	}{
		{"Quality, Scope, Risk", []string{"Quality", "Scope", "Risk"}},
		{"Quality", []string{"Quality"}},
		{"Quality,, Scope", []string{"Quality", "Scope"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := Question{Tags: tt.tags}.TagList()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TagList(%q) = %v, want %v", tt.tags, got, tt.want)
		}
	}
}
