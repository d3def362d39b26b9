package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/afuente/examly/internal/achievements"
)

func renderStreak(ach achievements.Achievement) string {
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	printStreak(c, ach)
	return buf.String()
}

func TestPrintStreakShowsNextLevelWhileCompleted(t *testing.T) {
	ach := achievements.Achievement{
		Name:         "Daily Question Streak",
		CurrentValue: 5,
		CurrentLevel: 2,
		NextLevel:    8,
		IsCompleted:  true,
	}
	out := renderStreak(ach)

	if !strings.Contains(out, "next level at 8") {
		t.Fatalf("output %q, want the next-level hint for a mid-table streak", out)
	}
	if !strings.Contains(out, "✅") {
		t.Errorf("output %q, want the completion mark", out)
	}
}

func TestPrintStreakHidesHintAtTopLevel(t *testing.T) {
	ach := achievements.Achievement{
		Name:         "App Usage Streak",
		CurrentValue: 34,
		CurrentLevel: len(achievements.Levels),
		NextLevel:    34,
		IsCompleted:  true,
	}
	out := renderStreak(ach)

	if strings.Contains(out, "next level") {
		t.Fatalf("output %q, the hint must disappear at the top level", out)
	}
}
