package terminal

import (
	"strings"
	"testing"

	"mergetutor/pkg/checkpoint"
)

func TestMeasureHeight(t *testing.T) {
	tests := []struct {
		name     string
		rendered string
		want     float64
	}{
		{"empty", "", 0},
		{"single line no newline", "hello", 1},
		{"single line with newline", "hello\n", 1},
		{"three lines", "a\nb\nc\n", 3},
		{"trailing text counts", "a\nb", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeasureHeight(tt.rendered); got != tt.want {
				t.Errorf("MeasureHeight(%q) = %f, want %f", tt.rendered, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	var buf strings.Builder
	w := NewWithOutput(&buf, 80)

	rendered := w.UserMessage("  my answer  ")

	if !strings.Contains(rendered, "> my answer") {
		t.Errorf("user message should be trimmed and prefixed: %q", rendered)
	}
	if buf.Len() == 0 {
		t.Error("nothing written to output")
	}
}

func TestAssistantMessage_ReturnsRenderedText(t *testing.T) {
	var buf strings.Builder
	w := NewWithOutput(&buf, 80)

	rendered := w.AssistantMessage("Some **bold** advice")

	if rendered == "" {
		t.Fatal("rendered text should not be empty")
	}
	if MeasureHeight(rendered) < 1 {
		t.Error("rendered block should be measurable")
	}
	if buf.String() == "" {
		t.Error("nothing written to output")
	}
}

func TestCheckpointPanel_HidesUnreachedDescriptions(t *testing.T) {
	var buf strings.Builder
	w := NewWithOutput(&buf, 80)

	cps := checkpoint.DefaultCheckpoints()
	cps[1].Status = checkpoint.StatusCompleted

	w.CheckpointPanel(cps)
	out := buf.String()

	if !strings.Contains(out, cps[1].Description) {
		t.Error("completed checkpoint should show its description")
	}
	if strings.Contains(out, cps[2].Description) {
		t.Error("unreached checkpoint descriptions must stay hidden")
	}
	if !strings.Contains(out, "In Progress") {
		t.Error("in-progress checkpoint should be flagged")
	}
	if !strings.Contains(out, "? ? ?") {
		t.Error("hidden checkpoints render as placeholders")
	}
}
