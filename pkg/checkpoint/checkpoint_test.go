package checkpoint

import (
	"strings"
	"testing"
)

func TestDefaultCheckpoints_Seed(t *testing.T) {
	cps := DefaultCheckpoints()

	if len(cps) != 5 {
		t.Fatalf("expected 5 seeded checkpoints, got %d", len(cps))
	}
	if cps[0].ID != "inefficiency_discovery" || cps[0].Status != StatusInProgress {
		t.Errorf("first checkpoint should start in progress, got %+v", cps[0])
	}
	for _, cp := range cps[1:] {
		if cp.Status != StatusNotStarted {
			t.Errorf("%s should start not_started, got %s", cp.ID, cp.Status)
		}
	}
}

func TestAnalyze_MarkerInLine(t *testing.T) {
	s := NewSet()

	text := "Great observation!\nCHECKPOINT[splitting_insight]: learner proposed splitting the list\nNow, what next?"
	matches := s.Analyze(text)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].CheckpointID != "splitting_insight" {
		t.Errorf("wrong checkpoint id: %s", matches[0].CheckpointID)
	}
	if matches[0].Description != "learner proposed splitting the list" {
		t.Errorf("wrong description: %q", matches[0].Description)
	}
	if st, _ := s.Status("splitting_insight"); st != StatusCompleted {
		t.Errorf("checkpoint should be completed, got %s", st)
	}
}

func TestAnalyze_MarkerMidLine(t *testing.T) {
	s := NewSet()

	matches := s.Analyze("Well done. CHECKPOINT[merging_development]: merge procedure described")

	if len(matches) != 1 || matches[0].CheckpointID != "merging_development" {
		t.Fatalf("marker not required to start the line, got %v", matches)
	}
}

func TestAnalyze_UnknownIdentifierIgnored(t *testing.T) {
	s := NewSet()

	matches := s.Analyze("CHECKPOINT[quick_sort_mastery]: not one of ours")

	if len(matches) != 0 {
		t.Fatalf("unknown identifiers should be ignored, got %v", matches)
	}
	if s.CompletedCount() != 0 {
		t.Errorf("no checkpoint should be completed")
	}
}

func TestAnalyze_UnterminatedMarkerIgnored(t *testing.T) {
	s := NewSet()

	if matches := s.Analyze("CHECKPOINT[splitting_insight without the closing token"); len(matches) != 0 {
		t.Fatalf("marker without close token should be ignored, got %v", matches)
	}
}

func TestAnalyze_EmptyDescription(t *testing.T) {
	s := NewSet()

	matches := s.Analyze("CHECKPOINT[recursive_pattern]:")

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Description != "" {
		t.Errorf("description should be empty, got %q", matches[0].Description)
	}
}

func TestAnalyze_NoTrailingNewline(t *testing.T) {
	s := NewSet()

	text := "prefix\nCHECKPOINT[efficiency_analysis]: O(n log n) reasoned out"
	if !strings.HasSuffix(text, "out") {
		t.Fatal("test text must not end with newline")
	}

	if matches := s.Analyze(text); len(matches) != 1 {
		t.Fatalf("last line without newline should still match, got %v", matches)
	}
}

func TestAnalyze_RepeatMarkerStillReported(t *testing.T) {
	s := NewSet()

	s.Analyze("CHECKPOINT[splitting_insight]: first time")
	matches := s.Analyze("CHECKPOINT[splitting_insight]: again")

	if len(matches) != 1 {
		t.Fatalf("already-completed checkpoint should still produce a match, got %v", matches)
	}
	if s.CompletedCount() != 1 {
		t.Errorf("completed count should stay 1, got %d", s.CompletedCount())
	}
}

func TestAnalyze_MultipleMarkersInOrder(t *testing.T) {
	s := NewSet()

	text := "CHECKPOINT[inefficiency_discovery]: saw the O(n^2) cost\nCHECKPOINT[splitting_insight]: proposed halving"
	matches := s.Analyze(text)

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].CheckpointID != "inefficiency_discovery" || matches[1].CheckpointID != "splitting_insight" {
		t.Errorf("matches out of order: %v", matches)
	}
	if s.CompletedCount() != 2 {
		t.Errorf("expected 2 completed, got %d", s.CompletedCount())
	}
}

func TestReset_RestoresSeed(t *testing.T) {
	s := NewSet()
	s.Analyze("CHECKPOINT[splitting_insight]: done")

	s.Reset()

	if s.CompletedCount() != 0 {
		t.Errorf("reset should clear completions")
	}
	if st, _ := s.Status("inefficiency_discovery"); st != StatusInProgress {
		t.Errorf("first checkpoint should be back in progress, got %s", st)
	}
}

func TestRestore_ValidatesIdentity(t *testing.T) {
	s := NewSet()

	good := DefaultCheckpoints()
	good[2].Status = StatusCompleted
	if err := s.Restore(good); err != nil {
		t.Fatalf("valid snapshot rejected: %v", err)
	}
	if st, _ := s.Status("merging_development"); st != StatusCompleted {
		t.Errorf("restored status lost")
	}

	short := good[:3]
	if err := s.Restore(short); err == nil {
		t.Error("short snapshot should be rejected")
	}

	renamed := DefaultCheckpoints()
	renamed[0].ID = "bogus"
	if err := s.Restore(renamed); err == nil {
		t.Error("unknown identifier should be rejected")
	}

	badStatus := DefaultCheckpoints()
	badStatus[1].Status = Status("finished")
	if err := s.Restore(badStatus); err == nil {
		t.Error("invalid status should be rejected")
	}
}
