// Package checkpoint tracks pedagogical milestones for a tutoring session
// and extracts completion markers from assistant replies.
package checkpoint

import (
	"fmt"
	"strings"
)

// Status is a checkpoint's completion state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Marker tokens the tutor embeds in assistant replies, e.g.
// "CHECKPOINT[splitting_insight]: learner proposed splitting the list".
const (
	openMarker  = "CHECKPOINT["
	closeMarker = "]:"
)

// Checkpoint represents a named pedagogical sub-goal.
type Checkpoint struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// Match is one marker extracted from an assistant reply.
type Match struct {
	CheckpointID string `json:"checkpoint_id"`
	Description  string `json:"description"`
}

// Set owns the fixed checkpoints for a session. Status only moves
// forward to Completed, and only through Analyze.
type Set struct {
	checkpoints []Checkpoint
}

// DefaultCheckpoints returns the seeded MergeSort checkpoint list.
// The first milestone starts in progress; the rest are hidden until
// the learner reaches them.
func DefaultCheckpoints() []Checkpoint {
	return []Checkpoint{
		{ID: "inefficiency_discovery", Description: "Understanding sorting inefficiency", Status: StatusInProgress},
		{ID: "splitting_insight", Description: "Discovering divide-and-conquer benefit", Status: StatusNotStarted},
		{ID: "merging_development", Description: "Understanding systematic merging", Status: StatusNotStarted},
		{ID: "recursive_pattern", Description: "Grasping recursive nature", Status: StatusNotStarted},
		{ID: "efficiency_analysis", Description: "Comprehending O(n log n) complexity", Status: StatusNotStarted},
	}
}

// NewSet creates a Set seeded with the default checkpoints.
func NewSet() *Set {
	return &Set{checkpoints: DefaultCheckpoints()}
}

// Analyze scans text line by line for completion markers and returns the
// matches in order of appearance. Each recognized identifier has its
// checkpoint marked Completed as a side effect; a marker naming an
// already-completed checkpoint still yields a Match for display.
// Unrecognized identifiers are silently ignored.
func (s *Set) Analyze(text string) []Match {
	var found []Match

	for _, line := range strings.Split(text, "\n") {
		start := strings.Index(line, openMarker)
		if start < 0 {
			continue
		}
		rest := line[start+len(openMarker):]
		end := strings.Index(rest, closeMarker)
		if end < 0 {
			continue
		}

		id := strings.TrimSpace(rest[:end])
		cp := s.lookup(id)
		if cp == nil {
			continue
		}

		cp.Status = StatusCompleted
		found = append(found, Match{
			CheckpointID: id,
			Description:  strings.TrimSpace(rest[end+len(closeMarker):]),
		})
	}

	return found
}

func (s *Set) lookup(id string) *Checkpoint {
	for i := range s.checkpoints {
		if s.checkpoints[i].ID == id {
			return &s.checkpoints[i]
		}
	}
	return nil
}

// All returns a copy of the current checkpoints in display order.
func (s *Set) All() []Checkpoint {
	out := make([]Checkpoint, len(s.checkpoints))
	copy(out, s.checkpoints)
	return out
}

// Status returns the status of the identified checkpoint.
func (s *Set) Status(id string) (Status, bool) {
	if cp := s.lookup(id); cp != nil {
		return cp.Status, true
	}
	return "", false
}

// CompletedCount returns how many checkpoints are completed.
func (s *Set) CompletedCount() int {
	n := 0
	for _, cp := range s.checkpoints {
		if cp.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Reset restores the seeded checkpoint list.
func (s *Set) Reset() {
	s.checkpoints = DefaultCheckpoints()
}

// Restore replaces the set with previously persisted checkpoints. The
// identifiers must exactly cover the fixed enumerated set; anything else
// is rejected so corrupted state cannot invent milestones.
func (s *Set) Restore(checkpoints []Checkpoint) error {
	seed := DefaultCheckpoints()
	if len(checkpoints) != len(seed) {
		return fmt.Errorf("checkpoint: expected %d checkpoints, got %d", len(seed), len(checkpoints))
	}
	for i, cp := range checkpoints {
		if cp.ID != seed[i].ID {
			return fmt.Errorf("checkpoint: unexpected id %q at position %d", cp.ID, i)
		}
		switch cp.Status {
		case StatusNotStarted, StatusInProgress, StatusCompleted:
		default:
			return fmt.Errorf("checkpoint: invalid status %q for %q", cp.Status, cp.ID)
		}
	}
	s.checkpoints = make([]Checkpoint, len(checkpoints))
	copy(s.checkpoints, checkpoints)
	return nil
}
