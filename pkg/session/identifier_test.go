package session

import (
	"strings"
	"testing"
)

func TestNewID(t *testing.T) {
	id := NewID()

	if id == "" {
		t.Fatal("NewID returned empty string")
	}
	if id != strings.ToLower(id) {
		t.Errorf("id should be lowercase: %s", id)
	}
	if !Valid(id) {
		t.Errorf("NewID output should validate: %s", id)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id: %s", id)
		}
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	if Valid("") || Valid("not-a-ulid!") {
		t.Error("garbage should not validate")
	}
	if !Valid("session-20260901T120000.000000000") {
		t.Error("fallback ids should validate")
	}
	if Valid("session-") {
		t.Error("bare fallback prefix should not validate")
	}
}
