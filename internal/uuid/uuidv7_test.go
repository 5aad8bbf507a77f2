package uuid

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := New()
		if !IsValid(id) {
			t.Fatalf("generated id %q is not a valid UUID", id)
		}
		if id[14] != '7' {
			t.Errorf("expected version 7, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestParse(t *testing.T) {
	id := strings.ToUpper(New())
	parsed, err := Parse(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != strings.ToLower(id) {
		t.Errorf("expected normalised %q, got %q", strings.ToLower(id), parsed)
	}

	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for malformed input")
	}
}
