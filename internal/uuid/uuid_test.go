// Package uuid provides unit tests for UUID generation and validation.
package uuid

import (
	"sort"
	"testing"
	"time"
)

// TestNew tests that New() generates valid UUID v4 strings.
func TestNew(t *testing.T) {
	id := New()

	if id == "" {
		t.Fatal("Expected non-empty UUID string")
	}
	if !IsValid(id) {
		t.Errorf("Generated UUID does not match v4 format: %s", id)
	}
}

// TestNewUniqueness tests that New() generates unique IDs.
func TestNewUniqueness(t *testing.T) {
	ids := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := New()
		if ids[id] {
			t.Errorf("Duplicate UUID generated: %s", id)
		}
		ids[id] = true
	}
}

// TestNewSortable tests that NewSortable() generates parseable, unique ids.
func TestNewSortable(t *testing.T) {
	ids := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := NewSortable()
		if !IsValidAny(id) {
			t.Fatalf("NewSortable produced invalid UUID: %s", id)
		}
		if ids[id] {
			t.Errorf("Duplicate sortable UUID generated: %s", id)
		}
		ids[id] = true
	}
}

// TestNewSortableOrdering tests that ids generated across distinct
// milliseconds sort in creation order.
func TestNewSortableOrdering(t *testing.T) {
	first := NewSortable()
	time.Sleep(3 * time.Millisecond)
	second := NewSortable()

	pair := []string{second, first}
	sort.Strings(pair)

	if pair[0] != first {
		t.Errorf("Expected %s to sort before %s", first, second)
	}
}

// TestIsValid tests UUID v4 format validation.
func TestIsValid(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid v4", "550e8400-e29b-41d4-a716-446655440000", true},
		{"valid v4 uppercase", "550E8400-E29B-41D4-A716-446655440000", true},
		{"wrong version", "550e8400-e29b-11d4-a716-446655440000", false},
		{"no dashes", "550e8400e29b41d4a716446655440000", false},
		{"empty", "", false},
		{"garbage", "not-a-uuid", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValid(tc.input); got != tc.want {
				t.Errorf("IsValid(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

// TestValidate tests error reporting for malformed ids.
func TestValidate(t *testing.T) {
	if err := Validate(New()); err != nil {
		t.Errorf("Validate rejected a generated id: %v", err)
	}
	if err := Validate(NewSortable()); err != nil {
		t.Errorf("Validate rejected a sortable id: %v", err)
	}
	if err := Validate("bogus"); err == nil {
		t.Error("Validate should reject a malformed id")
	}
}
