package uuid

import "testing"

func TestNew(t *testing.T) {
	id := New()
	if id == "" {
		t.Fatal("expected non-empty UUID string")
	}
	if !IsValid(id) {
		t.Errorf("New() produced invalid UUID v4: %q", id)
	}
}

func TestNewSyncID_unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewSyncID()
		if seen[id] {
			t.Fatalf("duplicate sync id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"9b2ef5a1-6f3c-4e9d-8a7b-1c2d3e4f5a6b", true},
		{"9B2EF5A1-6F3C-4E9D-8A7B-1C2D3E4F5A6B", true},
		{"", false},
		{"not-a-uuid", false},
		{"9b2ef5a1-6f3c-1e9d-8a7b-1c2d3e4f5a6b", false}, // v1, not v4
		{"9b2ef5a16f3c4e9d8a7b1c2d3e4f5a6b", false},     // no dashes
	}
	for _, tc := range cases {
		if got := IsValid(tc.in); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(New()); err != nil {
		t.Errorf("Validate of fresh UUID failed: %v", err)
	}
	if err := Validate("bogus"); err == nil {
		t.Error("Validate accepted a malformed string")
	}
}
