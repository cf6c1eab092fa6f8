package matchid

import (
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	id := New()

	if len(id) != 26 {
		t.Errorf("expected 26 characters, got %d", len(id))
	}
	if err := Validate(id); err != nil {
		t.Errorf("generated ID failed validation: %v", err)
	}
}

func TestNewUnique(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestNewTimeSorted(t *testing.T) {
	var ids []string
	for i := 0; i < 10; i++ {
		ids = append(ids, New())
		time.Sleep(time.Millisecond)
	}

	for i := 1; i < len(ids); i++ {
		if strings.Compare(ids[i-1], ids[i]) >= 0 {
			t.Errorf("IDs not sorted: %s >= %s", ids[i-1], ids[i])
		}
	}
}

type fixedSource struct{ v int }

func (s fixedSource) IntN(n int) int { return s.v % n }

func TestDeterministicSource(t *testing.T) {
	gen := NewGenerator(fixedSource{v: 7})
	a := gen.New()
	b := NewGenerator(fixedSource{v: 7}).New()

	// Same millisecond and same source: only the timestamp may differ.
	if err := Validate(a); err != nil {
		t.Errorf("ID failed validation: %v", err)
	}
	if len(a) != len(b) {
		t.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", New(), false},
		{"too short", "0123456789", true},
		{"too long", strings.Repeat("0", 27), true},
		{"bad first char", "z" + strings.Repeat("0", 25), true},
		{"bad character", "0" + strings.Repeat("0", 24) + "u", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}
