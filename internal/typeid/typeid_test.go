package typeid

import (
	"strings"
	"testing"
)

func TestNewHasPrefix(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"array", NewArrayID, PrefixArray},
		{"structure", NewStructureID, PrefixStructure},
		{"shape", NewShapeID, PrefixShape},
		{"text", NewTextID, PrefixText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix+"_") {
				t.Errorf("id %q lacks prefix %q", id, tt.prefix)
			}
			if err := Validate(id, tt.prefix); err != nil {
				t.Errorf("Validate(%q): %v", id, err)
			}
		})
	}
}

func TestValidateRejectsWrongPrefix(t *testing.T) {
	id := NewShapeID()
	if err := Validate(id, PrefixText); err == nil {
		t.Errorf("Validate(%q, %q) succeeded", id, PrefixText)
	}
	if err := Validate("not-an-id", PrefixShape); err == nil {
		t.Error("Validate accepted garbage")
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewArrayID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
