package tpl

import (
	"slices"
	"testing"
)

func TestNames(t *testing.T) {
	names := Names()

	if len(names) != len(handlers)-1 {
		t.Errorf("Names() has %d entries, want %d", len(names), len(handlers)-1)
	}

	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}

	for _, want := range []string{"code", "each", "include", "trans"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names() missing %q", want)
		}
	}

	if slices.Contains(names, "") {
		t.Error("Names() contains the variable block")
	}
}
