//go:build rtinfo_minimal

package rtinfo

import "testing"

func TestDefaultRegistry_Minimal(t *testing.T) {
	if got := DefaultRegistry().Imports(); len(got) != 0 {
		t.Fatalf("Imports() = %v, want none in a minimal build", got)
	}
}
