package rtinfo

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ljust pads s with spaces on the right to width runes.
// Longer strings are returned unchanged.
func ljust(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// rjust pads s with spaces on the left to width runes.
func rjust(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// Minimum inventory column widths: version right-justified, name
// left-justified.
const (
	inventoryVersionWidth = 23
	inventoryNameWidth    = 27
)

// inventoryWidths widens the minimum columns to the longest version of
// either list and the longest default name, so pseudo-versions such as
// v0.0.0-20250514174927-d97ab08b45de keep the rows aligned.
func inventoryWidths(defaults, managed []PackageEntry) (version, name int) {
	version, name = inventoryVersionWidth, inventoryNameWidth
	for _, e := range defaults {
		version = max(version, utf8.RuneCountInString(e.Version))
		name = max(name, utf8.RuneCountInString(e.Name))
	}
	for _, e := range managed {
		version = max(version, utf8.RuneCountInString(e.Version))
	}
	return version, name
}

// InventoryRows lays out two package lists side by side, one row per
// index. The shorter list is padded with blank entries and every row is
// right-trimmed.
func InventoryRows(defaults, managed []PackageEntry) []string {
	vw, nw := inventoryWidths(defaults, managed)
	rows := make([]string, 0, max(len(defaults), len(managed)))
	for i := range max(len(defaults), len(managed)) {
		var left PackageEntry
		if i < len(defaults) {
			left = defaults[i]
		}
		row := rjust(left.Version, vw) + " " + ljust(left.Name, nw)
		if i < len(managed) {
			row += " " + rjust(managed[i].Version, vw) + " " + managed[i].Name
		}
		rows = append(rows, strings.TrimRight(row, " "))
	}
	return rows
}

// String returns a one-line summary of the probe.
func (r *SignalProbeResult) String() string {
	if r == nil {
		return "<nil>"
	}
	unsupported := r.Unsupported.String()
	if unsupported == "" {
		unsupported = "none"
	}
	s := fmt.Sprintf("unsupported: %s (helper pid %d)", unsupported, r.PID)
	if r.DeliveryFailed {
		s += ", TERM delivery rejected"
	}
	return s
}
