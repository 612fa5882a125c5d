package rtinfo

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"syscall"
)

// Status classifies the outcome of a single report probe.
type Status int

const (
	// StatusFound means the probed entity resolved and produced a value.
	StatusFound Status = iota
	// StatusNotFound means the import or path could not be resolved.
	StatusNotFound
	// StatusLoadError means the import resolved but failed to load.
	StatusLoadError
	// StatusCommandMissing means an external command could not be run at all.
	StatusCommandMissing
	// StatusNoVersion means a command ran but its output carried no version.
	StatusNoVersion
)

var statusNames = map[Status]string{
	StatusFound:          "found",
	StatusNotFound:       "not found",
	StatusLoadError:      "load error",
	StatusCommandMissing: "command missing",
	StatusNoVersion:      "no version",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", s)
}

// ProbeResult represents the outcome of one report probe.
// It is produced and printed immediately, never stored.
type ProbeResult struct {
	// Label is the human-readable name printed in the first column.
	Label string
	// Status classifies the outcome.
	Status Status
	// Value is the extracted value when Status is StatusFound.
	Value string
	// Error is the underlying failure, if any.
	Error error
}

// Found reports whether the probe produced a value.
func (r ProbeResult) Found() bool {
	return r.Status == StatusFound
}

// ErrNotLinked is returned when an import has no binding in this binary.
// Bindings are stripped when building with the rtinfo_minimal tag.
var ErrNotLinked = errors.New("not linked into this binary")

// ErrInvalidSignal is returned when a signal name is not known to the
// running platform. It matches syscall.EINVAL with errors.Is.
var ErrInvalidSignal = fmt.Errorf("invalid signal: %w", syscall.EINVAL)

// LoadError represents a failure to resolve or load an import.
type LoadError struct {
	Import string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Import, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// SignalSet is a lexically sorted list of signal names (e.g. "HUP", "TERM").
type SignalSet []string

// Contains reports whether name is in the set.
func (s SignalSet) Contains(name string) bool {
	return slices.Contains(s, name)
}

func (s SignalSet) String() string {
	return strings.Join(s, " ")
}

// SignalProbeResult holds the outcome of the signal availability probe.
type SignalProbeResult struct {
	// PID is the process id of the helper child. The child has been reaped
	// by the time the result is returned.
	PID int
	// Unsupported lists signals the runtime cannot trap or deliver.
	Unsupported SignalSet
	// DeliveryFailed is true when sending TERM to the child was rejected as
	// unsupported, in which case TERM was appended to Unsupported.
	DeliveryFailed bool
}

// PackageEntry is a (name, version) pair from an installed package index.
type PackageEntry struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
