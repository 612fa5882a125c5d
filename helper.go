package rtinfo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
)

// RunSignalHelper is the body of signal-helper mode. It traps TERM, writes
// a ready line, reads candidate signal names from stdin until EOF and
// writes the space-joined names the platform does not know to stdout.
//
// The TERM handler stays installed until the process exits.
func RunSignalHelper(stdin io.Reader, stdout io.Writer) error {
	return runSignalHelper(stdin, stdout, platformSignals)
}

func runSignalHelper(stdin io.Reader, stdout io.Writer, table map[string]os.Signal) error {
	var unsupported []string

	if err := trapSignal(table, sigTERM); err != nil {
		if !errors.Is(err, syscall.EINVAL) {
			return err
		}
		unsupported = append(unsupported, sigTERM)
	}

	if _, err := fmt.Fprintln(stdout, readyLine); err != nil {
		return fmt.Errorf("signal helper: %w", err)
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("signal helper: read candidates: %w", err)
	}
	for _, name := range strings.Fields(string(data)) {
		if _, ok := table[name]; !ok {
			unsupported = append(unsupported, name)
		}
	}

	if _, err := io.WriteString(stdout, strings.Join(unsupported, " ")); err != nil {
		return fmt.Errorf("signal helper: %w", err)
	}
	return nil
}

// trapSignal installs a handler that ignores the named signal.
// Names missing from table fail with [ErrInvalidSignal].
func trapSignal(table map[string]os.Signal, name string) error {
	sig, ok := table[name]
	if !ok || sig == nil {
		return fmt.Errorf("trap %s: %w", name, ErrInvalidSignal)
	}
	signal.Notify(make(chan os.Signal, 1), sig)
	return nil
}

// SignalNames returns the names of the signals the platform knows.
func SignalNames() []string {
	names := make([]string, 0, len(platformSignals))
	for name := range platformSignals {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
