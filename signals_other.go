//go:build !unix && !windows

package rtinfo

import (
	"errors"
	"fmt"
	"os"
)

var platformSignals = map[string]os.Signal{
	"INT":  os.Interrupt,
	"KILL": os.Kill,
}

func deliverTerm(*os.Process) error {
	return fmt.Errorf("deliver TERM: %w", errors.ErrUnsupported)
}

func platformUnsupported(error) bool {
	return false
}
