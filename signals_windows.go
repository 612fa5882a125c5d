//go:build windows

package rtinfo

import (
	"errors"
	"os"
	"syscall"
)

// platformSignals mirrors the C runtime signal set available on Windows.
// HUP, USR1 and USR2 have no equivalent.
var platformSignals = map[string]os.Signal{
	"INT":  syscall.SIGINT,
	"ILL":  syscall.SIGILL,
	"ABRT": syscall.SIGABRT,
	"FPE":  syscall.SIGFPE,
	"KILL": syscall.SIGKILL,
	"SEGV": syscall.SIGSEGV,
	"TERM": syscall.SIGTERM,
}

// deliverTerm fails with EWINDOWS: only Kill can be sent to another
// process on Windows.
func deliverTerm(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

func platformUnsupported(err error) bool {
	return errors.Is(err, syscall.EWINDOWS)
}
