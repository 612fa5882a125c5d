//go:build unix

package rtinfo

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// platformSignals is the signal table of the running platform, keyed by
// name without the SIG prefix.
var platformSignals = map[string]os.Signal{
	"HUP":   unix.SIGHUP,
	"INT":   unix.SIGINT,
	"QUIT":  unix.SIGQUIT,
	"ILL":   unix.SIGILL,
	"TRAP":  unix.SIGTRAP,
	"ABRT":  unix.SIGABRT,
	"BUS":   unix.SIGBUS,
	"FPE":   unix.SIGFPE,
	"KILL":  unix.SIGKILL,
	"USR1":  unix.SIGUSR1,
	"SEGV":  unix.SIGSEGV,
	"USR2":  unix.SIGUSR2,
	"PIPE":  unix.SIGPIPE,
	"ALRM":  unix.SIGALRM,
	"TERM":  unix.SIGTERM,
	"CHLD":  unix.SIGCHLD,
	"CONT":  unix.SIGCONT,
	"STOP":  unix.SIGSTOP,
	"TSTP":  unix.SIGTSTP,
	"TTIN":  unix.SIGTTIN,
	"TTOU":  unix.SIGTTOU,
	"URG":   unix.SIGURG,
	"XCPU":  unix.SIGXCPU,
	"XFSZ":  unix.SIGXFSZ,
	"PROF":  unix.SIGPROF,
	"WINCH": unix.SIGWINCH,
	"SYS":   unix.SIGSYS,
}

func deliverTerm(p *os.Process) error {
	return p.Signal(unix.SIGTERM)
}

func platformUnsupported(err error) bool {
	return errors.Is(err, unix.ENOSYS)
}
