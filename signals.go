package rtinfo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// HelperFlag is the hidden command line flag that switches the binary into
// signal-helper mode, see [RunSignalHelper].
const HelperFlag = "signal-helper"

const (
	sigTERM   = "TERM"
	readyLine = "ready"
)

// CandidateSignals are checked against the platform signal table by the
// helper. TERM is handled separately by trapping and delivery.
var CandidateSignals = []string{"HUP", "INT", "USR1", "USR2"}

// SignalSource computes the set of unsupported signals.
type SignalSource interface {
	ProbeSignals() (*SignalProbeResult, error)
}

// Cache for UnsupportedSignals(). The signal table of a platform does not
// change while the process runs, so the helper is spawned at most once.
var (
	cachedSignals  *SignalProbeResult
	signalCacheMu  sync.Mutex
	signalCacheErr error
)

// proberConfig holds the configuration of a signal probe.
type proberConfig struct {
	path    string
	args    []string
	env     []string
	deliver func(*os.Process) error
	logger  *zap.Logger
}

// ProberOption configures a [SignalProber].
type ProberOption func(*proberConfig)

// WithHelperCommand runs path with args as the helper instead of
// re-executing the current binary with --signal-helper.
func WithHelperCommand(path string, args ...string) ProberOption {
	return func(c *proberConfig) {
		c.path = path
		c.args = args
	}
}

// WithHelperEnv appends KEY=VALUE entries to the helper environment.
func WithHelperEnv(env ...string) ProberOption {
	return func(c *proberConfig) {
		c.env = append(c.env, env...)
	}
}

// WithDelivery replaces the function that sends TERM to the helper.
// This is primarily for testing the unsupported-delivery branch.
func WithDelivery(deliver func(*os.Process) error) ProberOption {
	return func(c *proberConfig) {
		c.deliver = deliver
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) ProberOption {
	return func(c *proberConfig) {
		c.logger = l
	}
}

// SignalProber spawns a helper process to find which signals the platform
// cannot trap or deliver.
type SignalProber struct {
	cfg proberConfig
}

// NewSignalProber returns a prober configured by opts.
func NewSignalProber(opts ...ProberOption) *SignalProber {
	cfg := proberConfig{
		deliver: deliverTerm,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &SignalProber{cfg: cfg}
}

// ProbeSignals runs the helper protocol once:
//
//  1. spawn the helper with pipes on stdin and stdout
//  2. write the candidate names and close stdin
//  3. wait for the helper to report its TERM handler is installed
//  4. deliver TERM to the helper
//  5. read the helper output; when delivery was rejected as unsupported,
//     TERM is appended without deduplication
//
// The helper is reaped on every return path. Only a failure to spawn the
// helper is returned as an error.
func (p *SignalProber) ProbeSignals() (*SignalProbeResult, error) {
	log := p.cfg.logger

	path, args := p.cfg.path, p.cfg.args
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("signal probe: locate executable: %w", err)
		}
		path, args = exe, []string{"--" + HelperFlag}
	}

	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), p.cfg.env...)
	stdin, stdout, err := helperPipes(cmd)
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("signal probe: spawn %s: %w", path, err)
	}

	res := &SignalProbeResult{PID: cmd.Process.Pid}
	log.Debug("signal helper started", zap.String("path", path), zap.Int("pid", res.PID))

	defer func() {
		_ = stdin.Close()
		if err := cmd.Wait(); err != nil {
			log.Debug("signal helper exited", zap.Int("pid", res.PID), zap.Error(err))
		}
	}()

	if _, err := io.WriteString(stdin, strings.Join(CandidateSignals, " ")+"\n"); err != nil {
		log.Debug("write candidates", zap.Error(err))
	}
	_ = stdin.Close()

	out := bufio.NewReader(stdout)
	var output strings.Builder
	line, err := out.ReadString('\n')
	if strings.TrimSpace(line) != readyLine {
		// No handshake: whatever arrived is already helper output.
		output.WriteString(line)
		log.Debug("signal helper not ready", zap.String("line", line), zap.Error(err))
	}

	if err := p.cfg.deliver(cmd.Process); err != nil {
		log.Debug("deliver TERM", zap.Int("pid", res.PID), zap.Error(err))
		res.DeliveryFailed = deliveryUnsupported(err)
	}

	rest, err := io.ReadAll(out)
	if err != nil {
		log.Debug("read helper output", zap.Error(err))
	}
	output.Write(rest)

	res.Unsupported = mergeUnsupported(output.String(), res.DeliveryFailed)
	return res, nil
}

// helperPipes connects the helper's stdin and stdout. On failure no pipe
// is left open; after a successful return cmd.Start closes both if it
// fails.
func helperPipes(cmd *exec.Cmd) (io.WriteCloser, io.ReadCloser, error) {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("signal probe: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		if f, ok := cmd.Stdin.(*os.File); ok {
			_ = f.Close()
		}
		return nil, nil, fmt.Errorf("signal probe: stdout pipe: %w", err)
	}
	return stdin, stdout, nil
}

// mergeUnsupported splits the helper output into a sorted set. When
// deliveryFailed is set, TERM is appended even if already present.
func mergeUnsupported(output string, deliveryFailed bool) SignalSet {
	set := SignalSet(strings.Fields(output))
	if deliveryFailed {
		set = append(set, sigTERM)
	}
	slices.Sort(set)
	if set == nil {
		set = SignalSet{}
	}
	return set
}

// deliveryUnsupported reports whether a delivery error means the signal
// cannot be sent on this platform, as opposed to a transient failure such
// as the helper having already exited.
func deliveryUnsupported(err error) bool {
	if err == nil || errors.Is(err, os.ErrProcessDone) {
		return false
	}
	return errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, errors.ErrUnsupported) ||
		platformUnsupported(err)
}

// UnsupportedSignals returns the unsupported signal set of this platform,
// spawning the helper on first use and caching the result.
// Use [ResetSignalCache] to force a new probe.
func UnsupportedSignals() (*SignalProbeResult, error) {
	signalCacheMu.Lock()
	defer signalCacheMu.Unlock()

	if cachedSignals != nil || signalCacheErr != nil {
		return cachedSignals, signalCacheErr
	}

	cachedSignals, signalCacheErr = NewSignalProber().ProbeSignals()
	return cachedSignals, signalCacheErr
}

// ResetSignalCache clears the cached result of [UnsupportedSignals].
func ResetSignalCache() {
	signalCacheMu.Lock()
	defer signalCacheMu.Unlock()
	cachedSignals = nil
	signalCacheErr = nil
}

type cachedSignalSource struct{}

func (cachedSignalSource) ProbeSignals() (*SignalProbeResult, error) {
	return UnsupportedSignals()
}
