// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate runs a locally hosted text-generation engine as a child
// process. The engine receives the prompt on stdin and writes the completion
// to stdout; every failure mode is folded into a Result so callers always
// get report text back, never an error.
// Implements: prd003-generation (R1-R4, R6);
//
//	docs/ARCHITECTURE § Generation.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/pkg/types"
)

var logger = logging.New("generate")

const (
	// DefaultBinary is the engine executable invoked when none is configured.
	DefaultBinary = "ollama"

	// DefaultModel is the model handed to the engine when none is configured.
	DefaultModel = "llama3"

	// DefaultTimeout bounds a single generation run.
	DefaultTimeout = 180 * time.Second

	// TimeoutMessage replaces the report when the engine runs past its deadline.
	TimeoutMessage = "Warning: timeout reached, the model took too long to respond."
)

// Outcome classifies how a generation run concluded.
type Outcome string

const (
	// OutcomeOK means the engine exited cleanly and produced text.
	OutcomeOK Outcome = "ok"

	// OutcomeEmpty means the engine exited non-zero; no report was produced.
	OutcomeEmpty Outcome = "empty"

	// OutcomeTimeout means the run was cut off at the configured deadline.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeNotFound means the engine binary is not installed.
	OutcomeNotFound Outcome = "not-found"

	// OutcomeFailed covers every other execution failure.
	OutcomeFailed Outcome = "failed"
)

// Result is the tagged outcome of one generation run. Internal callers
// branch on Outcome; the HTTP and email surfaces render Report().
type Result struct {
	Outcome Outcome
	Text    string // trimmed stdout, set only for OutcomeOK
	Detail  string // binary name or error detail for the failure outcomes
}

// OK reports whether the run produced a usable report.
func (r Result) OK() bool { return r.Outcome == OutcomeOK }

// Report renders the consumer-visible string for this result. A non-zero
// engine exit renders as the empty string so callers can tell "no report
// produced" apart from the timeout and not-found warnings.
func (r Result) Report() string {
	switch r.Outcome {
	case OutcomeOK:
		return r.Text
	case OutcomeTimeout:
		return TimeoutMessage
	case OutcomeNotFound:
		return fmt.Sprintf("Error: '%s' not found. Make sure the generation engine is installed and running.", r.Detail)
	case OutcomeFailed:
		return fmt.Sprintf("Unexpected error: %s", r.Detail)
	default:
		return ""
	}
}

// executor abstracts command execution for testing.
type executor interface {
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

var defaultExec executor = &osExecutor{}

// Generator invokes the engine binary with a fixed model and timeout.
type Generator struct {
	binary  string
	model   string
	timeout time.Duration
	exec    executor
}

// New builds a Generator from configuration, filling unset fields with the
// package defaults.
func New(cfg types.GeneratorConfig) *Generator {
	g := &Generator{
		binary:  cfg.Binary,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		exec:    defaultExec,
	}
	if g.binary == "" {
		g.binary = DefaultBinary
	}
	if g.model == "" {
		g.model = DefaultModel
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	return g
}

// Generate runs one prompt through the engine and blocks until the process
// exits or the timeout elapses. The call is synchronous relative to its
// caller; the timeout is the only bound on how long it may stall.
func (g *Generator) Generate(ctx context.Context, prompt string) Result {
	runCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := g.exec.RunPiped(runCtx, g.binary, []string{"run", g.model}, strings.NewReader(prompt), &stdout, &stderr)

	switch {
	case err == nil:
		return Result{Outcome: OutcomeOK, Text: strings.TrimSpace(stdout.String())}

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		logger.WithField("binary", g.binary).Warn("generation timed out")
		return Result{Outcome: OutcomeTimeout}

	case errors.Is(runCtx.Err(), context.Canceled):
		return Result{Outcome: OutcomeFailed, Detail: runCtx.Err().Error()}

	case errors.Is(err, exec.ErrNotFound):
		logger.WithField("binary", g.binary).Error("generation engine not installed")
		return Result{Outcome: OutcomeNotFound, Detail: g.binary}

	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				logger.WithField("stderr", msg).Warn("model returned an error")
			}
			return Result{Outcome: OutcomeEmpty}
		}
		return Result{Outcome: OutcomeFailed, Detail: err.Error()}
	}
}
