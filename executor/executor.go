// Package executor runs external commands with output capture, ordered
// environment overrides, per-attempt timeouts and bounded retries.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/chokrifaysal/releasy/errors"
)

// DefaultShell is the interpreter used by Shell.
const DefaultShell = "/bin/sh"

// DefaultWaitDelay bounds how long Wait blocks for output pipes after the
// child has been killed.
const DefaultWaitDelay = time.Second

// Result holds the output of the last attempt.
type Result struct {
	Stdout   string
	Stderr   string
	Combined string
	ExitCode int
	Attempts int
	Duration time.Duration
	Err      error
}

// Executor defines the interface for command execution.
type Executor interface {
	// Execute runs a command with the given options.
	Execute(ctx context.Context, opts ...Option) (*Result, error)

	// ExecuteWithInput runs a command with stdin input.
	ExecuteWithInput(ctx context.Context, input string, opts ...Option) (*Result, error)
}

// SleepFunc waits between retry attempts. It returns early with the
// context's error when ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// CommandExecutor implements Executor for a fixed program and arguments.
type CommandExecutor struct {
	program string
	args    []string
	options *Options
}

// Options configures command execution behavior.
type Options struct {
	CaptureStdout bool
	CaptureStderr bool

	// CaptureCombined interleaves stdout and stderr into Result.Combined
	// instead of capturing them separately.
	CaptureCombined bool

	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	RetryDelay time.Duration
	RetryOn    func(error) bool

	// Timeout bounds each attempt. Zero means no limit beyond ctx.
	Timeout time.Duration

	// WaitDelay is passed to exec.Cmd.WaitDelay.
	WaitDelay time.Duration

	WorkingDir string

	// Env holds KEY=VALUE overrides appended, in order, to the parent
	// environment. Later entries win.
	Env []string

	StdoutWriter io.Writer
	StderrWriter io.Writer

	Sleep  SleepFunc
	Logger *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// DefaultOptions returns default execution options.
func DefaultOptions() *Options {
	return &Options{
		CaptureStdout: true,
		CaptureStderr: true,
		RetryDelay:    time.Second,
		WaitDelay:     DefaultWaitDelay,
		Sleep:         sleepContext,
		Logger:        slog.New(slog.DiscardHandler),
	}
}

// New creates a CommandExecutor for program and args.
func New(program string, args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: program,
		args:    args,
		options: DefaultOptions(),
	}
}

// Shell creates a CommandExecutor that runs script through DefaultShell.
func Shell(script string) *CommandExecutor {
	return New(DefaultShell, "-c", script)
}

// WrappedExecutor binds a program and shared options so callers only supply
// arguments.
type WrappedExecutor struct {
	program string
	options *Options
}

// NewWrappedExecutor creates an executor for a specific program.
func NewWrappedExecutor(program string, opts ...Option) *WrappedExecutor {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &WrappedExecutor{
		program: program,
		options: options,
	}
}

// Command creates a CommandExecutor for the wrapped program with args.
func (w *WrappedExecutor) Command(args ...string) *CommandExecutor {
	return &CommandExecutor{
		program: w.program,
		args:    args,
		options: w.options,
	}
}

// Execute runs the wrapped program with args.
func (w *WrappedExecutor) Execute(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	result, err := w.Command(args...).Execute(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("%s %s: %w", w.program, strings.Join(args, " "), err)
	}
	return result, nil
}

// String renders the command line.
func (c *CommandExecutor) String() string {
	return strings.TrimSpace(c.program + " " + strings.Join(c.args, " "))
}

// Execute implements the Executor interface.
func (c *CommandExecutor) Execute(ctx context.Context, opts ...Option) (*Result, error) {
	return c.ExecuteWithInput(ctx, "", opts...)
}

// ExecuteWithInput implements the Executor interface with stdin support.
// The command runs up to MaxRetries+1 times, sleeping RetryDelay between
// attempts. The returned result belongs to the last attempt.
func (c *CommandExecutor) ExecuteWithInput(ctx context.Context, input string, opts ...Option) (*Result, error) {
	options := c.mergeOptions(opts...)
	maxAttempts := options.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		result *Result
		err    error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = c.executeOnce(ctx, input, options)
		result.Attempts = attempt

		if err == nil {
			return result, nil
		}

		options.Logger.DebugContext(ctx, "command attempt failed",
			"command", c.String(),
			"attempt", attempt,
			"of", maxAttempts,
			"exit_code", result.ExitCode,
			"error", err,
		)

		if attempt == maxAttempts {
			break
		}
		if options.RetryOn != nil && !options.RetryOn(err) {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if sleepErr := options.Sleep(ctx, options.RetryDelay); sleepErr != nil {
			return result, fmt.Errorf("context cancelled during retry: %w", sleepErr)
		}
	}

	return result, err
}

func (c *CommandExecutor) executeOnce(ctx context.Context, input string, options *Options) (*Result, error) {
	runCtx := ctx
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.program, c.args...)
	cmd.WaitDelay = options.WaitDelay
	c.setupCommand(cmd, input, options)
	stdoutBuf, stderrBuf, combinedBuf := c.setupOutputCapture(cmd, options)

	start := time.Now()
	runErr := cmd.Run()

	result := &Result{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Combined: combinedBuf.String(),
		ExitCode: exitCode(runErr),
		Duration: time.Since(start),
	}

	switch {
	case runErr == nil:
		return result, nil
	case options.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.Err = fmt.Errorf("%w after %s: %s", ErrTimeout, options.Timeout, c.String())
	default:
		result.Err = fmt.Errorf("%w: %s: %w", ErrExecutionFailed, c.String(), runErr)
	}
	return result, result.Err
}

// setupCommand configures the working directory, environment and input.
func (c *CommandExecutor) setupCommand(cmd *exec.Cmd, input string, options *Options) {
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	if len(options.Env) > 0 {
		cmd.Env = append(os.Environ(), options.Env...)
	}

	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
}

// setupOutputCapture configures stdout and stderr writers for the command.
func (c *CommandExecutor) setupOutputCapture(
	cmd *exec.Cmd,
	options *Options,
) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	var stdoutBuf, stderrBuf, combinedBuf bytes.Buffer

	cmd.Stdout = writers(options, &stdoutBuf, &combinedBuf, options.CaptureStdout, options.StdoutWriter)
	cmd.Stderr = writers(options, &stderrBuf, &combinedBuf, options.CaptureStderr, options.StderrWriter)

	return &stdoutBuf, &stderrBuf, &combinedBuf
}

func writers(options *Options, own, combined *bytes.Buffer, capture bool, extra io.Writer) io.Writer {
	var ws []io.Writer
	switch {
	case options.CaptureCombined:
		ws = append(ws, combined)
	case capture:
		ws = append(ws, own)
	}
	if extra != nil {
		ws = append(ws, extra)
	}

	if len(ws) == 0 {
		return nil
	}
	return io.MultiWriter(ws...)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func (c *CommandExecutor) mergeOptions(opts ...Option) *Options {
	merged := *c.options
	merged.Env = append([]string(nil), c.options.Env...)

	for _, opt := range opts {
		opt(&merged)
	}

	if merged.Sleep == nil {
		merged.Sleep = sleepContext
	}
	if merged.Logger == nil {
		merged.Logger = slog.New(slog.DiscardHandler)
	}

	return &merged
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithCapture configures output capture.
func WithCapture(stdout, stderr, combined bool) Option {
	return func(o *Options) {
		o.CaptureStdout = stdout
		o.CaptureStderr = stderr
		o.CaptureCombined = combined
	}
}

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn func(error) bool) Option {
	return func(o *Options) {
		o.RetryOn = fn
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithSleep replaces the wait between retries.
func WithSleep(fn SleepFunc) Option {
	return func(o *Options) {
		o.Sleep = fn
	}
}

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnv appends KEY=VALUE overrides.
func WithEnv(env ...string) Option {
	return func(o *Options) {
		o.Env = append(o.Env, env...)
	}
}

// WithEnvVar appends a single override.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		o.Env = append(o.Env, key+"="+value)
	}
}

// WithStdoutWriter sets an additional stdout writer.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter sets an additional stderr writer.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// SilentMode captures stdout and stderr separately and writes nothing to
// the console unless a writer is set.
func SilentMode() Option {
	return func(o *Options) {
		o.CaptureStdout = true
		o.CaptureStderr = true
		o.CaptureCombined = false
	}
}
