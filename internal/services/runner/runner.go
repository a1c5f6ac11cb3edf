package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Result captures the outcome of a single external script invocation.
type Result struct {
	Script   string
	ExitCode int
	Log      []string
	Err      error
}

// Succeeded reports whether the script launched and exited zero.
func (r Result) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// LogText joins the captured output lines for persistence and display.
func (r Result) LogText() string {
	return strings.Join(r.Log, "\n")
}

// LogTail returns up to n trailing output lines, newest last.
func (r Result) LogTail(n int) []string {
	if n <= 0 || len(r.Log) <= n {
		return r.Log
	}
	return r.Log[len(r.Log)-n:]
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, workDir string, onLine func(string)) (int, error)
}

// Option configures the runner.
type Option func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// Runner invokes external analysis scripts and captures their combined output.
type Runner struct {
	timeout time.Duration
	exec    Executor
}

// New constructs a script runner with the given per-invocation timeout.
func New(timeoutSeconds int, opts ...Option) *Runner {
	r := &Runner{
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes scriptPath with args in workDir, streaming each combined
// stdout/stderr line to onLine as it is produced. Process-level failures
// (non-zero exit, launch errors) are reported through the Result rather
// than as a returned error; callers decide how to classify them.
func (r *Runner) Run(ctx context.Context, scriptPath string, args []string, workDir string, onLine func(string)) Result {
	result := Result{Script: scriptPath}
	scriptPath = strings.TrimSpace(scriptPath)
	if scriptPath == "" {
		result.ExitCode = -1
		result.Err = errors.New("script path required")
		return result
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	capture := func(line string) {
		result.Log = append(result.Log, line)
		if onLine != nil {
			onLine(line)
		}
	}

	exitCode, err := r.exec.Run(runCtx, scriptPath, args, workDir, capture)
	result.ExitCode = exitCode
	if err != nil {
		if runCtx.Err() != nil {
			err = fmt.Errorf("script timed out or was cancelled: %w", runCtx.Err())
		}
		result.Err = err
		capture(fmt.Sprintf("script error: %v", err))
	}
	return result
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, workDir string, onLine func(string)) (int, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if workDir != "" {
		cmd.Dir = workDir
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start script: %w", err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	forward := func(line string) {
		if onLine == nil {
			fmt.Fprintln(os.Stderr, line)
			return
		}
		mu.Lock()
		onLine(line)
		mu.Unlock()
	}

	wg.Add(2)
	for _, pipe := range []struct{ r interface{ Read([]byte) (int, error) } }{{stdout}, {stderr}} {
		go func(r interface{ Read([]byte) (int, error) }) {
			defer wg.Done()
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				forward(scanner.Text())
			}
		}(pipe.r)
	}

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait script: %w", err)
	}
	return 0, nil
}
