package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// maxCapturedOutput caps each captured stream at 10 MB.
const maxCapturedOutput = 10 * 1024 * 1024

// Result carries the outcome of a captured run. Stdout and Stderr have
// already been redacted.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	Redacted bool
}

// RunCaptured launches argv with the bindings injected, captures both output
// streams, and redacts every occurrence of an injected value before
// returning them. This is the only run path whose output is handed to an
// observer (the MCP layer) rather than the user's own terminal.
func (in *Injector) RunCaptured(ctx context.Context, bindings []Binding, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrNoCommand
	}

	resolved, err := in.resolve(ctx, bindings)
	if err != nil {
		return nil, err
	}

	env, err := buildEnv(os.Environ(), resolved)
	if err != nil {
		return nil, err
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunchFailed, argv[0], err)
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{Duration: duration, Redacted: true}
	redactor := newRedactor(resolved)
	result.Stdout = clip(redactor.Redact(stdout.Bytes()))
	result.Stderr = clip(redactor.Redact(stderr.Bytes()))

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrLaunchFailed, argv[0], runErr)
	}
	return result, nil
}

func clip(data []byte) []byte {
	if len(data) > maxCapturedOutput {
		return data[:maxCapturedOutput]
	}
	return data
}
