package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/phrazzld/forgebatch/internal/platform/logger"
	"github.com/phrazzld/forgebatch/internal/task"
)

// Executor runs a descriptor as arguments of a fixed dispatch command and
// waits for it to exit.
type Executor struct {
	command []string
	dir     string
	env     []string
}

// Option customizes an Executor.
type Option func(*Executor)

// WithDir sets the working directory of every child.
func WithDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment of every child.
func WithEnv(env ...string) Option {
	return func(e *Executor) {
		e.env = append(e.env, env...)
	}
}

// NewExecutor creates an Executor dispatching to command, which must name at
// least the program to run.
func NewExecutor(command []string, opts ...Option) (*Executor, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, ErrEmptyCommand
	}
	e := &Executor{command: append([]string(nil), command...)}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CommandLine renders the full command executed for d, as recorded in task logs.
func (e *Executor) CommandLine(d task.Descriptor) string {
	return strings.Join(append(append([]string(nil), e.command...), d.String()), " ")
}

// Execute implements task.Executor. It blocks until the child exits. A child
// that could not be started yields a Result with LaunchErr set and exit code -1.
func (e *Executor) Execute(ctx context.Context, d task.Descriptor) task.Result {
	log := logger.FromContext(ctx)
	result := task.Result{Command: e.CommandLine(d), ExitCode: -1}

	args, err := splitDescriptor(d)
	if err != nil {
		result.LaunchErr = err
		return result
	}

	argv := append(append([]string(nil), e.command[1:]...), args...)
	cmd := exec.CommandContext(ctx, e.command[0], argv...)
	cmd.Dir = e.dir
	if len(e.env) > 0 {
		cmd.Env = append(os.Environ(), e.env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("launching task process", "program", e.command[0], "arg_count", len(argv))

	err = cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.LaunchErr = fmt.Errorf("failed to start task process: %w", err)
	}

	log.Debug("task process exited", "exit_code", result.ExitCode)
	return result
}

// shellOperators are the characters shellwords reads as command separators,
// redirects or subshells outside quotes.
const shellOperators = "&|;<>()`"

// splitDescriptor splits d into arguments on whitespace. Single and double
// quotes group words and a backslash escapes the next character; every other
// character, shell operators included, is literal.
func splitDescriptor(d task.Descriptor) ([]string, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(escapeShellOperators(d.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnparsableDescriptor, err)
	}
	if parser.Position != -1 {
		return nil, fmt.Errorf("%w: stopped at offset %d", ErrUnparsableDescriptor, parser.Position)
	}
	return args, nil
}

// escapeShellOperators backslash-escapes shell operators that appear outside
// quotes.
func escapeShellOperators(line string) string {
	var b strings.Builder
	b.Grow(len(line))

	var escaped, singleQuoted, doubleQuoted bool
	for _, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && !singleQuoted:
			escaped = true
		case r == '\'' && !doubleQuoted:
			singleQuoted = !singleQuoted
		case r == '"' && !singleQuoted:
			doubleQuoted = !doubleQuoted
		case !singleQuoted && !doubleQuoted && strings.ContainsRune(shellOperators, r):
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
