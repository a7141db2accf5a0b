// Package command runs the external tools the converter delegates to.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Executor runs an external program and returns its combined stdout/stderr.
// A non-zero exit or a launch failure is reported as a *ToolError.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
	IsAvailable(name string) bool
}

// ToolError describes a failed external invocation
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   []byte
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
	if out := strings.TrimSpace(string(e.Output)); out != "" {
		msg += "\nOutput:\n" + out
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Describe renders a command line for logs and error messages.
func Describe(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// ExecExecutor runs programs with os/exec.
type ExecExecutor struct {
	logger *zap.Logger
}

// NewExecExecutor creates an executor that logs every invocation at debug level.
func NewExecExecutor(logger *zap.Logger) *ExecExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecExecutor{logger: logger}
}

func (e *ExecExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	e.logger.Debug("running external tool",
		zap.String("tool", name),
		zap.Strings("args", args),
	)

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		toolErr := &ToolError{
			Tool:     name,
			Args:     args,
			ExitCode: -1,
			Output:   output,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		return output, toolErr
	}

	e.logger.Debug("external tool finished",
		zap.String("tool", name),
		zap.ByteString("output", output),
	)
	return output, nil
}

func (e *ExecExecutor) IsAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
