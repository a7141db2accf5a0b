// Package mocks provides mock implementations for testing
package mocks

import (
	"context"
	"fmt"
	"strings"

	"vid2gif/internal/command"
)

// MockCommandExecutor provides a mock command executor for testing
type MockCommandExecutor struct {
	Responses         map[string][]byte
	Errors            map[string]error
	AvailableCommands map[string]bool
	CallLog           []string

	// OnExecute, when set, runs before the scripted response is returned.
	// Tests use it to simulate side effects such as ffmpeg writing frames.
	OnExecute func(name string, args []string) error
}

var _ command.Executor = (*MockCommandExecutor)(nil)

func NewMockCommandExecutor() *MockCommandExecutor {
	return &MockCommandExecutor{
		Responses:         make(map[string][]byte),
		Errors:            make(map[string]error),
		AvailableCommands: make(map[string]bool),
		CallLog:           make([]string, 0),
	}
}

func (m *MockCommandExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := command.Describe(name, args...)
	m.CallLog = append(m.CallLog, cmd)

	if err := ctx.Err(); err != nil {
		return nil, &command.ToolError{Tool: name, Args: args, ExitCode: -1, Err: err}
	}

	// Check for command-specific errors first
	if err, exists := m.Errors[cmd]; exists {
		return nil, m.toolError(name, args, err)
	}

	// Check for general command errors (e.g., "ffmpeg")
	if err, exists := m.Errors[name]; exists {
		return nil, m.toolError(name, args, err)
	}

	if m.OnExecute != nil {
		if err := m.OnExecute(name, args); err != nil {
			return nil, m.toolError(name, args, err)
		}
	}

	if response, exists := m.Responses[cmd]; exists {
		return response, nil
	}
	if response, exists := m.Responses[name]; exists {
		return response, nil
	}

	return []byte("mock response"), nil
}

func (m *MockCommandExecutor) toolError(name string, args []string, err error) error {
	return &command.ToolError{
		Tool:     name,
		Args:     args,
		ExitCode: 1,
		Output:   []byte(fmt.Sprintf("mock failure: %v", err)),
		Err:      err,
	}
}

func (m *MockCommandExecutor) IsAvailable(name string) bool {
	if available, exists := m.AvailableCommands[name]; exists {
		return available
	}
	return true // Default to available
}

// CallsTo returns the logged invocations of the named program.
func (m *MockCommandExecutor) CallsTo(name string) []string {
	var calls []string
	for _, call := range m.CallLog {
		if call == name || strings.HasPrefix(call, name+" ") {
			calls = append(calls, call)
		}
	}
	return calls
}
