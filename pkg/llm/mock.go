package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockOracle is a configurable Oracle for tests. Responses are served in
// order; GenerateFunc, when set, takes precedence.
type MockOracle struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	Responses    []string
	Err          error

	mu      sync.Mutex
	Prompts []string
}

// NewMockOracle returns a mock that replies with responses in order.
func NewMockOracle(responses ...string) *MockOracle {
	return &MockOracle{Responses: responses}
}

// Generate implements Oracle.
func (m *MockOracle) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if call >= len(m.Responses) {
		return "", fmt.Errorf("mock oracle: no response for call %d", call+1)
	}
	return m.Responses[call], nil
}

// Calls returns how many times Generate was invoked.
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
