package mock

import (
	"context"
	"fmt"
	"sync"
)

// MockSynthesizer is a test double for ai.AnswerSynthesizer.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	SynthesizeFunc func(ctx context.Context, query, contextText string) (string, error)

	mu          sync.Mutex
	callCount   int
	lastQuery   string
	lastContext string
}

// NewMockSynthesizer creates a mock synthesizer with default behavior.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Synthesize records its inputs and returns a canned answer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, query, contextText string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastQuery = query
	m.lastContext = contextText
	m.mu.Unlock()

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, query, contextText)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("Answer to %q from %d characters of context.", query, len(contextText)), nil
}

// CallCount returns the number of times Synthesize was called.
func (m *MockSynthesizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastContext returns the context text passed to the most recent call.
func (m *MockSynthesizer) LastContext() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastContext
}

// LastQuery returns the query passed to the most recent call.
func (m *MockSynthesizer) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// Reset clears recorded calls and custom functions.
func (m *MockSynthesizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastQuery = ""
	m.lastContext = ""
	m.SynthesizeFunc = nil
}
