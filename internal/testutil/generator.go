// Package testutil provides deterministic doubles for the generation and
// embedding capabilities, so pipeline tests run without any model backend.
package testutil

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator implements llm.Generator with scripted behavior.
//
// Responses are matched by substring against the prompt, in registration
// order; the fallback is returned when nothing matches. Errors pushed
// with FailNext are consumed first, one per call, which makes bounded
// retry paths easy to script ("fail twice, then succeed").
//
// Thread-safe for concurrent use.
type MockGenerator struct {
	mu       sync.Mutex
	rules    []genRule
	fallback string
	errQueue []error
	prompts  []string
}

type genRule struct {
	pattern  string
	response string
}

// NewMockGenerator creates a mock generator with the given fallback text.
func NewMockGenerator(fallback string) *MockGenerator {
	return &MockGenerator{fallback: fallback}
}

// AddResponse registers a pattern-response pair. Prompts containing the
// pattern (case-insensitive) get the response; first match wins.
func (m *MockGenerator) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, genRule{pattern: strings.ToLower(pattern), response: response})
}

// FailNext queues errors to be returned by upcoming calls, one each,
// before any pattern matching happens.
func (m *MockGenerator) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errQueue = append(m.errQueue, errs...)
}

// Generate implements llm.Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if len(m.errQueue) > 0 {
		err := m.errQueue[0]
		m.errQueue = m.errQueue[1:]
		return "", err
	}

	lower := strings.ToLower(prompt)
	for _, r := range m.rules {
		if strings.Contains(lower, r.pattern) {
			return r.response, nil
		}
	}
	return m.fallback, nil
}

// Prompts returns a copy of every prompt seen so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.prompts))
	copy(cp, m.prompts)
	return cp
}

// CallCount returns the number of Generate calls made.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}
