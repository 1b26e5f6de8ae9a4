package llm

import (
	"context"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error
}

// Responder computes a reply from the request. It lets the mock act as an
// offline tutor instead of replaying a fixed queue.
type Responder func(Request) MockResponse

// MockProvider is a deterministic Provider for tests and offline demos.
// Queued responses are returned first, in FIFO order; once the queue is
// empty the Responder answers, if one is set. Every request is recorded.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	responder Responder
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// NewScriptedProvider creates a MockProvider that answers every request
// with fn.
func NewScriptedProvider(fn Responder) *MockProvider {
	return &MockProvider{responder: fn}
}

// Generate returns the next canned response, falls back to the Responder,
// and reports ErrProviderUnavailable when it has neither.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	var resp MockResponse
	switch {
	case len(m.responses) > 0:
		resp = m.responses[0]
		m.responses = m.responses[1:]
		m.mu.Unlock()
	case m.responder != nil:
		fn := m.responder
		m.mu.Unlock()
		resp = fn(req)
	default:
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{}
	}

	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) Name() string { return "mock" }

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// SetResponder replaces the fallback responder.
func (m *MockProvider) SetResponder(fn Responder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responder = fn
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// LastCall returns the most recent request, or false if none was made.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return Request{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
