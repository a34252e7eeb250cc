package executor

import "context"

// MockExecutor is a test double that records requests and returns a
// canned response.
type MockExecutor struct {
	Response Response
	Requests []Request
}

// Execute records the request and returns the canned response.
func (m *MockExecutor) Execute(_ context.Context, req Request) Response {
	m.Requests = append(m.Requests, req)
	return m.Response
}
