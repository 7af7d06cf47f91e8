package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/apperrors"
	"github.com/ndewijer/Conversions-Report-Backend/internal/heureka"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
)

// MockHeurekaClient is a mock implementation of heureka.Client for testing.
// It returns predefined payloads per date instead of making actual API calls.
type MockHeurekaClient struct {
	mu sync.Mutex
	// Responses maps YYYY-MM-DD to the payload returned for that day.
	Responses map[string]model.ConversionsPayload
	// Errors maps YYYY-MM-DD to the error returned for that day. Errors win over Responses.
	Errors map[string]error
	// Delay is slept before answering, to widen race windows in concurrency tests.
	Delay time.Duration
	// Calls records every requested date in order.
	Calls []string
}

// NewMockHeurekaClient creates a mock that answers every unknown day with an empty report.
func NewMockHeurekaClient() *MockHeurekaClient {
	return &MockHeurekaClient{
		Responses: make(map[string]model.ConversionsPayload),
		Errors:    make(map[string]error),
	}
}

// FetchConversions records the call and returns the configured result for date.
func (m *MockHeurekaClient) FetchConversions(_ context.Context, date model.DateKey) (model.ConversionsPayload, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, date.String())
	delay := m.Delay
	err := m.Errors[date.String()]
	payload, ok := m.Responses[date.String()]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return model.ConversionsPayload{}, err
	}
	if !ok {
		return model.ConversionsPayload{Raw: []byte(`{"conversions":[]}`)}, nil
	}
	return payload, nil
}

// WithResponse sets the JSON body returned for date.
func (m *MockHeurekaClient) WithResponse(t *testing.T, date, body string) *MockHeurekaClient {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[date] = MustParsePayload(t, body)
	return m
}

// WithError configures the mock to fail for date.
func (m *MockHeurekaClient) WithError(date string, err error) *MockHeurekaClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[date] = err
	return m
}

// CallCount returns how many fetches were made.
func (m *MockHeurekaClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// CallsFor returns how many fetches were made for date.
func (m *MockHeurekaClient) CallsFor(date string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.Calls {
		if c == date {
			n++
		}
	}
	return n
}

// MustParsePayload decodes body the way the real client does and fails the test on error.
func MustParsePayload(t *testing.T, body string) model.ConversionsPayload {
	t.Helper()

	payload, err := heureka.ParsePayload([]byte(body))
	if err != nil {
		t.Fatalf("invalid test payload %q: %v", body, err)
	}
	return payload
}

// UnavailableError is the FetchError produced by an upstream timeout.
func UnavailableError() error {
	return apperrors.NewFetchError(apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, heureka.MsgUnavailableTimeout, nil)
}
