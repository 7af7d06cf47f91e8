package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/handlers"
	"github.com/ndewijer/Conversions-Report-Backend/internal/cache"
	"github.com/ndewijer/Conversions-Report-Backend/internal/heureka"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
	"github.com/ndewijer/Conversions-Report-Backend/internal/service"
	"github.com/ndewijer/Conversions-Report-Backend/internal/testutil"
	"github.com/ndewijer/Conversions-Report-Backend/internal/validation"
)

// upstream is a fake reports API serving fixed bodies per date.
type upstream struct {
	server *httptest.Server
	calls  atomic.Int32
}

func newUpstream(t *testing.T, bodies map[string]string, delay time.Duration) *upstream {
	t.Helper()
	u := &upstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		if delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
		body, ok := bodies[r.URL.Query().Get("date")]
		if !ok {
			body = `{"conversions":[]}`
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(u.server.Close)
	return u
}

func newHandler(u *upstream, apiKey string, opts ...heureka.Option) *handlers.ConversionsHandler {
	client := heureka.NewReportsClient(u.server.URL, apiKey, opts...)
	cs := service.NewConversionsService(cache.NewDayCache(cache.DefaultTTL), client, validation.DefaultMaxRangeDays)
	return handlers.NewConversionsHandler(cs)
}

func serve(h *handlers.ConversionsHandler, params map[string]string) *httptest.ResponseRecorder {
	req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/conversions", params)
	w := httptest.NewRecorder()
	h.Conversions(w, req)
	return w
}

func TestConversionsHandler_SingleDay(t *testing.T) {
	t.Run("returns the upstream body unmodified", func(t *testing.T) {
		u := newUpstream(t, map[string]string{"2024-03-15": `{"conversions":[{"id":1}]}`}, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date": "2024-03-15"})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if w.Body.String() != `{"conversions":[{"id":1}]}` {
			t.Errorf("Expected raw upstream body, got %s", w.Body.String())
		}
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
	})

	t.Run("repeated queries within TTL are byte-identical and cached", func(t *testing.T) {
		u := newUpstream(t, map[string]string{"2024-03-15": `{"conversions":[{"id":1,"note":"x"}], "extra": true}`}, 0)
		h := newHandler(u, "secret")

		first := serve(h, map[string]string{"date": "2024-03-15"})
		second := serve(h, map[string]string{"date": "2024-03-15"})

		if first.Body.String() != second.Body.String() {
			t.Errorf("Expected identical bodies, got %s and %s", first.Body.String(), second.Body.String())
		}
		if u.calls.Load() != 1 {
			t.Errorf("Expected 1 upstream call, got %d", u.calls.Load())
		}
	})

	t.Run("upstream timeout reports 502", func(t *testing.T) {
		u := newUpstream(t, nil, 2*time.Second)
		h := newHandler(u, "secret", heureka.WithTimeout(50*time.Millisecond))

		w := serve(h, map[string]string{"date": "2024-03-15"})

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
		if msg := testutil.DecodeErrorMessage(t, w); !strings.Contains(msg, "unavailable") {
			t.Errorf("Expected unavailability message, got '%s'", msg)
		}
	})

	t.Run("missing credential reports 401 without an upstream call", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "")

		w := serve(h, map[string]string{"date": "2024-03-15"})

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		if msg := testutil.DecodeErrorMessage(t, w); msg != heureka.MsgMissingCredential {
			t.Errorf("Expected '%s', got '%s'", heureka.MsgMissingCredential, msg)
		}
		if u.calls.Load() != 0 {
			t.Errorf("Expected no upstream calls, got %d", u.calls.Load())
		}
	})

	t.Run("missing date reports 422 with hint", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "secret")

		w := serve(h, nil)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
		msg := testutil.DecodeErrorMessage(t, w)
		if !strings.HasPrefix(msg, "Provide a range (Od and Do)") || !strings.HasSuffix(msg, "parameter date is required.") {
			t.Errorf("Unexpected message '%s'", msg)
		}
	})

	t.Run("malformed date reports 422 without an upstream call", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date": "15.03.2024"})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
		if u.calls.Load() != 0 {
			t.Errorf("Expected no upstream calls, got %d", u.calls.Load())
		}
	})
}

func TestConversionsHandler_Range(t *testing.T) {
	t.Run("concatenates days", func(t *testing.T) {
		u := newUpstream(t, map[string]string{
			"2024-03-01": `{"conversions":[{"id":1}]}`,
			"2024-03-02": `{"conversions":[{"id":2}]}`,
		}, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date_from": "2024-03-01", "date_to": "2024-03-02"})

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if body := strings.TrimSpace(w.Body.String()); body != `{"conversions":[{"id":1},{"id":2}]}` {
			t.Errorf("Unexpected body %s", body)
		}
	})

	t.Run("empty range result is an empty list", func(t *testing.T) {
		u := newUpstream(t, map[string]string{"2024-03-01": `{}`}, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date_from": "2024-03-01", "date_to": "2024-03-01"})

		var response model.ConversionsResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Conversions == nil || len(response.Conversions) != 0 {
			t.Errorf("Expected empty list, got %v", response.Conversions)
		}
	})

	t.Run("inverted range reports 422 naming Od before Do", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date_from": "2024-03-02", "date_to": "2024-03-01"})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
		msg := testutil.DecodeErrorMessage(t, w)
		od, do := strings.Index(msg, "Od"), strings.Index(msg, "Do")
		if od < 0 || do < 0 || od > do {
			t.Errorf("Expected message to mention Od before Do, got '%s'", msg)
		}
		if u.calls.Load() != 0 {
			t.Errorf("Expected no upstream calls, got %d", u.calls.Load())
		}
	})

	t.Run("too long range reports 422", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date_from": "2023-01-01", "date_to": "2024-12-31"})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
		if u.calls.Load() != 0 {
			t.Errorf("Expected no upstream calls, got %d", u.calls.Load())
		}
	})

	t.Run("either bound alone requires the other", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "secret")

		w := serve(h, map[string]string{"date_from": "2024-03-01", "date": "2024-03-15"})

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d", w.Code)
		}
		if msg := testutil.DecodeErrorMessage(t, w); msg != "parameter date_to is required." {
			t.Errorf("Unexpected message '%s'", msg)
		}
	})

	t.Run("failing day aborts with its status", func(t *testing.T) {
		u := newUpstream(t, nil, 0)
		h := newHandler(u, "")

		w := serve(h, map[string]string{"date_from": "2024-03-01", "date_to": "2024-03-05"})

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
		if msg := testutil.DecodeErrorMessage(t, w); msg != heureka.MsgMissingCredential {
			t.Errorf("Unexpected message '%s'", msg)
		}
	})
}
