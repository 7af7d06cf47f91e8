package heureka_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/apperrors"
	"github.com/ndewijer/Conversions-Report-Backend/internal/heureka"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
)

var testDate = model.NewDateKey(2024, 3, 15)

func assertFetchError(t *testing.T, err error, kind error, status int, message string) {
	t.Helper()

	var fe *apperrors.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FetchError, got %T (%v)", err, err)
	}
	if !errors.Is(err, kind) {
		t.Errorf("Expected kind %v, got %v", kind, fe.Kind)
	}
	if fe.StatusCode() != status {
		t.Errorf("Expected status %d, got %d", status, fe.StatusCode())
	}
	if fe.Message != message {
		t.Errorf("Expected message '%s', got '%s'", message, fe.Message)
	}
}

func TestReportsClient_FetchConversions(t *testing.T) {
	t.Run("sends date and credential and returns body verbatim", func(t *testing.T) {
		body := `{"conversions":[{"id":1}],"date":"2024-03-15"}`
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("Expected GET, got %s", r.Method)
			}
			if r.URL.Path != "/v1/reports/conversions" {
				t.Errorf("Unexpected path %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("date"); got != "2024-03-15" {
				t.Errorf("Expected date '2024-03-15', got '%s'", got)
			}
			if got := r.Header.Get(heureka.APIKeyHeader); got != "secret" {
				t.Errorf("Expected API key header 'secret', got '%s'", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		}))
		defer server.Close()

		client := heureka.NewReportsClient(server.URL+"/", "secret")
		payload, err := client.FetchConversions(context.Background(), testDate)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if string(payload.Raw) != body {
			t.Errorf("Expected raw body to be preserved, got %s", payload.Raw)
		}
		if len(payload.Conversions) != 1 || string(payload.Conversions[0]) != `{"id":1}` {
			t.Errorf("Unexpected conversions: %v", payload.Conversions)
		}
	})

	t.Run("missing credential fails without a network call", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
		}))
		defer server.Close()

		client := heureka.NewReportsClient(server.URL, "")
		_, err := client.FetchConversions(context.Background(), testDate)

		assertFetchError(t, err, apperrors.ErrMissingCredential, http.StatusUnauthorized, heureka.MsgMissingCredential)
		if calls.Load() != 0 {
			t.Errorf("Expected no upstream calls, got %d", calls.Load())
		}
	})

	t.Run("maps upstream statuses", func(t *testing.T) {
		cases := []struct {
			name    string
			status  int
			kind    error
			want    int
			message string
		}{
			{"unauthorized", http.StatusUnauthorized, apperrors.ErrMissingCredential, http.StatusUnauthorized, heureka.MsgMissingCredential},
			{"forbidden", http.StatusForbidden, apperrors.ErrForbidden, http.StatusForbidden, heureka.MsgForbidden},
			{"unprocessable", http.StatusUnprocessableEntity, apperrors.ErrUpstreamRejected, http.StatusUnprocessableEntity, heureka.MsgMalformedDate},
			{"server error", http.StatusInternalServerError, apperrors.ErrUpstreamStatus, http.StatusInternalServerError, heureka.MsgUpstreamError},
			{"rate limited", http.StatusTooManyRequests, apperrors.ErrUpstreamStatus, http.StatusTooManyRequests, heureka.MsgUpstreamError},
			{"no content", http.StatusNoContent, apperrors.ErrUpstreamStatus, http.StatusNoContent, heureka.MsgUpstreamError},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(tc.status)
				}))
				defer server.Close()

				client := heureka.NewReportsClient(server.URL, "secret")
				_, err := client.FetchConversions(context.Background(), testDate)
				assertFetchError(t, err, tc.kind, tc.want, tc.message)
			})
		}
	})

	t.Run("timeout reports unavailability", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer server.Close()

		client := heureka.NewReportsClient(server.URL, "secret", heureka.WithTimeout(50*time.Millisecond))
		_, err := client.FetchConversions(context.Background(), testDate)

		assertFetchError(t, err, apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, heureka.MsgUnavailableTimeout)
	})

	t.Run("transport failure reports unavailability", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
		url := server.URL
		server.Close()

		client := heureka.NewReportsClient(url, "secret")
		_, err := client.FetchConversions(context.Background(), testDate)

		assertFetchError(t, err, apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, heureka.MsgUnavailable)
	})

	t.Run("undecodable bodies are rejected", func(t *testing.T) {
		bodies := []string{
			`not json`,
			`[{"id":1}]`,
			`{"conversions":"many"}`,
			`null`,
			``,
		}
		for _, body := range bodies {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(body))
			}))

			client := heureka.NewReportsClient(server.URL, "secret")
			_, err := client.FetchConversions(context.Background(), testDate)
			server.Close()

			assertFetchError(t, err, apperrors.ErrUpstreamBadResponse, http.StatusBadGateway, heureka.MsgInvalidResponse)
		}
	})
}

func TestParsePayload(t *testing.T) {
	t.Run("absent conversions is an empty list", func(t *testing.T) {
		payload, err := heureka.ParsePayload([]byte(`{"date":"2024-03-15"}`))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(payload.Conversions) != 0 {
			t.Errorf("Expected no conversions, got %d", len(payload.Conversions))
		}
	})

	t.Run("null conversions is an empty list", func(t *testing.T) {
		payload, err := heureka.ParsePayload([]byte(`{"conversions":null}`))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(payload.Conversions) != 0 {
			t.Errorf("Expected no conversions, got %d", len(payload.Conversions))
		}
	})

	t.Run("records are passed through untouched", func(t *testing.T) {
		payload, err := heureka.ParsePayload([]byte(`{"conversions":[{"id":1,"shop_item":{"id":"a"}},{"id":2}]}`))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(payload.Conversions) != 2 {
			t.Fatalf("Expected 2 conversions, got %d", len(payload.Conversions))
		}
		if string(payload.Conversions[0]) != `{"id":1,"shop_item":{"id":"a"}}` {
			t.Errorf("Unexpected first record: %s", payload.Conversions[0])
		}
	})
}
