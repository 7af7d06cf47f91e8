package heureka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/apperrors"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
)

// DefaultBaseURL is the public Heureka API host.
const DefaultBaseURL = "https://api.heureka.group"

// DefaultTimeout bounds a single report request.
const DefaultTimeout = 30 * time.Second

// APIKeyHeader carries the credential on every request.
const APIKeyHeader = "x-heureka-api-key"

const conversionsPath = "/v1/reports/conversions"

// Messages surfaced to callers for each failure class.
const (
	MsgMissingCredential  = "invalid/missing credential"
	MsgForbidden          = "forbidden"
	MsgMalformedDate      = "malformed date"
	MsgUnavailableTimeout = "upstream unavailable (timeout)"
	MsgUnavailable        = "upstream unavailable"
	MsgUpstreamError      = "upstream error"
	MsgInvalidResponse    = "invalid upstream response"
)

// Client fetches one day of the conversions report.
type Client interface {
	FetchConversions(ctx context.Context, date model.DateKey) (model.ConversionsPayload, error)
}

// ReportsClient talks to the Heureka conversion measurement reports API.
// It does no caching; every call is one HTTP request.
type ReportsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
}

// Option configures a ReportsClient.
type Option func(*ReportsClient)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *ReportsClient) { c.timeout = timeout }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *ReportsClient) { c.httpClient = client }
}

// NewReportsClient creates a client for the API at baseURL authenticating with apiKey.
// An empty apiKey is allowed; every fetch then fails with 401 without touching the network.
func NewReportsClient(baseURL, apiKey string, opts ...Option) *ReportsClient {
	c := &ReportsClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredential reports whether an API key is configured.
func (c *ReportsClient) HasCredential() bool {
	return c.apiKey != ""
}

// FetchConversions requests the conversions report for a single date.
//
// Every failure is returned as *apperrors.FetchError carrying the status and
// message to show the caller:
//   - no API key, or 401 upstream: 401
//   - 403 upstream: 403
//   - 422 upstream: 422
//   - timeout or other transport failure: 502
//   - other non-200 status: that status
//   - unreadable or undecodable body: 502
func (c *ReportsClient) FetchConversions(ctx context.Context, date model.DateKey) (model.ConversionsPayload, error) {
	if !c.HasCredential() {
		return model.ConversionsPayload{}, apperrors.NewFetchError(
			apperrors.ErrMissingCredential, http.StatusUnauthorized, MsgMissingCredential, nil)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + conversionsPath + "?" + url.Values{"date": {date.String()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.ConversionsPayload{}, apperrors.NewFetchError(
			apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, MsgUnavailable, err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return model.ConversionsPayload{}, apperrors.NewFetchError(
				apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, MsgUnavailableTimeout, err)
		}
		return model.ConversionsPayload{}, apperrors.NewFetchError(
			apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, MsgUnavailable, err)
	}
	defer resp.Body.Close()

	if fetchErr := statusError(resp.StatusCode); fetchErr != nil {
		return model.ConversionsPayload{}, fetchErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return model.ConversionsPayload{}, apperrors.NewFetchError(
				apperrors.ErrUpstreamUnavailable, http.StatusBadGateway, MsgUnavailableTimeout, err)
		}
		return model.ConversionsPayload{}, apperrors.NewFetchError(
			apperrors.ErrUpstreamBadResponse, http.StatusBadGateway, MsgInvalidResponse, err)
	}

	payload, err := ParsePayload(data)
	if err != nil {
		return model.ConversionsPayload{}, apperrors.NewFetchError(
			apperrors.ErrUpstreamBadResponse, http.StatusBadGateway, MsgInvalidResponse, err)
	}

	return payload, nil
}

// ParsePayload decodes a report body into a ConversionsPayload.
// The body must be a JSON object; its conversions field, when present and not null,
// must be an array. The original bytes are kept in Raw.
func ParsePayload(data []byte) (model.ConversionsPayload, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return model.ConversionsPayload{}, fmt.Errorf("empty report body")
	}

	var body Response
	if err := json.Unmarshal(data, &body); err != nil {
		return model.ConversionsPayload{}, err
	}

	raw := make(json.RawMessage, len(data))
	copy(raw, data)

	return model.ConversionsPayload{
		Raw:         raw,
		Conversions: body.Conversions,
	}, nil
}

func statusError(status int) *apperrors.FetchError {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return apperrors.NewFetchError(apperrors.ErrMissingCredential, http.StatusUnauthorized, MsgMissingCredential, nil)
	case http.StatusForbidden:
		return apperrors.NewFetchError(apperrors.ErrForbidden, http.StatusForbidden, MsgForbidden, nil)
	case http.StatusUnprocessableEntity:
		return apperrors.NewFetchError(apperrors.ErrUpstreamRejected, http.StatusUnprocessableEntity, MsgMalformedDate, nil)
	default:
		return apperrors.NewFetchError(apperrors.ErrUpstreamStatus, status, MsgUpstreamError, nil)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
