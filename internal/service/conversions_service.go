package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Conversions-Report-Backend/internal/cache"
	"github.com/ndewijer/Conversions-Report-Backend/internal/heureka"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
	"github.com/ndewijer/Conversions-Report-Backend/internal/validation"
)

// ConversionsService serves conversions per day and per date range.
// Days are read from the cache when fresh and fetched upstream otherwise.
type ConversionsService struct {
	cache        *cache.DayCache
	client       heureka.Client
	maxRangeDays int

	// inflight lets concurrent misses for the same day share one upstream call.
	inflight singleflight.Group
}

// NewConversionsService creates a ConversionsService backed by dayCache and client.
// Ranges longer than maxRangeDays are rejected.
func NewConversionsService(dayCache *cache.DayCache, client heureka.Client, maxRangeDays int) *ConversionsService {
	return &ConversionsService{
		cache:        dayCache,
		client:       client,
		maxRangeDays: maxRangeDays,
	}
}

// FetchOneDay returns the conversions payload for a single day.
//
// A fresh cache entry is returned without contacting the API. On a miss the
// day is fetched upstream and cached on success; failures are returned as
// *apperrors.FetchError and never cached.
func (s *ConversionsService) FetchOneDay(ctx context.Context, date model.DateKey) (model.ConversionsPayload, error) {
	if payload, ok := s.cache.Get(date); ok {
		slog.Debug("conversions cache hit", "date", date.String())
		return payload, nil
	}

	v, err, shared := s.inflight.Do(date.String(), func() (any, error) {
		payload, err := s.client.FetchConversions(ctx, date)
		if err != nil {
			return nil, err
		}
		s.cache.Put(date, payload)
		return payload, nil
	})
	if err != nil {
		slog.Warn("conversions fetch failed", "date", date.String(), "error", err)
		return model.ConversionsPayload{}, err
	}

	slog.Debug("conversions fetched", "date", date.String(), "shared", shared)
	return v.(model.ConversionsPayload), nil
}

// FetchRange returns the conversions of every day from..to, both included.
//
// The range is validated before anything is fetched. Days are fetched one after
// another in ascending order; the first failing day aborts the whole range and
// its error is returned with no partial data. On success the per-day lists are
// concatenated in day order. The result is never nil.
func (s *ConversionsService) FetchRange(ctx context.Context, from, to model.DateKey) ([]json.RawMessage, error) {
	rng, err := validation.ValidateDateRange(from, to, s.maxRangeDays)
	if err != nil {
		return nil, err
	}

	conversions := make([]json.RawMessage, 0)
	for _, day := range rng.Days() {
		payload, err := s.FetchOneDay(ctx, day)
		if err != nil {
			slog.Warn("conversions range aborted",
				"from", rng.From.String(),
				"to", rng.To.String(),
				"failed_day", day.String(),
			)
			return nil, err
		}
		conversions = append(conversions, payload.Conversions...)
	}

	return conversions, nil
}

// CachedDays returns the number of days currently held in the cache.
func (s *ConversionsService) CachedDays() int {
	return s.cache.Len()
}
