package service

import (
	"time"

	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
)

// SystemService handles system-related operations
type SystemService struct {
	conversionsService *ConversionsService
	hasCredential      bool
	startedAt          time.Time
}

// NewSystemService creates a new SystemService.
// hasCredential reports whether an upstream API key is configured.
func NewSystemService(conversionsService *ConversionsService, hasCredential bool) *SystemService {
	return &SystemService{
		conversionsService: conversionsService,
		hasCredential:      hasCredential,
		startedAt:          time.Now(),
	}
}

// CheckHealth reports whether the service can reach upstream and how much it caches.
// A missing API key makes the service degraded: every uncached fetch fails with 401.
func (s *SystemService) CheckHealth() model.HealthStatus {
	status := model.HealthStatus{
		Status:       "healthy",
		Upstream:     "configured",
		CacheEntries: s.conversionsService.CachedDays(),
		Uptime:       time.Since(s.startedAt).Round(time.Second).String(),
	}
	if !s.hasCredential {
		status.Status = "degraded"
		status.Upstream = "missing credential"
	}
	return status
}
