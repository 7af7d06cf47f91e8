package handlers

import (
	"net/http"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/response"
	"github.com/ndewijer/Conversions-Report-Backend/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// Health reports service status, upstream credential state and cache size.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with model.HealthStatus, also when degraded
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.systemService.CheckHealth())
}
