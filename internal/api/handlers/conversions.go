package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/response"
	"github.com/ndewijer/Conversions-Report-Backend/internal/model"
	"github.com/ndewijer/Conversions-Report-Backend/internal/service"
	"github.com/ndewijer/Conversions-Report-Backend/internal/validation"
)

const singleDayHint = "Provide a range (Od and Do) or a single day (parameter date). "

// ConversionsHandler handles HTTP requests for the conversions report.
// It parses query parameters and delegates fetching to the conversionsService.
type ConversionsHandler struct {
	conversionsService *service.ConversionsService
}

// NewConversionsHandler creates a new ConversionsHandler with the provided service dependency.
func NewConversionsHandler(conversionsService *service.ConversionsService) *ConversionsHandler {
	return &ConversionsHandler{
		conversionsService: conversionsService,
	}
}

// Conversions handles GET requests for one day or a range of days of conversions.
//
// Endpoint: GET /api/conversions?date=YYYY-MM-DD
// Endpoint: GET /api/conversions?date_from=YYYY-MM-DD&date_to=YYYY-MM-DD
// Response: 200 OK with the upstream body for a single day, or
// {"conversions": [...]} for a range
// Error: 422 for invalid parameters, otherwise the upstream failure's status
//
// Range mode is selected as soon as either date_from or date_to is present.
// The fetch is detached from client cancellation so a started range runs to
// completion or to its first failing day.
func (h *ConversionsHandler) Conversions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dateFrom := strings.TrimSpace(q.Get("date_from"))
	dateTo := strings.TrimSpace(q.Get("date_to"))
	ctx := context.WithoutCancel(r.Context())

	if dateFrom != "" || dateTo != "" {
		from, err := validation.ValidateDate("date_from", dateFrom, true)
		if err != nil {
			respondFailure(w, err, "")
			return
		}
		to, err := validation.ValidateDate("date_to", dateTo, true)
		if err != nil {
			respondFailure(w, err, "")
			return
		}

		conversions, err := h.conversionsService.FetchRange(ctx, from, to)
		if err != nil {
			respondFailure(w, err, "")
			return
		}

		response.RespondJSON(w, http.StatusOK, model.ConversionsResponse{Conversions: conversions})
		return
	}

	date, err := validation.ValidateDate("date", q.Get("date"), true)
	if err != nil {
		respondFailure(w, err, singleDayHint)
		return
	}

	payload, err := h.conversionsService.FetchOneDay(ctx, date)
	if err != nil {
		respondFailure(w, err, "")
		return
	}

	response.RespondRawJSON(w, http.StatusOK, payload.Raw)
}
