package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/response"
	"github.com/ndewijer/Conversions-Report-Backend/internal/apperrors"
)

// respondFailure writes err as {"error": message} with the status it carries.
// Validation errors report 422, fetch errors their own status, anything else 500.
// A prefix, when given, is prepended to validation messages only.
func respondFailure(w http.ResponseWriter, err error, validationPrefix string) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		response.RespondError(w, ve.StatusCode(), validationPrefix+ve.Message, nil)
		return
	}

	var fe *apperrors.FetchError
	if errors.As(err, &fe) {
		response.RespondError(w, fe.StatusCode(), fe.Message, nil)
		return
	}

	slog.Error("unexpected error", "error", err)
	response.RespondError(w, http.StatusInternalServerError, "internal server error", nil)
}
