package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/luciano-mota/payment-gateway/internal/apperr"
	"github.com/luciano-mota/payment-gateway/internal/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", zap.Error(err))
	}
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorResponse{Error: msg})
}

// WriteAppError maps the domain error taxonomy onto HTTP statuses. Errors
// outside the taxonomy are reported generically and logged.
func WriteAppError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidArgument:
		WriteError(w, http.StatusBadRequest, err.Error())
	case apperr.KindNotFound:
		WriteError(w, http.StatusNotFound, err.Error())
	case apperr.KindConflict:
		WriteError(w, http.StatusConflict, err.Error())
	default:
		logger.Log.Error("unexpected error", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
