package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"asset-prediction-orchestrator/core/forecast"
	"asset-prediction-orchestrator/core/lifecycle"
	"asset-prediction-orchestrator/core/pipeline"
	"asset-prediction-orchestrator/core/repository"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"message": err.Error()})
}

// statusOf maps the error taxonomy onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrConflict), errors.Is(err, pipeline.ErrAlreadyStarted):
		return http.StatusConflict
	case errors.Is(err, forecast.ErrEmptyTrainingWindow),
		errors.Is(err, forecast.ErrTrainingEndNotFound),
		errors.Is(err, forecast.ErrEndpointNotReady):
		return http.StatusBadRequest
	case errors.Is(err, forecast.ErrUpstreamInvocation),
		errors.Is(err, lifecycle.ErrPartialDeletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
