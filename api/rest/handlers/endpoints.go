package handlers

import (
	"encoding/json"
	"net/http"

	"asset-prediction-orchestrator/core/forecast"
	"asset-prediction-orchestrator/core/lifecycle"
	"asset-prediction-orchestrator/core/repository"

	"github.com/gorilla/mux"
)

// EndpointHandler handles endpoint lifecycle and invocation HTTP requests
type EndpointHandler struct {
	manager      *lifecycle.EndpointManager
	orchestrator *forecast.Orchestrator
	predictions  *repository.PredictionRepository
}

// NewEndpointHandler creates a new endpoint handler
func NewEndpointHandler(manager *lifecycle.EndpointManager, orchestrator *forecast.Orchestrator, predictions *repository.PredictionRepository) *EndpointHandler {
	return &EndpointHandler{
		manager:      manager,
		orchestrator: orchestrator,
		predictions:  predictions,
	}
}

// CreateEndpoint handles POST /v1/executions/{id}/endpoint
func (h *EndpointHandler) CreateEndpoint(w http.ResponseWriter, r *http.Request) {
	info, err := h.manager.CreateEndpoint(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// DeleteEndpoint handles DELETE /v1/executions/{id}/endpoint
func (h *EndpointHandler) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteEndpoint(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleting"})
}

// InvokeEndpointRequest represents the request to run a prediction
type InvokeEndpointRequest struct {
	Quantiles  []float64 `json:"quantiles"`
	NumSamples int       `json:"numSamples"`
}

// InvokeEndpoint handles POST /v1/executions/{id}/invoke
func (h *EndpointHandler) InvokeEndpoint(w http.ResponseWriter, r *http.Request) {
	var req InvokeEndpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Quantiles) == 0 {
		req.Quantiles = []float64{0.1, 0.5, 0.9}
	}
	if req.NumSamples <= 0 {
		req.NumSamples = 100
	}

	rec, err := h.orchestrator.Invoke(r.Context(), mux.Vars(r)["id"], req.Quantiles, req.NumSamples)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GetPrediction handles GET /v1/executions/{id}/prediction
func (h *EndpointHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
	rec, err := h.predictions.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
