package handlers

import (
	"encoding/json"
	"net/http"

	"asset-prediction-orchestrator/core/lifecycle"
	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/reconciler"

	"github.com/rs/zerolog/log"
)

// EventHandler receives engine notifications from the event bus and
// dispatches them to the reconciliation handlers. Failures are logged and the
// event is dropped; the bus gets a 200 either way since there is no caller to
// surface errors to.
type EventHandler struct {
	statuses  *reconciler.StatusHistoryReconciler
	models    *reconciler.ModelAttachmentHandler
	endpoints *lifecycle.EndpointManager
}

// NewEventHandler creates a new event webhook handler
func NewEventHandler(statuses *reconciler.StatusHistoryReconciler, modelHandler *reconciler.ModelAttachmentHandler, endpoints *lifecycle.EndpointManager) *EventHandler {
	return &EventHandler{
		statuses:  statuses,
		models:    modelHandler,
		endpoints: endpoints,
	}
}

// HandleEvent handles POST /v1/events
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event models.EngineEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid event envelope", http.StatusBadRequest)
		return
	}

	log.Info().Str("detailType", event.DetailType).Msg("engine event received")

	switch event.DetailType {
	case models.EventExecutionStatusChange:
		var detail models.ExecutionStatusChangeDetail
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			log.Error().Err(err).Msg("malformed execution status change detail")
			break
		}
		h.statuses.ApplyExecutionStatusChange(detail)

	case models.EventStepStatusChange:
		var detail models.StepStatusChangeDetail
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			log.Error().Err(err).Msg("malformed step status change detail")
			break
		}
		h.statuses.ApplyStepStatusChange(detail)

	case models.EventModelStateChange:
		var detail models.ModelStateChangeDetail
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			log.Error().Err(err).Msg("malformed model state change detail")
			break
		}
		h.models.HandleModelStateChange(r.Context(), detail)

	case models.EventEndpointStateChange:
		var detail models.EndpointStateChangeDetail
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			log.Error().Err(err).Msg("malformed endpoint state change detail")
			break
		}
		h.endpoints.HandleEndpointStateChange(r.Context(), detail)

	default:
		log.Warn().Str("detailType", event.DetailType).Msg("unrecognized engine event")
	}

	w.WriteHeader(http.StatusOK)
}
