package handlers

import (
	"encoding/json"
	"net/http"

	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/pipeline"
	"asset-prediction-orchestrator/core/repository"

	"github.com/gorilla/mux"
)

// ExecutionHandler handles training-execution HTTP requests
type ExecutionHandler struct {
	executions *repository.ExecutionRepository
	launcher   *pipeline.Launcher
}

// NewExecutionHandler creates a new execution handler
func NewExecutionHandler(executions *repository.ExecutionRepository, launcher *pipeline.Launcher) *ExecutionHandler {
	return &ExecutionHandler{executions: executions, launcher: launcher}
}

// CreateExecutionRequest represents the request to create an execution
type CreateExecutionRequest struct {
	TemplateID  string `json:"templateId"`
	Description string `json:"description"`
}

// CreateExecution handles POST /v1/executions
func (h *ExecutionHandler) CreateExecution(w http.ResponseWriter, r *http.Request) {
	var req CreateExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TemplateID == "" {
		http.Error(w, "templateId is required", http.StatusBadRequest)
		return
	}

	exec := &models.TrainingExecution{
		TemplateID:  req.TemplateID,
		Description: req.Description,
	}
	if err := h.executions.Create(exec); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, exec)
}

// GetExecution handles GET /v1/executions/{id}
func (h *ExecutionHandler) GetExecution(w http.ResponseWriter, r *http.Request) {
	exec, err := h.executions.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// ListExecutions handles GET /v1/executions
func (h *ExecutionHandler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	execs, err := h.executions.List(100)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, execs)
}

// StartExecution handles POST /v1/executions/{id}/start
func (h *ExecutionHandler) StartExecution(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	arn, err := h.launcher.Start(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"executionId":          id,
		"pipelineExecutionArn": arn,
	})
}
