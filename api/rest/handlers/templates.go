package handlers

import (
	"encoding/json"
	"net/http"

	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/repository"

	"github.com/gorilla/mux"
)

// TemplateHandler handles training-template HTTP requests
type TemplateHandler struct {
	templates *repository.TemplateRepository
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templates *repository.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// CreateTemplateRequest represents the request to create a template
type CreateTemplateRequest struct {
	Name           string            `json:"name"`
	PredictedAsset string            `json:"predictedAsset"`
	DeepARMeta     models.DeepARMeta `json:"deepARMeta"`
}

// CreateTemplate handles POST /v1/templates
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.PredictedAsset == "" {
		http.Error(w, "name and predictedAsset are required", http.StatusBadRequest)
		return
	}

	tpl := &models.TrainingTemplate{
		Name:           req.Name,
		PredictedAsset: req.PredictedAsset,
		DeepARMeta:     req.DeepARMeta,
	}
	if err := h.templates.Create(tpl); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// GetTemplate handles GET /v1/templates/{id}
func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.templates.GetByID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// ListTemplates handles GET /v1/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.templates.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpls)
}
