package routes

import (
	"asset-prediction-orchestrator/api/rest/handlers"
	"asset-prediction-orchestrator/core/forecast"
	"asset-prediction-orchestrator/core/lifecycle"
	"asset-prediction-orchestrator/core/pipeline"
	"asset-prediction-orchestrator/core/reconciler"
	"asset-prediction-orchestrator/core/repository"

	"github.com/gorilla/mux"
)

// Deps holds everything the route handlers need
type Deps struct {
	Executions   *repository.ExecutionRepository
	Templates    *repository.TemplateRepository
	Predictions  *repository.PredictionRepository
	Launcher     *pipeline.Launcher
	Manager      *lifecycle.EndpointManager
	Orchestrator *forecast.Orchestrator
	Statuses     *reconciler.StatusHistoryReconciler
	Models       *reconciler.ModelAttachmentHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, deps Deps) {
	executionHandler := handlers.NewExecutionHandler(deps.Executions, deps.Launcher)
	endpointHandler := handlers.NewEndpointHandler(deps.Manager, deps.Orchestrator, deps.Predictions)
	templateHandler := handlers.NewTemplateHandler(deps.Templates)
	eventHandler := handlers.NewEventHandler(deps.Statuses, deps.Models, deps.Manager)

	api := r.PathPrefix("/v1").Subrouter()

	// Template endpoints
	api.HandleFunc("/templates", templateHandler.CreateTemplate).Methods("POST")
	api.HandleFunc("/templates", templateHandler.ListTemplates).Methods("GET")
	api.HandleFunc("/templates/{id}", templateHandler.GetTemplate).Methods("GET")

	// Execution endpoints
	api.HandleFunc("/executions", executionHandler.CreateExecution).Methods("POST")
	api.HandleFunc("/executions", executionHandler.ListExecutions).Methods("GET")
	api.HandleFunc("/executions/{id}", executionHandler.GetExecution).Methods("GET")
	api.HandleFunc("/executions/{id}/start", executionHandler.StartExecution).Methods("POST")

	// Endpoint lifecycle and invocation
	api.HandleFunc("/executions/{id}/endpoint", endpointHandler.CreateEndpoint).Methods("POST")
	api.HandleFunc("/executions/{id}/endpoint", endpointHandler.DeleteEndpoint).Methods("DELETE")
	api.HandleFunc("/executions/{id}/invoke", endpointHandler.InvokeEndpoint).Methods("POST")
	api.HandleFunc("/executions/{id}/prediction", endpointHandler.GetPrediction).Methods("GET")

	// Engine event intake
	api.HandleFunc("/events", eventHandler.HandleEvent).Methods("POST")
}
