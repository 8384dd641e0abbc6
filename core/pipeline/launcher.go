package pipeline

import (
	"context"
	"errors"
	"fmt"

	"asset-prediction-orchestrator/core/models"

	"github.com/rs/zerolog/log"
)

// ErrAlreadyStarted means the execution already has a pipeline run attached;
// retraining requires cloning the execution or waiting for the current run
var ErrAlreadyStarted = errors.New("pipeline execution already in progress")

// ExecutionStore is the record access the launcher needs
type ExecutionStore interface {
	GetByID(id string) (*models.TrainingExecution, error)
	SetPipelineExecution(id, arn string, status models.TrainingStatus) error
}

// TemplateSource loads training templates
type TemplateSource interface {
	GetByID(id string) (*models.TrainingTemplate, error)
}

// StartParams carries everything the engine needs to start a training run
type StartParams struct {
	ExecutionID   string
	AssetsDataURL string
	Meta          models.DeepARMeta
}

// Engine starts training pipeline executions and hands back the correlation
// id synchronously
type Engine interface {
	StartPipelineExecution(ctx context.Context, params StartParams) (string, error)
}

// Launcher starts the external training pipeline for an execution
type Launcher struct {
	executions    ExecutionStore
	templates     TemplateSource
	engine        Engine
	assetsDataURL string
}

// NewLauncher creates a new pipeline launcher
func NewLauncher(executions ExecutionStore, templates TemplateSource, engine Engine, assetsDataURL string) *Launcher {
	return &Launcher{
		executions:    executions,
		templates:     templates,
		engine:        engine,
		assetsDataURL: assetsDataURL,
	}
}

// Start kicks off the training pipeline for the execution and records the
// returned correlation id. The correlation id is set once; a second start on
// the same execution is a conflict.
func (l *Launcher) Start(ctx context.Context, executionID string) (string, error) {
	exec, err := l.executions.GetByID(executionID)
	if err != nil {
		return "", err
	}
	if exec.PipelineExecutionArn != "" {
		return "", fmt.Errorf("%w: execution %s", ErrAlreadyStarted, executionID)
	}

	tpl, err := l.templates.GetByID(exec.TemplateID)
	if err != nil {
		return "", err
	}

	arn, err := l.engine.StartPipelineExecution(ctx, StartParams{
		ExecutionID:   executionID,
		AssetsDataURL: l.assetsDataURL,
		Meta:          tpl.DeepARMeta,
	})
	if err != nil {
		return "", fmt.Errorf("start pipeline execution: %w", err)
	}

	if err := l.executions.SetPipelineExecution(executionID, arn, models.TrainingStatusStarting); err != nil {
		return "", err
	}

	log.Info().Str("executionId", executionID).Str("pipelineExecutionArn", arn).
		Msg("training pipeline execution started")
	return arn, nil
}
