package reconciler

import (
	"context"
	"time"

	"asset-prediction-orchestrator/core/models"

	"github.com/rs/zerolog/log"
)

// ModelStore is the record access the attachment handler needs
type ModelStore interface {
	FindByPipelineArn(arn string) (*models.TrainingExecution, error)
	SetModelInfo(id string, info *models.ModelInfo) error
}

// ModelTagReader looks up the correlation tag directly on a model artifact,
// for when the event's own tags have not propagated yet
type ModelTagReader interface {
	ModelCorrelationTag(ctx context.Context, modelArn string) (string, error)
}

// ModelAttachmentHandler attaches trained-model metadata to its execution
// once the engine reports a new model artifact
type ModelAttachmentHandler struct {
	store      ModelStore
	tags       ModelTagReader
	retryDelay time.Duration
	retries    int
}

// NewModelAttachmentHandler creates a new model attachment handler
func NewModelAttachmentHandler(store ModelStore, tags ModelTagReader, retryDelay time.Duration, retries int) *ModelAttachmentHandler {
	return &ModelAttachmentHandler{
		store:      store,
		tags:       tags,
		retryDelay: retryDelay,
		retries:    retries,
	}
}

// HandleModelStateChange resolves the pipeline execution that produced the
// model and overwrites its ModelInfo. When the correlation tag cannot be
// recovered the event is abandoned rather than failed: without the tag the
// owning execution cannot be identified.
func (h *ModelAttachmentHandler) HandleModelStateChange(ctx context.Context, detail models.ModelStateChangeDetail) error {
	pipelineArn := detail.Tags[models.PipelineExecutionTagKey]

	if pipelineArn == "" {
		log.Warn().Str("modelArn", detail.ModelArn).
			Msg("pipeline execution arn missing from event tags, looking up directly")
		arn, err := h.lookupTag(ctx, detail.ModelArn)
		if err != nil {
			return err
		}
		if arn == "" {
			log.Warn().Str("modelArn", detail.ModelArn).
				Msg("pipeline execution arn not recoverable, abandoning model event")
			return nil
		}
		pipelineArn = arn
	}

	exec, err := h.store.FindByPipelineArn(pipelineArn)
	if err != nil {
		log.Error().Err(err).Str("pipelineExecutionArn", pipelineArn).
			Msg("model event dropped: execution lookup failed")
		return err
	}

	info := &models.ModelInfo{
		Name:    detail.ModelName,
		Arn:     detail.ModelArn,
		DataURL: detail.PrimaryContainer.ModelDataURL,
	}
	if err := h.store.SetModelInfo(exec.ID, info); err != nil {
		log.Error().Err(err).Str("executionId", exec.ID).Msg("model event dropped: update failed")
		return err
	}

	log.Info().Str("executionId", exec.ID).Str("modelName", detail.ModelName).
		Msg("model attached to training execution")
	return nil
}

// lookupTag tries the direct tag lookup, then waits and retries a bounded
// number of times before giving up with an empty result
func (h *ModelAttachmentHandler) lookupTag(ctx context.Context, modelArn string) (string, error) {
	arn, err := h.tags.ModelCorrelationTag(ctx, modelArn)
	if err != nil {
		log.Error().Err(err).Str("modelArn", modelArn).Msg("tag lookup failed")
	}
	if arn != "" {
		return arn, nil
	}

	for i := 0; i < h.retries; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(h.retryDelay):
		}

		arn, err = h.tags.ModelCorrelationTag(ctx, modelArn)
		if err != nil {
			log.Error().Err(err).Str("modelArn", modelArn).Msg("tag lookup retry failed")
			continue
		}
		if arn != "" {
			return arn, nil
		}
	}
	return "", nil
}
