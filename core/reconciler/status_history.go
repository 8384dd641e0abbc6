package reconciler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/repository"

	"github.com/rs/zerolog/log"
)

// maxApplyAttempts bounds the re-read/re-apply loop when a conditional write
// loses a race against a concurrent status event
const maxApplyAttempts = 3

// ExecutionStore is the record access the reconciler needs
type ExecutionStore interface {
	FindByPipelineArn(arn string) (*models.TrainingExecution, error)
	SaveStatusHistory(exec *models.TrainingExecution) error
}

// StatusHistoryReconciler folds out-of-order status events from the engine
// into the ordered history lists on a training execution
type StatusHistoryReconciler struct {
	store ExecutionStore
}

// NewStatusHistoryReconciler creates a new status history reconciler
func NewStatusHistoryReconciler(store ExecutionStore) *StatusHistoryReconciler {
	return &StatusHistoryReconciler{store: store}
}

// ApplyExecutionStatusChange appends a pipeline-level status change to the
// owning execution's history. The stored list is fully sorted after the call,
// whatever order events arrived in.
func (r *StatusHistoryReconciler) ApplyExecutionStatusChange(detail models.ExecutionStatusChangeDetail) error {
	change := models.ExecutionStatusChange{
		PreviousStatus: detail.PreviousPipelineExecutionStatus,
		CurrentStatus:  detail.CurrentPipelineExecutionStatus,
		StartTime:      detail.ExecutionStartTime,
		EndTime:        detail.ExecutionEndTime,
	}

	return r.apply(detail.PipelineExecutionArn, func(exec *models.TrainingExecution) {
		exec.ExecStatusChanges = append(exec.ExecStatusChanges, change)
		SortExecutionChanges(exec.ExecStatusChanges)
		if status, ok := trainingStatusOf(detail.CurrentPipelineExecutionStatus); ok {
			exec.TrainingStatus = status
		}
	})
}

// ApplyStepStatusChange appends a step-level status change to the owning
// execution's history
func (r *StatusHistoryReconciler) ApplyStepStatusChange(detail models.StepStatusChangeDetail) error {
	change := models.StepStatusChange{
		StepType:       detail.StepType,
		PreviousStatus: detail.PreviousStepStatus,
		CurrentStatus:  detail.CurrentStepStatus,
		StartTime:      detail.StepStartTime,
		EndTime:        detail.StepEndTime,
	}

	return r.apply(detail.PipelineExecutionArn, func(exec *models.TrainingExecution) {
		exec.StepStatusChanges = append(exec.StepStatusChanges, change)
		SortStepChanges(exec.StepStatusChanges)
	})
}

func (r *StatusHistoryReconciler) apply(arn string, mutate func(*models.TrainingExecution)) error {
	var err error
	for attempt := 0; attempt < maxApplyAttempts; attempt++ {
		var exec *models.TrainingExecution
		exec, err = r.store.FindByPipelineArn(arn)
		if err != nil {
			log.Error().Err(err).Str("pipelineExecutionArn", arn).
				Msg("status change dropped: execution lookup failed")
			return err
		}

		mutate(exec)

		err = r.store.SaveStatusHistory(exec)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			log.Error().Err(err).Str("executionId", exec.ID).
				Msg("status change dropped: history update failed")
			return err
		}
		log.Debug().Str("executionId", exec.ID).Int("attempt", attempt+1).
			Msg("status history write lost a race, retrying")
	}

	log.Error().Err(err).Str("pipelineExecutionArn", arn).
		Msg("status change dropped: version conflicts exhausted retries")
	return fmt.Errorf("apply status change for %s: %w", arn, err)
}

// SortExecutionChanges sorts ascending by start time; at equal start times an
// entry with a set end time sorts after one without, so an in-progress entry
// never displaces a completed one.
func SortExecutionChanges(changes []models.ExecutionStatusChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changeLess(changes[i].StartTime, changes[i].EndTime != nil,
			changes[j].StartTime, changes[j].EndTime != nil)
	})
}

// SortStepChanges sorts step changes with the same ordering rule
func SortStepChanges(changes []models.StepStatusChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changeLess(changes[i].StartTime, changes[i].EndTime != nil,
			changes[j].StartTime, changes[j].EndTime != nil)
	})
}

func changeLess(aStart time.Time, aEnded bool, bStart time.Time, bEnded bool) bool {
	if !aStart.Equal(bStart) {
		return aStart.Before(bStart)
	}
	return !aEnded && bEnded
}

func trainingStatusOf(pipelineStatus string) (models.TrainingStatus, bool) {
	switch pipelineStatus {
	case "Executing":
		return models.TrainingStatusExecuting, true
	case "Succeeded":
		return models.TrainingStatusSucceeded, true
	case "Failed":
		return models.TrainingStatusFailed, true
	case "Stopped":
		return models.TrainingStatusStopped, true
	default:
		return "", false
	}
}
