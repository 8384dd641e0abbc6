package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/repository"

	"github.com/rs/zerolog/log"
)

// ExecutionStore is the execution-record access the lifecycle manager needs
type ExecutionStore interface {
	GetByID(id string) (*models.TrainingExecution, error)
	SetEndpointInfo(id string, info *models.EndpointInfo) error
	SetEndpointStatus(id string, status models.EndpointStatus) error
	ClearEndpointInfo(id string) error
}

// MaintenanceStore is the maintenance-record access the lifecycle manager needs
type MaintenanceStore interface {
	Put(rec *models.EndpointMaintenanceRecord) error
	FindByArn(arn string) (*models.EndpointMaintenanceRecord, error)
	UpdateStatus(id string, status models.EndpointStatus, lastModified time.Time) error
	Delete(id string) error
}

// EndpointRuntime is the external endpoint control plane
type EndpointRuntime interface {
	CreateEndpointConfig(ctx context.Context, configName, modelName string) (string, error)
	CreateEndpoint(ctx context.Context, endpointName, configName string) (string, error)
	DeleteEndpoint(ctx context.Context, endpointName string) error
	DeleteEndpointConfig(ctx context.Context, configName string) error
}

// EndpointManager drives the inference-endpoint lifecycle and keeps the
// execution record and the maintenance record in sync
type EndpointManager struct {
	executions ExecutionStore
	endpoints  MaintenanceStore
	runtime    EndpointRuntime
}

// NewEndpointManager creates a new endpoint lifecycle manager
func NewEndpointManager(executions ExecutionStore, endpoints MaintenanceStore, runtime EndpointRuntime) *EndpointManager {
	return &EndpointManager{
		executions: executions,
		endpoints:  endpoints,
		runtime:    runtime,
	}
}

// CreateEndpoint provisions an inference endpoint for a completed execution.
// The endpoint configuration must exist before the endpoint referencing it,
// so it is created first.
func (m *EndpointManager) CreateEndpoint(ctx context.Context, executionID string) (*models.EndpointInfo, error) {
	exec, err := m.executions.GetByID(executionID)
	if err != nil {
		return nil, err
	}

	if exec.ModelInfo == nil {
		return nil, fmt.Errorf("%w: no model assigned to execution %s", ErrConflict, executionID)
	}
	if exec.EndpointState() != models.EndpointStateNone {
		return nil, fmt.Errorf("%w: execution %s already has an endpoint", ErrConflict, executionID)
	}

	configName := "config-" + executionID
	endpointName := "endpoint-" + executionID

	configArn, err := m.runtime.CreateEndpointConfig(ctx, configName, exec.ModelInfo.Name)
	if err != nil {
		return nil, fmt.Errorf("create endpoint config: %w", err)
	}
	endpointArn, err := m.runtime.CreateEndpoint(ctx, endpointName, configName)
	if err != nil {
		return nil, fmt.Errorf("create endpoint: %w", err)
	}

	info := &models.EndpointInfo{
		Name:       endpointName,
		Arn:        endpointArn,
		ConfigName: configName,
		ConfigArn:  configArn,
		Status:     models.EndpointStatusCreating,
	}
	if err := m.executions.SetEndpointInfo(executionID, info); err != nil {
		return nil, err
	}

	rec := &models.EndpointMaintenanceRecord{
		ID:               executionID,
		EndpointName:     endpointName,
		EndpointArn:      endpointArn,
		ConfigName:       configName,
		ConfigArn:        configArn,
		Status:           models.EndpointStatusCreating,
		LastModifiedTime: time.Now(),
	}
	if err := m.endpoints.Put(rec); err != nil {
		return nil, err
	}

	log.Info().Str("executionId", executionID).Str("endpointArn", endpointArn).
		Msg("endpoint creation requested")
	return info, nil
}

// HandleEndpointStateChange applies an endpoint status notification from the
// engine to both records. Terminal deleted/deleting statuses remove the
// maintenance record and clear the mirrored endpoint info; this is the only
// place maintenance records are removed.
func (m *EndpointManager) HandleEndpointStateChange(ctx context.Context, detail models.EndpointStateChangeDetail) error {
	if detail.EndpointArn == "" {
		log.Warn().Msg("endpoint state change without arn, skipping")
		return nil
	}

	rec, err := m.endpoints.FindByArn(detail.EndpointArn)
	if err != nil {
		log.Error().Err(err).Str("endpointArn", detail.EndpointArn).
			Msg("endpoint state change dropped: maintenance record lookup failed")
		return err
	}

	if detail.EndpointStatus.Terminal() {
		if err := m.endpoints.Delete(rec.ID); err != nil {
			log.Error().Err(err).Str("executionId", rec.ID).
				Msg("endpoint state change dropped: maintenance record delete failed")
			return err
		}
		if err := m.executions.ClearEndpointInfo(rec.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("executionId", rec.ID).
				Msg("failed to clear endpoint info on execution")
			return err
		}
		log.Info().Str("executionId", rec.ID).Str("endpointArn", detail.EndpointArn).
			Msg("endpoint removed, records cleared")
		return nil
	}

	if err := m.endpoints.UpdateStatus(rec.ID, detail.EndpointStatus, detail.LastModifiedTime); err != nil {
		log.Error().Err(err).Str("executionId", rec.ID).
			Msg("endpoint state change dropped: maintenance record update failed")
		return err
	}
	if err := m.executions.SetEndpointStatus(rec.ID, detail.EndpointStatus); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Error().Err(err).Str("executionId", rec.ID).
			Msg("failed to mirror endpoint status on execution")
		return err
	}

	log.Info().Str("executionId", rec.ID).Str("status", string(detail.EndpointStatus)).
		Msg("endpoint status synced")
	return nil
}

// DeleteEndpoint tears down an execution's endpoint: first the endpoint, then
// its configuration (a config cannot be removed while its endpoint exists).
// The maintenance record itself is removed asynchronously once the engine
// confirms deletion, via HandleEndpointStateChange.
func (m *EndpointManager) DeleteEndpoint(ctx context.Context, executionID string) error {
	exec, err := m.executions.GetByID(executionID)
	if err != nil {
		return err
	}

	switch exec.EndpointState() {
	case models.EndpointStateNone:
		return fmt.Errorf("execution %s has no endpoint: %w", executionID, repository.ErrNotFound)
	case models.EndpointStateDeleting:
		// already on its way out, nothing to repeat
		return nil
	}

	info := exec.EndpointInfo
	if err := m.DeleteEndpointResources(ctx, info.Name, info.ConfigName); err != nil {
		return err
	}

	if err := m.endpoints.UpdateStatus(executionID, models.EndpointStatusDeleting, time.Now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return m.executions.SetEndpointStatus(executionID, models.EndpointStatusDeleting)
}

// DeleteEndpointResources issues the two-step deletion against the runtime.
// The first failing step aborts the sequence; both steps are idempotent on
// the runtime side, so retrying the whole delete is safe.
func (m *EndpointManager) DeleteEndpointResources(ctx context.Context, endpointName, configName string) error {
	if err := m.runtime.DeleteEndpoint(ctx, endpointName); err != nil {
		return fmt.Errorf("%w: delete endpoint %s: %v", ErrPartialDeletion, endpointName, err)
	}
	log.Info().Str("endpointName", endpointName).Msg("endpoint deletion requested")

	if err := m.runtime.DeleteEndpointConfig(ctx, configName); err != nil {
		return fmt.Errorf("%w: delete endpoint config %s: %v", ErrPartialDeletion, configName, err)
	}
	log.Info().Str("configName", configName).Msg("endpoint config deletion requested")
	return nil
}
