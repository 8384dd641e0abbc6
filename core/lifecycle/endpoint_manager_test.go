package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"asset-prediction-orchestrator/core/models"
	"asset-prediction-orchestrator/core/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutionStore struct {
	execs map[string]*models.TrainingExecution
}

func newFakeExecutionStore(execs ...*models.TrainingExecution) *fakeExecutionStore {
	s := &fakeExecutionStore{execs: map[string]*models.TrainingExecution{}}
	for _, e := range execs {
		s.execs[e.ID] = e
	}
	return s
}

func (f *fakeExecutionStore) GetByID(id string) (*models.TrainingExecution, error) {
	exec, ok := f.execs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return exec, nil
}

func (f *fakeExecutionStore) SetEndpointInfo(id string, info *models.EndpointInfo) error {
	exec, ok := f.execs[id]
	if !ok {
		return repository.ErrNotFound
	}
	exec.EndpointInfo = info
	return nil
}

func (f *fakeExecutionStore) SetEndpointStatus(id string, status models.EndpointStatus) error {
	exec, ok := f.execs[id]
	if !ok || exec.EndpointInfo == nil {
		return repository.ErrNotFound
	}
	exec.EndpointInfo.Status = status
	return nil
}

func (f *fakeExecutionStore) ClearEndpointInfo(id string) error {
	exec, ok := f.execs[id]
	if !ok {
		return repository.ErrNotFound
	}
	exec.EndpointInfo = nil
	return nil
}

type fakeMaintenanceStore struct {
	recs map[string]*models.EndpointMaintenanceRecord
}

func newFakeMaintenanceStore(recs ...*models.EndpointMaintenanceRecord) *fakeMaintenanceStore {
	s := &fakeMaintenanceStore{recs: map[string]*models.EndpointMaintenanceRecord{}}
	for _, r := range recs {
		s.recs[r.ID] = r
	}
	return s
}

func (f *fakeMaintenanceStore) Put(rec *models.EndpointMaintenanceRecord) error {
	f.recs[rec.ID] = rec
	return nil
}

func (f *fakeMaintenanceStore) FindByArn(arn string) (*models.EndpointMaintenanceRecord, error) {
	for _, rec := range f.recs {
		if rec.EndpointArn == arn {
			return rec, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMaintenanceStore) UpdateStatus(id string, status models.EndpointStatus, lastModified time.Time) error {
	rec, ok := f.recs[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Status = status
	rec.LastModifiedTime = lastModified
	return nil
}

func (f *fakeMaintenanceStore) Delete(id string) error {
	if _, ok := f.recs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.recs, id)
	return nil
}

type fakeRuntime struct {
	createConfigErr error
	createErr       error
	deleteErr       error
	deleteConfigErr error

	configsCreated   []string
	endpointsCreated []string
	calls            []string
}

func (f *fakeRuntime) CreateEndpointConfig(ctx context.Context, configName, modelName string) (string, error) {
	if f.createConfigErr != nil {
		return "", f.createConfigErr
	}
	f.configsCreated = append(f.configsCreated, configName)
	f.calls = append(f.calls, "create-config")
	return "arn:config/" + configName, nil
}

func (f *fakeRuntime) CreateEndpoint(ctx context.Context, endpointName, configName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.endpointsCreated = append(f.endpointsCreated, endpointName)
	f.calls = append(f.calls, "create-endpoint")
	return "arn:endpoint/" + endpointName, nil
}

func (f *fakeRuntime) DeleteEndpoint(ctx context.Context, endpointName string) error {
	f.calls = append(f.calls, "delete-endpoint")
	return f.deleteErr
}

func (f *fakeRuntime) DeleteEndpointConfig(ctx context.Context, configName string) error {
	f.calls = append(f.calls, "delete-config")
	return f.deleteConfigErr
}

func trainedExecution() *models.TrainingExecution {
	return &models.TrainingExecution{
		ID:             "exec-1",
		TrainingStatus: models.TrainingStatusSucceeded,
		ModelInfo:      &models.ModelInfo{Name: "model-1", Arn: "arn:model/model-1"},
	}
}

func liveEndpointInfo() *models.EndpointInfo {
	return &models.EndpointInfo{
		Name:       "endpoint-exec-1",
		Arn:        "arn:endpoint/endpoint-exec-1",
		ConfigName: "config-exec-1",
		ConfigArn:  "arn:config/config-exec-1",
		Status:     models.EndpointStatusInService,
	}
}

func liveMaintenanceRecord() *models.EndpointMaintenanceRecord {
	return &models.EndpointMaintenanceRecord{
		ID:               "exec-1",
		EndpointName:     "endpoint-exec-1",
		EndpointArn:      "arn:endpoint/endpoint-exec-1",
		ConfigName:       "config-exec-1",
		ConfigArn:        "arn:config/config-exec-1",
		Status:           models.EndpointStatusInService,
		LastModifiedTime: time.Now(),
	}
}

func TestCreateEndpoint(t *testing.T) {
	execs := newFakeExecutionStore(trainedExecution())
	recs := newFakeMaintenanceStore()
	rt := &fakeRuntime{}
	m := NewEndpointManager(execs, recs, rt)

	info, err := m.CreateEndpoint(context.Background(), "exec-1")
	require.NoError(t, err)

	assert.Equal(t, "endpoint-exec-1", info.Name)
	assert.Equal(t, "config-exec-1", info.ConfigName)
	assert.Equal(t, models.EndpointStatusCreating, info.Status)

	// config must exist before the endpoint referencing it
	assert.Equal(t, []string{"create-config", "create-endpoint"}, rt.calls)

	require.Contains(t, recs.recs, "exec-1")
	assert.Equal(t, models.EndpointStatusCreating, recs.recs["exec-1"].Status)
	assert.Equal(t, info, execs.execs["exec-1"].EndpointInfo)
}

func TestCreateEndpointWithoutModel(t *testing.T) {
	exec := trainedExecution()
	exec.ModelInfo = nil
	m := NewEndpointManager(newFakeExecutionStore(exec), newFakeMaintenanceStore(), &fakeRuntime{})

	_, err := m.CreateEndpoint(context.Background(), "exec-1")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateEndpointAlreadyExists(t *testing.T) {
	exec := trainedExecution()
	exec.EndpointInfo = liveEndpointInfo()
	rt := &fakeRuntime{}
	m := NewEndpointManager(newFakeExecutionStore(exec), newFakeMaintenanceStore(), rt)

	_, err := m.CreateEndpoint(context.Background(), "exec-1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, rt.calls, "no runtime call on a conflicting request")
}

func TestCreateEndpointUnknownExecution(t *testing.T) {
	m := NewEndpointManager(newFakeExecutionStore(), newFakeMaintenanceStore(), &fakeRuntime{})
	_, err := m.CreateEndpoint(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestHandleEndpointStateChangeSyncsStatus(t *testing.T) {
	exec := trainedExecution()
	exec.EndpointInfo = liveEndpointInfo()
	exec.EndpointInfo.Status = models.EndpointStatusCreating
	rec := liveMaintenanceRecord()
	rec.Status = models.EndpointStatusCreating
	execs := newFakeExecutionStore(exec)
	recs := newFakeMaintenanceStore(rec)
	m := NewEndpointManager(execs, recs, &fakeRuntime{})

	modified := time.Now().Add(-time.Minute)
	err := m.HandleEndpointStateChange(context.Background(), models.EndpointStateChangeDetail{
		EndpointArn:      rec.EndpointArn,
		EndpointStatus:   models.EndpointStatusInService,
		LastModifiedTime: modified,
	})
	require.NoError(t, err)

	assert.Equal(t, models.EndpointStatusInService, recs.recs["exec-1"].Status)
	assert.Equal(t, modified, recs.recs["exec-1"].LastModifiedTime)
	assert.Equal(t, models.EndpointStatusInService, exec.EndpointInfo.Status)
}

func TestHandleEndpointStateChangeTerminalClearsRecords(t *testing.T) {
	exec := trainedExecution()
	exec.EndpointInfo = liveEndpointInfo()
	rec := liveMaintenanceRecord()
	execs := newFakeExecutionStore(exec)
	recs := newFakeMaintenanceStore(rec)
	m := NewEndpointManager(execs, recs, &fakeRuntime{})

	err := m.HandleEndpointStateChange(context.Background(), models.EndpointStateChangeDetail{
		EndpointArn:    rec.EndpointArn,
		EndpointStatus: models.EndpointStatusDeleted,
	})
	require.NoError(t, err)

	assert.NotContains(t, recs.recs, "exec-1")
	assert.Nil(t, exec.EndpointInfo)
}

func TestHandleEndpointStateChangeUnknownArn(t *testing.T) {
	m := NewEndpointManager(newFakeExecutionStore(), newFakeMaintenanceStore(), &fakeRuntime{})
	err := m.HandleEndpointStateChange(context.Background(), models.EndpointStateChangeDetail{
		EndpointArn:    "arn:endpoint/unknown",
		EndpointStatus: models.EndpointStatusInService,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteEndpoint(t *testing.T) {
	exec := trainedExecution()
	exec.EndpointInfo = liveEndpointInfo()
	rec := liveMaintenanceRecord()
	execs := newFakeExecutionStore(exec)
	recs := newFakeMaintenanceStore(rec)
	rt := &fakeRuntime{}
	m := NewEndpointManager(execs, recs, rt)

	require.NoError(t, m.DeleteEndpoint(context.Background(), "exec-1"))

	// endpoint is torn down before its config
	assert.Equal(t, []string{"delete-endpoint", "delete-config"}, rt.calls)

	// records stay until the engine confirms, marked as deleting
	assert.Equal(t, models.EndpointStatusDeleting, recs.recs["exec-1"].Status)
	assert.Equal(t, models.EndpointStatusDeleting, exec.EndpointInfo.Status)
}

func TestDeleteEndpointWithoutEndpoint(t *testing.T) {
	m := NewEndpointManager(newFakeExecutionStore(trainedExecution()), newFakeMaintenanceStore(), &fakeRuntime{})
	err := m.DeleteEndpoint(context.Background(), "exec-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteEndpointAlreadyDeleting(t *testing.T) {
	exec := trainedExecution()
	exec.EndpointInfo = liveEndpointInfo()
	exec.EndpointInfo.Status = models.EndpointStatusDeleting
	rt := &fakeRuntime{}
	m := NewEndpointManager(newFakeExecutionStore(exec), newFakeMaintenanceStore(), rt)

	require.NoError(t, m.DeleteEndpoint(context.Background(), "exec-1"))
	assert.Empty(t, rt.calls, "a second delete while one is in flight is a no-op")
}

func TestDeleteEndpointResourcesAbortsOnFailure(t *testing.T) {
	rt := &fakeRuntime{deleteErr: errors.New("throttled")}
	m := NewEndpointManager(newFakeExecutionStore(), newFakeMaintenanceStore(), rt)

	err := m.DeleteEndpointResources(context.Background(), "endpoint-exec-1", "config-exec-1")
	assert.ErrorIs(t, err, ErrPartialDeletion)
	assert.NotContains(t, rt.calls, "delete-config", "config deletion must not run after a failed endpoint delete")
}
