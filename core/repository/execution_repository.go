package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"asset-prediction-orchestrator/core/models"

	"github.com/google/uuid"
)

// ExecutionRepository handles database operations for training executions
type ExecutionRepository struct {
	db *DB
}

// NewExecutionRepository creates a new execution repository
func NewExecutionRepository(db *DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create creates a new training execution in the database
func (r *ExecutionRepository) Create(exec *models.TrainingExecution) error {
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	if exec.TrainingStatus == "" {
		exec.TrainingStatus = models.TrainingStatusDraft
	}

	execChanges, err := json.Marshal(exec.ExecStatusChanges)
	if err != nil {
		return err
	}
	stepChanges, err := json.Marshal(exec.StepStatusChanges)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO training_executions (
			id, template_id, description, pipeline_execution_arn, training_status,
			exec_status_changes, step_status_changes, version, created_at, updated_at
		) VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, 0, $8, $8)
	`
	_, err = r.db.Exec(query,
		exec.ID,
		exec.TemplateID,
		exec.Description,
		exec.PipelineExecutionArn,
		exec.TrainingStatus,
		execChanges,
		stepChanges,
		now,
	)
	if err != nil {
		return err
	}

	exec.CreatedAt = now
	exec.UpdatedAt = now
	return nil
}

const executionColumns = `
	id, template_id, description, pipeline_execution_arn, training_status,
	exec_status_changes, step_status_changes, model_info, endpoint_info,
	version, created_at, updated_at
`

// GetByID retrieves a training execution by its primary id
func (r *ExecutionRepository) GetByID(id string) (*models.TrainingExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM training_executions WHERE id = $1`
	exec, err := scanExecution(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return exec, err
}

// FindByPipelineArn resolves an execution via its correlation id. Exactly one
// owner is expected; zero yields ErrNotFound, more than one yields
// ErrAmbiguousCorrelation rather than silently picking the first match.
func (r *ExecutionRepository) FindByPipelineArn(arn string) (*models.TrainingExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM training_executions WHERE pipeline_execution_arn = $1`
	rows, err := r.db.Query(query, arn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found *models.TrainingExecution
	for rows.Next() {
		if found != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousCorrelation, arn)
		}
		found, err = scanExecution(rows)
		if err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// List retrieves executions, newest first
func (r *ExecutionRepository) List(limit int) ([]*models.TrainingExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM training_executions ORDER BY created_at DESC LIMIT $1`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var execs []*models.TrainingExecution
	for rows.Next() {
		exec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		execs = append(execs, exec)
	}
	return execs, rows.Err()
}

// SaveStatusHistory persists both status-history lists conditionally on the
// version read earlier. A lost race yields ErrVersionConflict so the caller
// can re-read and re-apply instead of overwriting a concurrent append.
func (r *ExecutionRepository) SaveStatusHistory(exec *models.TrainingExecution) error {
	execChanges, err := json.Marshal(exec.ExecStatusChanges)
	if err != nil {
		return err
	}
	stepChanges, err := json.Marshal(exec.StepStatusChanges)
	if err != nil {
		return err
	}

	query := `
		UPDATE training_executions
		SET exec_status_changes = $1, step_status_changes = $2, training_status = $3,
			version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5
	`
	res, err := r.db.Exec(query, execChanges, stepChanges, exec.TrainingStatus, exec.ID, exec.Version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// SetPipelineExecution records the correlation id handed back by the engine
// when the pipeline starts
func (r *ExecutionRepository) SetPipelineExecution(id, arn string, status models.TrainingStatus) error {
	query := `
		UPDATE training_executions
		SET pipeline_execution_arn = $1, training_status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $3
	`
	return r.execOne(query, arn, status, id)
}

// SetModelInfo overwrites the trained-model metadata wholesale
func (r *ExecutionRepository) SetModelInfo(id string, info *models.ModelInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	query := `
		UPDATE training_executions
		SET model_info = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`
	return r.execOne(query, data, id)
}

// SetEndpointInfo overwrites the mirrored endpoint info wholesale
func (r *ExecutionRepository) SetEndpointInfo(id string, info *models.EndpointInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	query := `
		UPDATE training_executions
		SET endpoint_info = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
	`
	return r.execOne(query, data, id)
}

// SetEndpointStatus patches only the mirrored endpoint status
func (r *ExecutionRepository) SetEndpointStatus(id string, status models.EndpointStatus) error {
	query := `
		UPDATE training_executions
		SET endpoint_info = jsonb_set(endpoint_info, '{endpointStatus}', to_jsonb($1::text)),
			version = version + 1, updated_at = NOW()
		WHERE id = $2 AND endpoint_info IS NOT NULL
	`
	return r.execOne(query, string(status), id)
}

// ClearEndpointInfo removes the mirrored endpoint info after terminal deletion
func (r *ExecutionRepository) ClearEndpointInfo(id string) error {
	query := `
		UPDATE training_executions
		SET endpoint_info = NULL, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(query, id)
}

func (r *ExecutionRepository) execOne(query string, args ...interface{}) error {
	res, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExecution(row rowScanner) (*models.TrainingExecution, error) {
	var exec models.TrainingExecution
	var pipelineArn sql.NullString
	var execChanges, stepChanges []byte
	var modelInfo, endpointInfo []byte

	err := row.Scan(
		&exec.ID,
		&exec.TemplateID,
		&exec.Description,
		&pipelineArn,
		&exec.TrainingStatus,
		&execChanges,
		&stepChanges,
		&modelInfo,
		&endpointInfo,
		&exec.Version,
		&exec.CreatedAt,
		&exec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if pipelineArn.Valid {
		exec.PipelineExecutionArn = pipelineArn.String
	}
	if err := json.Unmarshal(execChanges, &exec.ExecStatusChanges); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(stepChanges, &exec.StepStatusChanges); err != nil {
		return nil, err
	}
	if len(modelInfo) > 0 {
		if err := json.Unmarshal(modelInfo, &exec.ModelInfo); err != nil {
			return nil, err
		}
	}
	if len(endpointInfo) > 0 {
		if err := json.Unmarshal(endpointInfo, &exec.EndpointInfo); err != nil {
			return nil, err
		}
	}

	return &exec, nil
}
