package repository

import (
	"database/sql"
	"fmt"
	"time"

	"asset-prediction-orchestrator/core/models"
)

// EndpointRepository handles database operations for endpoint maintenance records
type EndpointRepository struct {
	db *DB
}

// NewEndpointRepository creates a new endpoint repository
func NewEndpointRepository(db *DB) *EndpointRepository {
	return &EndpointRepository{db: db}
}

// Put creates or replaces a maintenance record
func (r *EndpointRepository) Put(rec *models.EndpointMaintenanceRecord) error {
	query := `
		INSERT INTO endpoint_maintenance (
			id, endpoint_name, endpoint_arn, config_name, config_arn,
			status, last_modified_time, last_invoke_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			endpoint_name = EXCLUDED.endpoint_name,
			endpoint_arn = EXCLUDED.endpoint_arn,
			config_name = EXCLUDED.config_name,
			config_arn = EXCLUDED.config_arn,
			status = EXCLUDED.status,
			last_modified_time = EXCLUDED.last_modified_time,
			last_invoke_time = EXCLUDED.last_invoke_time
	`
	_, err := r.db.Exec(query,
		rec.ID,
		rec.EndpointName,
		rec.EndpointArn,
		rec.ConfigName,
		rec.ConfigArn,
		rec.Status,
		rec.LastModifiedTime,
		rec.LastInvokeTime,
	)
	return err
}

const endpointColumns = `
	id, endpoint_name, endpoint_arn, config_name, config_arn,
	status, last_modified_time, last_invoke_time
`

// GetByID retrieves a maintenance record by execution id
func (r *EndpointRepository) GetByID(id string) (*models.EndpointMaintenanceRecord, error) {
	query := `SELECT ` + endpointColumns + ` FROM endpoint_maintenance WHERE id = $1`
	rec, err := scanEndpoint(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rec, err
}

// FindByArn resolves a maintenance record via the endpoint ARN correlation id
func (r *EndpointRepository) FindByArn(arn string) (*models.EndpointMaintenanceRecord, error) {
	query := `SELECT ` + endpointColumns + ` FROM endpoint_maintenance WHERE endpoint_arn = $1`
	rows, err := r.db.Query(query, arn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found *models.EndpointMaintenanceRecord
	for rows.Next() {
		if found != nil {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousCorrelation, arn)
		}
		found, err = scanEndpoint(rows)
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

// List retrieves all maintenance records
func (r *EndpointRepository) List() ([]*models.EndpointMaintenanceRecord, error) {
	query := `SELECT ` + endpointColumns + ` FROM endpoint_maintenance`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.EndpointMaintenanceRecord
	for rows.Next() {
		rec, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// UpdateStatus updates the runtime status and modification time
func (r *EndpointRepository) UpdateStatus(id string, status models.EndpointStatus, lastModified time.Time) error {
	query := `
		UPDATE endpoint_maintenance
		SET status = $1, last_modified_time = $2
		WHERE id = $3
	`
	res, err := r.db.Exec(query, status, lastModified, id)
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

// TouchLastInvoke refreshes the idle timer after a successful invocation
func (r *EndpointRepository) TouchLastInvoke(id string) error {
	query := `UPDATE endpoint_maintenance SET last_invoke_time = NOW() WHERE id = $1`
	res, err := r.db.Exec(query, id)
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

// ClaimForDeletion conditionally moves a record into DELETING so the cleanup
// sweep and the state-sync handler cannot both act on the same transition.
// It reports false when the record is already being deleted.
func (r *EndpointRepository) ClaimForDeletion(id string) (bool, error) {
	query := `
		UPDATE endpoint_maintenance
		SET status = $1
		WHERE id = $2 AND status NOT IN ($1, $3)
	`
	res, err := r.db.Exec(query, models.EndpointStatusDeleting, id, models.EndpointStatusDeleted)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a maintenance record once the engine confirms the endpoint
// is gone
func (r *EndpointRepository) Delete(id string) error {
	_, err := r.db.Exec(`DELETE FROM endpoint_maintenance WHERE id = $1`, id)
	return err
}

func scanEndpoint(row rowScanner) (*models.EndpointMaintenanceRecord, error) {
	var rec models.EndpointMaintenanceRecord
	var lastInvoke sql.NullTime

	err := row.Scan(
		&rec.ID,
		&rec.EndpointName,
		&rec.EndpointArn,
		&rec.ConfigName,
		&rec.ConfigArn,
		&rec.Status,
		&rec.LastModifiedTime,
		&lastInvoke,
	)
	if err != nil {
		return nil, err
	}

	if lastInvoke.Valid {
		rec.LastInvokeTime = &lastInvoke.Time
	}
	return &rec, nil
}
