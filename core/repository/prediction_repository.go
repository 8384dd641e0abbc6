package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"asset-prediction-orchestrator/core/models"
)

// PredictionRepository handles database operations for prediction records
type PredictionRepository struct {
	db *DB
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Put creates or overwrites the prediction record for an execution
func (r *PredictionRepository) Put(rec *models.PredictionRecord) error {
	windowItems, err := json.Marshal(rec.WindowItems)
	if err != nil {
		return err
	}
	prediction, err := json.Marshal(rec.Prediction)
	if err != nil {
		return err
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO predictions (id, template_id, window_items, prediction, training_end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			window_items = EXCLUDED.window_items,
			prediction = EXCLUDED.prediction,
			training_end_date = EXCLUDED.training_end_date,
			created_at = EXCLUDED.created_at
	`
	_, err = r.db.Exec(query, rec.ID, rec.TemplateID, windowItems, prediction, rec.TrainingEndDate, rec.CreatedAt)
	return err
}

// GetByID retrieves the prediction record for an execution
func (r *PredictionRepository) GetByID(id string) (*models.PredictionRecord, error) {
	query := `
		SELECT id, template_id, window_items, prediction, training_end_date, created_at
		FROM predictions
		WHERE id = $1
	`
	var rec models.PredictionRecord
	var windowItems, prediction []byte

	err := r.db.QueryRow(query, id).Scan(
		&rec.ID,
		&rec.TemplateID,
		&windowItems,
		&prediction,
		&rec.TrainingEndDate,
		&rec.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(windowItems, &rec.WindowItems); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(prediction, &rec.Prediction); err != nil {
		return nil, err
	}
	return &rec, nil
}
