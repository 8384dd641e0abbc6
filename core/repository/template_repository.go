package repository

import (
	"database/sql"
	"encoding/json"
	"time"

	"asset-prediction-orchestrator/core/models"

	"github.com/google/uuid"
)

// TemplateRepository handles database operations for training templates
type TemplateRepository struct {
	db *DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a new training template
func (r *TemplateRepository) Create(tpl *models.TrainingTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}

	meta, err := json.Marshal(tpl.DeepARMeta)
	if err != nil {
		return err
	}

	now := time.Now()
	query := `
		INSERT INTO training_templates (id, name, predicted_asset, deepar_meta, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`
	if _, err := r.db.Exec(query, tpl.ID, tpl.Name, tpl.PredictedAsset, meta, now); err != nil {
		return err
	}

	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	return nil
}

// GetByID retrieves a training template by id
func (r *TemplateRepository) GetByID(id string) (*models.TrainingTemplate, error) {
	query := `
		SELECT id, name, predicted_asset, deepar_meta, created_at, updated_at
		FROM training_templates
		WHERE id = $1
	`
	var tpl models.TrainingTemplate
	var meta []byte

	err := r.db.QueryRow(query, id).Scan(
		&tpl.ID,
		&tpl.Name,
		&tpl.PredictedAsset,
		&meta,
		&tpl.CreatedAt,
		&tpl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(meta, &tpl.DeepARMeta); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// List retrieves all training templates, newest first
func (r *TemplateRepository) List() ([]*models.TrainingTemplate, error) {
	query := `
		SELECT id, name, predicted_asset, deepar_meta, created_at, updated_at
		FROM training_templates
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tpls []*models.TrainingTemplate
	for rows.Next() {
		var tpl models.TrainingTemplate
		var meta []byte
		err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.PredictedAsset, &meta, &tpl.CreatedAt, &tpl.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meta, &tpl.DeepARMeta); err != nil {
			return nil, err
		}
		tpls = append(tpls, &tpl)
	}
	return tpls, rows.Err()
}
