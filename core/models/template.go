package models

import "time"

// TrainingTemplate describes how a model for one asset is trained. The
// orchestrator only reads the DeepAR boundaries and hyper-parameters; the
// feature-engineering settings are opaque payload for the external engine.
type TrainingTemplate struct {
	ID             string
	Name           string
	PredictedAsset string // ticker of the asset whose series is predicted
	DeepARMeta     DeepARMeta
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DeepARMeta holds the training window boundaries and model dimensions
type DeepARMeta struct {
	StartDataset     time.Time   `json:"startDataset"`
	StartTraining    time.Time   `json:"startTraining"`
	EndTraining      time.Time   `json:"endTraining"`
	ContextLength    int         `json:"contextLength"`
	PredictionLength int         `json:"predictionLength"`
	HyperParams      HyperParams `json:"hyperParams"`
}

// HyperParams are passed through to the training pipeline unmodified
type HyperParams struct {
	Epochs                int     `json:"epochs"`
	EarlyStoppingPatience int     `json:"early_stopping_patience"`
	MiniBatchSize         int     `json:"mini_batch_size"`
	LearningRate          float64 `json:"learning_rate"`
}
