package models

import "time"

// SeriesPoint is one dated value of an asset time series
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// PredictionRecord is the persisted result of one endpoint invocation.
// Its id equals the execution id, so re-invoking overwrites the previous one.
type PredictionRecord struct {
	ID              string
	TemplateID      string
	WindowItems     []SeriesPoint            // observed slice around the training end
	Prediction      map[string][]SeriesPoint // quantile label ("0.5", ... and "mean") -> dated series
	TrainingEndDate time.Time
	CreatedAt       time.Time
}
