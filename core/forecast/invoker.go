package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"asset-prediction-orchestrator/core/models"

	"github.com/rs/zerolog/log"
)

// ExecutionSource loads execution records
type ExecutionSource interface {
	GetByID(id string) (*models.TrainingExecution, error)
}

// TemplateSource loads training templates
type TemplateSource interface {
	GetByID(id string) (*models.TrainingTemplate, error)
}

// PredictionSink persists prediction records
type PredictionSink interface {
	Put(rec *models.PredictionRecord) error
}

// EndpointToucher refreshes the idle timer on a maintenance record
type EndpointToucher interface {
	TouchLastInvoke(id string) error
}

// SeriesSource reads the raw series for an asset ticker
type SeriesSource interface {
	GetSeriesCSV(ctx context.Context, ticker string) ([]byte, error)
}

// EndpointInvoker calls the inference endpoint synchronously. Callers impose
// their own timeout through the context.
type EndpointInvoker interface {
	InvokeEndpoint(ctx context.Context, endpointName string, payload []byte) ([]byte, error)
}

// Orchestrator runs one on-demand prediction: windowing, endpoint invocation,
// response reshaping, persistence, idle-timer refresh
type Orchestrator struct {
	executions  ExecutionSource
	templates   TemplateSource
	predictions PredictionSink
	endpoints   EndpointToucher
	series      SeriesSource
	invoker     EndpointInvoker
}

// NewOrchestrator creates a new invocation orchestrator
func NewOrchestrator(
	executions ExecutionSource,
	templates TemplateSource,
	predictions PredictionSink,
	endpoints EndpointToucher,
	series SeriesSource,
	invoker EndpointInvoker,
) *Orchestrator {
	return &Orchestrator{
		executions:  executions,
		templates:   templates,
		predictions: predictions,
		endpoints:   endpoints,
		series:      series,
		invoker:     invoker,
	}
}

type inferenceRequest struct {
	Instances     []inferenceInstance `json:"instances"`
	Configuration inferenceConfig     `json:"configuration"`
}

type inferenceInstance struct {
	Start  string    `json:"start"`
	Target []float64 `json:"target"`
}

type inferenceConfig struct {
	NumSamples  int      `json:"num_samples"`
	OutputTypes []string `json:"output_types"`
	Quantiles   []string `json:"quantiles"`
}

type inferenceResponse struct {
	Predictions []struct {
		Mean      []float64            `json:"mean"`
		Quantiles map[string][]float64 `json:"quantiles"`
	} `json:"predictions"`
}

// Invoke runs a prediction for the execution and persists the result. The
// prediction record is keyed by the execution id, so re-invoking overwrites
// the previous prediction.
func (o *Orchestrator) Invoke(ctx context.Context, executionID string, quantiles []float64, numSamples int) (*models.PredictionRecord, error) {
	exec, err := o.executions.GetByID(executionID)
	if err != nil {
		return nil, err
	}
	if exec.EndpointState() != models.EndpointStateInService {
		return nil, fmt.Errorf("%w: execution %s", ErrEndpointNotReady, executionID)
	}

	tpl, err := o.templates.GetByID(exec.TemplateID)
	if err != nil {
		return nil, err
	}
	meta := tpl.DeepARMeta

	csv, err := o.series.GetSeriesCSV(ctx, tpl.PredictedAsset)
	if err != nil {
		return nil, fmt.Errorf("load series for %s: %w", tpl.PredictedAsset, err)
	}
	rows, err := ParseSeriesCSV(csv)
	if err != nil {
		return nil, err
	}

	windows, err := BuildWindows(rows, meta.StartDataset, meta.EndTraining, meta.ContextLength, meta.PredictionLength)
	if err != nil {
		return nil, err
	}

	labels := make([]string, len(quantiles))
	for i, q := range quantiles {
		labels[i] = formatQuantile(q)
	}

	target := make([]float64, len(windows.TargetHistory))
	for i, row := range windows.TargetHistory {
		target[i] = row.Value
	}
	payload, err := json.Marshal(inferenceRequest{
		Instances: []inferenceInstance{{
			Start:  windows.TargetHistory[0].Date,
			Target: target,
		}},
		Configuration: inferenceConfig{
			NumSamples:  numSamples,
			OutputTypes: []string{"quantiles", "mean"},
			Quantiles:   labels,
		},
	})
	if err != nil {
		return nil, err
	}

	respBody, err := o.invoker.InvokeEndpoint(ctx, exec.EndpointInfo.Name, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamInvocation, err)
	}

	var resp inferenceResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUpstreamInvocation, err)
	}
	if len(resp.Predictions) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrUpstreamInvocation)
	}
	result := resp.Predictions[0]

	rec := &models.PredictionRecord{
		ID:              executionID,
		TemplateID:      exec.TemplateID,
		WindowItems:     windows.DisplayWindow,
		Prediction:      reshape(result.Mean, result.Quantiles, labels, meta.EndTraining, meta.PredictionLength),
		TrainingEndDate: meta.EndTraining,
		CreatedAt:       time.Now(),
	}
	if err := o.predictions.Put(rec); err != nil {
		return nil, err
	}

	// unconditional touch; a failure here costs an early cleanup at worst
	if err := o.endpoints.TouchLastInvoke(executionID); err != nil {
		log.Warn().Err(err).Str("executionId", executionID).
			Msg("failed to refresh endpoint idle timer")
	}

	return rec, nil
}

// reshape turns the flat response arrays into per-quantile dated series
// anchored the day after the training end, truncated to the prediction length
func reshape(mean []float64, byQuantile map[string][]float64, labels []string, trainingEnd time.Time, predictionLength int) map[string][]models.SeriesPoint {
	n := len(mean)
	if predictionLength < n {
		n = predictionLength
	}

	firstDay := trainingEnd.AddDate(0, 0, 1)
	prediction := make(map[string][]models.SeriesPoint, len(labels)+1)
	prediction["mean"] = make([]models.SeriesPoint, 0, n)
	for _, label := range labels {
		prediction[label] = make([]models.SeriesPoint, 0, n)
	}

	for i := 0; i < n; i++ {
		date := firstDay.AddDate(0, 0, i).Format(dateLayout)
		prediction["mean"] = append(prediction["mean"], models.SeriesPoint{Date: date, Value: mean[i]})
		for _, label := range labels {
			series := byQuantile[label]
			if i < len(series) {
				prediction[label] = append(prediction[label], models.SeriesPoint{Date: date, Value: series[i]})
			}
		}
	}
	return prediction
}

func formatQuantile(q float64) string {
	return strconv.FormatFloat(q, 'g', -1, 64)
}
