package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"asset-prediction-orchestrator/core/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutionSource struct {
	exec *models.TrainingExecution
}

func (f *fakeExecutionSource) GetByID(id string) (*models.TrainingExecution, error) {
	if f.exec == nil || f.exec.ID != id {
		return nil, errors.New("not found")
	}
	return f.exec, nil
}

type fakeTemplateSource struct {
	tpl *models.TrainingTemplate
}

func (f *fakeTemplateSource) GetByID(id string) (*models.TrainingTemplate, error) {
	return f.tpl, nil
}

type fakePredictionSink struct {
	saved *models.PredictionRecord
}

func (f *fakePredictionSink) Put(rec *models.PredictionRecord) error {
	f.saved = rec
	return nil
}

type fakeToucher struct {
	touched []string
	err     error
}

func (f *fakeToucher) TouchLastInvoke(id string) error {
	f.touched = append(f.touched, id)
	return f.err
}

type fakeSeriesSource struct {
	csv []byte
}

func (f *fakeSeriesSource) GetSeriesCSV(ctx context.Context, ticker string) ([]byte, error) {
	return f.csv, nil
}

type fakeInvoker struct {
	payload  []byte
	response []byte
	err      error
}

func (f *fakeInvoker) InvokeEndpoint(ctx context.Context, endpointName string, payload []byte) ([]byte, error) {
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func seriesCSV(start string, n int) []byte {
	day, _ := time.Parse(dateLayout, start)
	var sb strings.Builder
	sb.WriteString("date,value\n")
	for i := 0; i < n; i++ {
		sb.WriteString(fmt.Sprintf("%s,%d\n", day.AddDate(0, 0, i).Format(dateLayout), i))
	}
	return []byte(sb.String())
}

func deepARResponse(quantiles []string, length int) []byte {
	pred := map[string]interface{}{
		"mean":      make([]float64, length),
		"quantiles": map[string][]float64{},
	}
	byQ := pred["quantiles"].(map[string][]float64)
	for _, q := range quantiles {
		byQ[q] = make([]float64, length)
	}
	body, _ := json.Marshal(map[string]interface{}{"predictions": []interface{}{pred}})
	return body
}

func invokeFixture() (*Orchestrator, *fakeExecutionSource, *fakePredictionSink, *fakeToucher, *fakeInvoker) {
	endTraining, _ := time.Parse(dateLayout, "2021-01-10")
	startDataset, _ := time.Parse(dateLayout, "2021-01-01")

	executions := &fakeExecutionSource{exec: &models.TrainingExecution{
		ID:         "exec-1",
		TemplateID: "tpl-1",
		ModelInfo:  &models.ModelInfo{Name: "model-1"},
		EndpointInfo: &models.EndpointInfo{
			Name:   "endpoint-exec-1",
			Arn:    "arn:endpoint/exec-1",
			Status: models.EndpointStatusInService,
		},
	}}
	templates := &fakeTemplateSource{tpl: &models.TrainingTemplate{
		ID:             "tpl-1",
		PredictedAsset: "DJIA",
		DeepARMeta: models.DeepARMeta{
			StartDataset:     startDataset,
			EndTraining:      endTraining,
			ContextLength:    3,
			PredictionLength: 7,
		},
	}}
	predictions := &fakePredictionSink{}
	toucher := &fakeToucher{}
	series := &fakeSeriesSource{csv: seriesCSV("2021-01-01", 20)}
	invoker := &fakeInvoker{response: deepARResponse([]string{"0.1", "0.5", "0.9"}, 10)}

	o := NewOrchestrator(executions, templates, predictions, toucher, series, invoker)
	return o, executions, predictions, toucher, invoker
}

func TestInvokeTruncatesAndAnchorsPrediction(t *testing.T) {
	o, _, predictions, toucher, _ := invokeFixture()

	rec, err := o.Invoke(context.Background(), "exec-1", []float64{0.1, 0.5, 0.9}, 100)
	require.NoError(t, err)

	// response length 10 truncated to predictionLength 7
	require.Len(t, rec.Prediction["mean"], 7)
	require.Len(t, rec.Prediction["0.5"], 7)

	// anchored at trainingEnd + 1 day
	assert.Equal(t, "2021-01-11", rec.Prediction["mean"][0].Date)
	assert.Equal(t, "2021-01-17", rec.Prediction["mean"][6].Date)

	// persisted and keyed by execution id
	require.NotNil(t, predictions.saved)
	assert.Equal(t, "exec-1", predictions.saved.ID)

	// idle timer refreshed
	assert.Equal(t, []string{"exec-1"}, toucher.touched)
}

func TestInvokeBuildsDeepARRequest(t *testing.T) {
	o, _, _, _, invoker := invokeFixture()

	_, err := o.Invoke(context.Background(), "exec-1", []float64{0.1, 0.9}, 50)
	require.NoError(t, err)

	var req inferenceRequest
	require.NoError(t, json.Unmarshal(invoker.payload, &req))
	require.Len(t, req.Instances, 1)

	// target history covers 2021-01-01 .. 2021-01-10
	assert.Equal(t, "2021-01-01", req.Instances[0].Start)
	assert.Len(t, req.Instances[0].Target, 10)
	assert.Equal(t, 50, req.Configuration.NumSamples)
	assert.Equal(t, []string{"quantiles", "mean"}, req.Configuration.OutputTypes)
	assert.Equal(t, []string{"0.1", "0.9"}, req.Configuration.Quantiles)
}

func TestInvokeEndpointNotReady(t *testing.T) {
	o, executions, _, _, _ := invokeFixture()
	executions.exec.EndpointInfo.Status = models.EndpointStatusCreating

	_, err := o.Invoke(context.Background(), "exec-1", []float64{0.5}, 100)
	assert.ErrorIs(t, err, ErrEndpointNotReady)

	executions.exec.EndpointInfo = nil
	_, err = o.Invoke(context.Background(), "exec-1", []float64{0.5}, 100)
	assert.ErrorIs(t, err, ErrEndpointNotReady)
}

func TestInvokeUpstreamFailure(t *testing.T) {
	o, _, predictions, toucher, invoker := invokeFixture()
	invoker.err = errors.New("model server exploded")

	_, err := o.Invoke(context.Background(), "exec-1", []float64{0.5}, 100)
	assert.ErrorIs(t, err, ErrUpstreamInvocation)
	assert.Nil(t, predictions.saved)
	assert.Empty(t, toucher.touched)
}

func TestInvokeTouchFailureDoesNotFailRequest(t *testing.T) {
	o, _, _, toucher, _ := invokeFixture()
	toucher.err = errors.New("maintenance record gone")

	rec, err := o.Invoke(context.Background(), "exec-1", []float64{0.5}, 100)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
