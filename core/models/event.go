package models

import (
	"encoding/json"
	"time"
)

// Engine event detail types, as delivered on the event bus
const (
	EventExecutionStatusChange = "SageMaker Model Building Pipeline Execution Status Change"
	EventStepStatusChange      = "SageMaker Model Building Pipeline Execution Step Status Change"
	EventModelStateChange      = "SageMaker Model State Change"
	EventEndpointStateChange   = "SageMaker Endpoint State Change"
)

// EngineEvent is the envelope the external engine emits on the event bus
type EngineEvent struct {
	DetailType string          `json:"detail-type"`
	Source     string          `json:"source"`
	Time       time.Time       `json:"time"`
	Detail     json.RawMessage `json:"detail"`
}

// ExecutionStatusChangeDetail is the payload of a pipeline-level status event
type ExecutionStatusChangeDetail struct {
	PipelineExecutionArn            string     `json:"pipelineExecutionArn"`
	PreviousPipelineExecutionStatus string     `json:"previousPipelineExecutionStatus"`
	CurrentPipelineExecutionStatus  string     `json:"currentPipelineExecutionStatus"`
	ExecutionStartTime              time.Time  `json:"executionStartTime"`
	ExecutionEndTime                *time.Time `json:"executionEndTime,omitempty"`
}

// StepStatusChangeDetail is the payload of a step-level status event
type StepStatusChangeDetail struct {
	PipelineExecutionArn string     `json:"pipelineExecutionArn"`
	StepType             string     `json:"stepType"`
	PreviousStepStatus   string     `json:"previousStepStatus"`
	CurrentStepStatus    string     `json:"currentStepStatus"`
	StepStartTime        time.Time  `json:"stepStartTime"`
	StepEndTime          *time.Time `json:"stepEndTime,omitempty"`
}

// ModelStateChangeDetail is the payload emitted when the engine registers a
// new model artifact. Tags carry the pipeline execution ARN on a best-effort
// basis; it may lag behind the artifact itself.
type ModelStateChangeDetail struct {
	ModelName        string            `json:"ModelName"`
	ModelArn         string            `json:"ModelArn"`
	PrimaryContainer PrimaryContainer  `json:"PrimaryContainer"`
	Tags             map[string]string `json:"Tags"`
}

// PrimaryContainer locates the model artifact data
type PrimaryContainer struct {
	ModelDataURL string `json:"ModelDataUrl"`
}

// EndpointStateChangeDetail is the payload of an endpoint lifecycle event
type EndpointStateChangeDetail struct {
	EndpointName     string         `json:"EndpointName"`
	EndpointArn      string         `json:"EndpointArn"`
	EndpointStatus   EndpointStatus `json:"EndpointStatus"`
	CreationTime     time.Time      `json:"CreationTime"`
	LastModifiedTime time.Time      `json:"LastModifiedTime"`
}

// PipelineExecutionTagKey is the tag the engine stamps on model artifacts to
// correlate them back to the pipeline execution that produced them
const PipelineExecutionTagKey = "sagemaker:pipeline-execution-arn"
