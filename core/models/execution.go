package models

import "time"

// TrainingExecution represents one run of the training pipeline for a template
type TrainingExecution struct {
	ID                   string
	TemplateID           string
	Description          string
	PipelineExecutionArn string // correlation id, set once when the pipeline starts
	TrainingStatus       TrainingStatus
	ExecStatusChanges    []ExecutionStatusChange
	StepStatusChanges    []StepStatusChange
	ModelInfo            *ModelInfo
	EndpointInfo         *EndpointInfo
	Version              int64 // optimistic concurrency stamp, bumped on every write
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TrainingStatus represents the coarse status of the training pipeline run
type TrainingStatus string

const (
	TrainingStatusDraft     TrainingStatus = "DRAFT"
	TrainingStatusStarting  TrainingStatus = "STARTING"
	TrainingStatusExecuting TrainingStatus = "EXECUTING"
	TrainingStatusSucceeded TrainingStatus = "SUCCEEDED"
	TrainingStatusFailed    TrainingStatus = "FAILED"
	TrainingStatusStopped   TrainingStatus = "STOPPED"
)

// ExecutionStatusChange records one pipeline-level status transition
type ExecutionStatusChange struct {
	PreviousStatus string     `json:"previousStatus"`
	CurrentStatus  string     `json:"currentStatus"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
}

// StepStatusChange records one pipeline-step status transition
type StepStatusChange struct {
	StepType       string     `json:"stepType"`
	PreviousStatus string     `json:"previousStatus"`
	CurrentStatus  string     `json:"currentStatus"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
}

// ModelInfo holds the trained model artifact metadata reported by the engine
type ModelInfo struct {
	Name    string `json:"name"`
	Arn     string `json:"arn"`
	DataURL string `json:"dataUrl"`
}

// EndpointInfo mirrors the live inference endpoint of this execution. It is
// cleared wholesale when the endpoint is fully removed.
type EndpointInfo struct {
	Name       string         `json:"endpointName"`
	Arn        string         `json:"endpointArn"`
	ConfigName string         `json:"endpointConfigName"`
	ConfigArn  string         `json:"endpointConfigArn"`
	Status     EndpointStatus `json:"endpointStatus"`
}

// EndpointStatus is the raw status reported by the endpoint runtime
type EndpointStatus string

const (
	EndpointStatusCreating     EndpointStatus = "CREATING"
	EndpointStatusUpdating     EndpointStatus = "UPDATING"
	EndpointStatusInService    EndpointStatus = "IN_SERVICE"
	EndpointStatusOutOfService EndpointStatus = "OUT_OF_SERVICE"
	EndpointStatusDeleting     EndpointStatus = "DELETING"
	EndpointStatusDeleted      EndpointStatus = "DELETED"
	EndpointStatusFailed       EndpointStatus = "FAILED"
)

// Terminal reports whether the status means the endpoint is gone or going away
func (s EndpointStatus) Terminal() bool {
	return s == EndpointStatusDeleting || s == EndpointStatusDeleted
}

// EndpointState is the lifecycle state of an execution's endpoint, derived
// from EndpointInfo instead of scattered nil checks
type EndpointState string

const (
	EndpointStateNone      EndpointState = "none"
	EndpointStateCreating  EndpointState = "creating"
	EndpointStateInService EndpointState = "in_service"
	EndpointStateFailed    EndpointState = "failed"
	EndpointStateDeleting  EndpointState = "deleting"
)

// EndpointState derives the lifecycle state from the mirrored endpoint info
func (e *TrainingExecution) EndpointState() EndpointState {
	if e.EndpointInfo == nil || e.EndpointInfo.Arn == "" {
		return EndpointStateNone
	}
	switch e.EndpointInfo.Status {
	case EndpointStatusInService:
		return EndpointStateInService
	case EndpointStatusFailed:
		return EndpointStateFailed
	case EndpointStatusDeleting, EndpointStatusDeleted:
		return EndpointStateDeleting
	default:
		// CREATING plus the transitional runtime statuses (UPDATING etc.)
		return EndpointStateCreating
	}
}
