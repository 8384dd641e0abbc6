package forecast

import "errors"

var (
	// ErrEmptyTrainingWindow means no series rows fall inside the template's
	// training window
	ErrEmptyTrainingWindow = errors.New("no series data inside the training window")

	// ErrTrainingEndNotFound means the training end date lies outside the
	// series, so no prediction anchor exists
	ErrTrainingEndNotFound = errors.New("training end not found in series")

	// ErrEndpointNotReady means the execution has no in-service endpoint
	ErrEndpointNotReady = errors.New("endpoint not in service")

	// ErrUpstreamInvocation means the inference call itself failed; it is not
	// retried here
	ErrUpstreamInvocation = errors.New("endpoint invocation failed")
)
