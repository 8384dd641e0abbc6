package lifecycle

import "errors"

var (
	// ErrConflict means a lifecycle precondition was violated, e.g. creating
	// an endpoint without a trained model or over an existing one
	ErrConflict = errors.New("endpoint lifecycle precondition violated")

	// ErrPartialDeletion means one of the deletion steps failed and the
	// remaining steps were aborted; retrying the same delete is safe
	ErrPartialDeletion = errors.New("endpoint deletion partially failed")
)
