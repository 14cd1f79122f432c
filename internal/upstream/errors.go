package upstream

import (
	"errors"
	"fmt"
)

// Domain-level upstream error sentinels.
var (
	// ErrNotFound means the upstream answered normally but the resource
	// does not exist. Distinct from a failed call: "the API worked and
	// found nothing".
	ErrNotFound = errors.New("resource not found")

	// ErrTimeout means the per-call deadline elapsed before the upstream
	// replied.
	ErrTimeout = errors.New("upstream call timed out")
)

// StatusError is a non-2xx upstream response. The body is truncated before
// storage so log lines stay readable.
type StatusError struct {
	Resource string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s returned HTTP %d: %s", e.Resource, e.Code, e.Body)
}
