package invoker

import "fmt"

// RetriesExhaustedError is raised when the retry loop gives up. It is
// distinct from the last underlying transient error so callers can tell
// "gave up under the retry ceiling" from "hit a hard error".
type RetriesExhaustedError struct {
	// Name identifies the call: the request's name tag, or the stage's
	// operation when the request is untagged.
	Name string
	// NumRetries is the attempt bound that was exhausted.
	NumRetries int

	cause error
}

// Error implements the error interface
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("operation %q failed: %d retries exhausted", e.Name, e.NumRetries)
}

// Unwrap exposes the final transient error for inspection
func (e *RetriesExhaustedError) Unwrap() error {
	return e.cause
}
