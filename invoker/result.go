package invoker

import "time"

// InvocationResult is the metrics record for one completed top-level call,
// passed to the OnInvoke callback and then discarded.
type InvocationResult struct {
	// ID uniquely identifies this invocation.
	ID string
	// Operation is the stage's operation name, e.g. "chat".
	Operation string
	// Name is the request's name tag, empty when untagged.
	Name string
	// NumRetries is the number of re-attempts consumed (attempts - 1).
	NumRetries int
	// TotalTime spans from the first attempt's start to completion,
	// including backoff sleeps.
	TotalTime time.Duration
	// CallTimes holds each attempt's wall-clock duration, failed
	// attempts included.
	CallTimes []time.Duration
	// InputTokens is the measured request token count, -1 when no
	// counter was configured.
	InputTokens int
	// OutputTokens is the measured response token count, -1 when no
	// counter was configured.
	OutputTokens int
}
