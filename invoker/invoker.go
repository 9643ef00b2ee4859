package invoker

import (
	"context"
)

// Message is one turn of a conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one logical language model call. It is treated as
// immutable for the duration of the call.
type Request struct {
	// Input is the prompt payload: a string for completions, a string
	// list for embeddings.
	Input any
	// Name is an optional tag distinguishing calls that share an
	// operation, e.g. different prompt templates. It is folded into the
	// cache key.
	Name string
	// History is the prior conversation, oldest first.
	History []Message
	// Parameters are model parameters (temperature, max_tokens, n, ...).
	Parameters map[string]any
	// Variables are substituted into prompt templates by the delegate.
	Variables map[string]string
	// JSONMode asks the delegate for a JSON response.
	JSONMode bool
}

// Response is the output envelope returned by a delegate.
type Response struct {
	// Output is the raw result: a string for completions, embedding
	// vectors for embeddings.
	Output any
	// JSON is the parsed object when JSONMode was requested.
	JSON map[string]any
	// History is the conversation including the new exchange. Cache hits
	// return a nil History; see CachingInvoker.
	History []Message
}

// Invoker is a single stage of the invocation pipeline. Implementations wrap
// a delegate Invoker or terminate the chain at a provider SDK.
type Invoker interface {
	Invoke(ctx context.Context, req *Request) (*Response, error)
}

// InvokerFunc adapts a function to the Invoker interface
type InvokerFunc func(ctx context.Context, req *Request) (*Response, error)

// Invoke calls f
func (f InvokerFunc) Invoke(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
