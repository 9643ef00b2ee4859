package langchain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/ragforge/llminvoke/invoker"
)

// ModelInvoker adapts a langchaingo llms.Model to the pipeline's Invoker
// interface, so any model langchaingo can talk to (OpenAI, Ollama, Anthropic,
// ...) can terminate the invocation stack.
type ModelInvoker struct {
	model llms.Model
}

var _ invoker.Invoker = (*ModelInvoker)(nil)

// NewModelInvoker wraps model
func NewModelInvoker(model llms.Model) *ModelInvoker {
	return &ModelInvoker{model: model}
}

// Invoke generates one chat completion through the wrapped model
func (m *ModelInvoker) Invoke(ctx context.Context, req *invoker.Request) (*invoker.Response, error) {
	prompt, ok := req.Input.(string)
	if !ok {
		return nil, fmt.Errorf("chat input must be a string, got %T", req.Input)
	}

	messages := make([]llms.MessageContent, 0, len(req.History)+1)
	for _, msg := range req.History {
		messages = append(messages, llms.TextParts(messageType(msg.Role), msg.Content))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	opts := callOptions(req)

	result, err := m.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	content := result.Choices[0].Content

	resp := &invoker.Response{
		Output: content,
		History: append(append([]invoker.Message{}, req.History...),
			invoker.Message{Role: "user", Content: prompt},
			invoker.Message{Role: "assistant", Content: content},
		),
	}
	if req.JSONMode {
		var parsed map[string]any
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return nil, fmt.Errorf("parse JSON response: %w", err)
		}
		resp.JSON = parsed
	}
	return resp, nil
}

func messageType(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant", "ai":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

func callOptions(req *invoker.Request) []llms.CallOption {
	var opts []llms.CallOption
	if v, ok := req.Parameters["temperature"].(float64); ok {
		opts = append(opts, llms.WithTemperature(v))
	}
	if v, ok := intParam(req.Parameters, "max_tokens"); ok {
		opts = append(opts, llms.WithMaxTokens(v))
	}
	if v, ok := intParam(req.Parameters, "n"); ok {
		opts = append(opts, llms.WithN(v))
	}
	if v, ok := req.Parameters["top_p"].(float64); ok {
		opts = append(opts, llms.WithTopP(v))
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}

func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
