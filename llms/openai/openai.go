package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/ragforge/llminvoke/invoker"
)

// ChatInvoker is the terminal pipeline stage for chat completions against an
// OpenAI-compatible API.
type ChatInvoker struct {
	client *openai.Client
	model  string
}

var _ invoker.Invoker = (*ChatInvoker)(nil)

// NewChatInvoker creates a chat delegate for the given client and model
func NewChatInvoker(client *openai.Client, model string) *ChatInvoker {
	return &ChatInvoker{client: client, model: model}
}

// Invoke sends one chat completion request
func (c *ChatInvoker) Invoke(ctx context.Context, req *invoker.Request) (*invoker.Response, error) {
	prompt, ok := req.Input.(string)
	if !ok {
		return nil, fmt.Errorf("chat input must be a string, got %T", req.Input)
	}
	prompt = expandVariables(prompt, req.Variables)

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	applyParameters(&chatReq, req.Parameters)
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion for model %s returned no choices", c.model)
	}
	content := chatResp.Choices[0].Message.Content

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

// EmbeddingInvoker is the terminal pipeline stage for embeddings.
type EmbeddingInvoker struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

var _ invoker.Invoker = (*EmbeddingInvoker)(nil)

// NewEmbeddingInvoker creates an embedding delegate for the given client and model
func NewEmbeddingInvoker(client *openai.Client, model openai.EmbeddingModel) *EmbeddingInvoker {
	return &EmbeddingInvoker{client: client, model: model}
}

// Invoke embeds the input texts. Output is [][]float32, one vector per text.
func (e *EmbeddingInvoker) Invoke(ctx context.Context, req *invoker.Request) (*invoker.Response, error) {
	var texts []string
	switch v := req.Input.(type) {
	case string:
		texts = []string{v}
	case []string:
		texts = v
	default:
		return nil, fmt.Errorf("embedding input must be a string or string list, got %T", req.Input)
	}

	embResp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(embResp.Data))
	for i, d := range embResp.Data {
		vectors[i] = d.Embedding
	}
	return &invoker.Response{Output: vectors}, nil
}

// applyParameters maps the request's loose parameter map onto the typed
// completion request. Unknown keys are ignored; the cache key already
// accounts for them.
func applyParameters(chatReq *openai.ChatCompletionRequest, params map[string]any) {
	if v, ok := floatParam(params, "temperature"); ok {
		chatReq.Temperature = float32(v)
	}
	if v, ok := floatParam(params, "top_p"); ok {
		chatReq.TopP = float32(v)
	}
	if v, ok := intParam(params, "max_tokens"); ok {
		chatReq.MaxTokens = v
	}
	if v, ok := intParam(params, "n"); ok {
		chatReq.N = v
	}
}

func floatParam(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// expandVariables substitutes $name and ${name} references in the prompt.
func expandVariables(prompt string, variables map[string]string) string {
	if len(variables) == 0 {
		return prompt
	}
	return os.Expand(prompt, func(name string) string {
		if v, ok := variables[name]; ok {
			return v
		}
		// Leave unknown references intact.
		return "$" + name
	})
}
