package tokens

import (
	"errors"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

var (
	// ErrUnmeasurableInput is returned when a request payload has no
	// recognizable text content to count.
	ErrUnmeasurableInput = errors.New("cannot measure input tokens")
	// ErrUnmeasurableOutput is returned when a response payload has no
	// recognizable shape for token counting.
	ErrUnmeasurableOutput = errors.New("cannot measure output tokens")
)

// Counter maps text to token counts using a model-specific tiktoken encoding.
// Counts are deterministic for a given encoding, which matters because they
// feed the rate limiter's budget accounting.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter resolves the tokenizer encoding for the given model name.
// An unknown model is an error rather than a silent fallback: miscounted
// tokens would corrupt rate-limit accounting.
func NewCounter(model string) (*Counter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("resolve encoding for model %q: %w", model, err)
	}
	return &Counter{encoding: encoding}, nil
}

// NewCounterForEncoding creates a Counter from an explicit encoding name,
// e.g. "cl100k_base".
func NewCounterForEncoding(name string) (*Counter, error) {
	encoding, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("get encoding %q: %w", name, err)
	}
	return &Counter{encoding: encoding}, nil
}

// Count returns the number of tokens in text. Empty text counts as zero.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}

// CountInput measures the token count of a request payload. Supported shapes:
// a single string, a list of strings, or a list of role/content messages
// (maps with a "content" field). Anything else is ErrUnmeasurableInput.
func (c *Counter) CountInput(input any) (int, error) {
	switch v := input.(type) {
	case string:
		return c.Count(v), nil
	case []string:
		total := 0
		for _, s := range v {
			total += c.Count(s)
		}
		return total, nil
	case []map[string]string:
		total := 0
		for _, m := range v {
			total += c.Count(m["content"])
		}
		return total, nil
	case []map[string]any:
		total := 0
		for _, m := range v {
			content, ok := m["content"].(string)
			if !ok {
				return 0, fmt.Errorf("%w: message has no text content", ErrUnmeasurableInput)
			}
			total += c.Count(content)
		}
		return total, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrUnmeasurableInput, input)
	}
}

// CountOutput measures the token count of a response payload. A nil output
// counts as zero. A list that is not all strings (an embedding vector, for
// example) also counts as zero: embeddings do not consume completion budget.
func (c *Counter) CountOutput(output any) (int, error) {
	switch v := output.(type) {
	case nil:
		return 0, nil
	case string:
		return c.Count(v), nil
	case []string:
		total := 0
		for _, s := range v {
			total += c.Count(s)
		}
		return total, nil
	case []any:
		total := 0
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return 0, nil
			}
			total += c.Count(s)
		}
		return total, nil
	case []float32, []float64, [][]float32, [][]float64:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrUnmeasurableOutput, output)
	}
}
