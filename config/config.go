package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left unset. An explicit zero means
// "disabled" for the rate budgets, so unset and zero must stay
// distinguishable; that is what the pointer fields are for.
const (
	DefaultTokensPerMinute    = 50_000
	DefaultRequestsPerMinute  = 10_000
	DefaultMaxRetries         = 10
	DefaultMaxRetryWait       = 10 * time.Second
	DefaultConcurrentRequests = 25
)

// ModelConfig holds the invocation settings for one language model.
type ModelConfig struct {
	// Model is the model identifier sent to the provider, e.g. "gpt-4o".
	Model string `yaml:"model"`
	// EncodingModel overrides the tokenizer encoding; when empty the
	// encoding is resolved from Model.
	EncodingModel string `yaml:"encoding_model"`

	// TokensPerMinute is the token budget. Unset means the default;
	// an explicit 0 disables token limiting.
	TokensPerMinute *int `yaml:"tokens_per_minute"`
	// RequestsPerMinute is the request budget. Unset means the default;
	// an explicit 0 disables request limiting.
	RequestsPerMinute *int `yaml:"requests_per_minute"`

	// MaxRetries bounds the number of attempts per call.
	MaxRetries *int `yaml:"max_retries"`
	// MaxRetryWaitSeconds caps the exponential backoff between attempts.
	MaxRetryWaitSeconds *float64 `yaml:"max_retry_wait"`
	// SleepOnRateLimitRecommendation honors provider-recommended sleep
	// durations carried by rate-limit errors.
	SleepOnRateLimitRecommendation *bool `yaml:"sleep_on_rate_limit_recommendation"`
	// ConcurrentRequests bounds in-flight calls; 0 disables the bound.
	ConcurrentRequests *int `yaml:"concurrent_requests"`
}

// Load reads a ModelConfig from a YAML file.
func Load(path string) (*ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a ModelConfig from YAML bytes and validates it.
func Parse(data []byte) (*ModelConfig, error) {
	var cfg ModelConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that could not be enforced.
func (c *ModelConfig) Validate() error {
	if c.TokensPerMinute != nil && *c.TokensPerMinute < 0 {
		return fmt.Errorf("tokens_per_minute must not be negative, got %d", *c.TokensPerMinute)
	}
	if c.RequestsPerMinute != nil && *c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative, got %d", *c.RequestsPerMinute)
	}
	if c.MaxRetries != nil && *c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", *c.MaxRetries)
	}
	if c.MaxRetryWaitSeconds != nil && *c.MaxRetryWaitSeconds < 0 {
		return fmt.Errorf("max_retry_wait must not be negative, got %v", *c.MaxRetryWaitSeconds)
	}
	if c.ConcurrentRequests != nil && *c.ConcurrentRequests < 0 {
		return fmt.Errorf("concurrent_requests must not be negative, got %d", *c.ConcurrentRequests)
	}
	return nil
}

// ResolvedTokensPerMinute returns the effective token budget, 0 meaning disabled.
func (c *ModelConfig) ResolvedTokensPerMinute() int {
	if c.TokensPerMinute == nil {
		return DefaultTokensPerMinute
	}
	return *c.TokensPerMinute
}

// ResolvedRequestsPerMinute returns the effective request budget, 0 meaning disabled.
func (c *ModelConfig) ResolvedRequestsPerMinute() int {
	if c.RequestsPerMinute == nil {
		return DefaultRequestsPerMinute
	}
	return *c.RequestsPerMinute
}

// ResolvedMaxRetries returns the effective attempt bound.
func (c *ModelConfig) ResolvedMaxRetries() int {
	if c.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *c.MaxRetries
}

// ResolvedMaxRetryWait returns the effective backoff cap.
func (c *ModelConfig) ResolvedMaxRetryWait() time.Duration {
	if c.MaxRetryWaitSeconds == nil {
		return DefaultMaxRetryWait
	}
	return time.Duration(*c.MaxRetryWaitSeconds * float64(time.Second))
}

// ResolvedSleepOnRateLimitRecommendation defaults to true.
func (c *ModelConfig) ResolvedSleepOnRateLimitRecommendation() bool {
	if c.SleepOnRateLimitRecommendation == nil {
		return true
	}
	return *c.SleepOnRateLimitRecommendation
}

// ResolvedConcurrentRequests returns the effective concurrency bound, 0 meaning unbounded.
func (c *ModelConfig) ResolvedConcurrentRequests() int {
	if c.ConcurrentRequests == nil {
		return DefaultConcurrentRequests
	}
	return *c.ConcurrentRequests
}

// EncodingName returns the model name to resolve the tokenizer from.
func (c *ModelConfig) EncodingName() string {
	if c.EncodingModel != "" {
		return c.EncodingModel
	}
	return c.Model
}
