// Package openai provides the terminal pipeline stages for OpenAI-compatible
// APIs: a chat completion delegate, an embedding delegate, the retry
// classifier for the provider's error shapes, and a client registry with an
// explicit lifecycle.
package openai
