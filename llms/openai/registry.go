package openai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// ClientConfig identifies one API client. Two configs with equal fields
// share a client.
type ClientConfig struct {
	APIKey       string
	BaseURL      string
	Organization string
}

func (c ClientConfig) hash() string {
	h := sha256.New()
	h.Write([]byte(c.APIKey))
	h.Write([]byte{0})
	h.Write([]byte(c.BaseURL))
	h.Write([]byte{0})
	h.Write([]byte(c.Organization))
	return hex.EncodeToString(h.Sum(nil))
}

// Registry hands out API clients keyed by configuration, creating each on
// first use. It replaces ad-hoc global memoization with an owned lifecycle:
// construct a Registry where delegates are built, close it at shutdown.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*openai.Client
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*openai.Client)}
}

// Client returns the client for cfg, creating it on first use
func (r *Registry) Client(cfg ClientConfig) *openai.Client {
	key := cfg.hash()

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[key]; ok {
		return client
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		clientCfg.OrgID = cfg.Organization
	}

	client := openai.NewClientWithConfig(clientCfg)
	r.clients[key] = client
	return client
}

// Len returns the number of live clients
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close releases all clients. The Registry is reusable afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = make(map[string]*openai.Client)
}
