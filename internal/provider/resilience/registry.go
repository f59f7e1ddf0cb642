package resilience

import (
	"sync"

	"github.com/sony/gobreaker/v2"
)

// ProviderHealth is a snapshot of one provider's circuit state, reported by
// the health endpoint.
type ProviderHealth struct {
	// Name is the provider identifier.
	Name string `json:"name"`

	// CircuitState is the current circuit breaker state.
	CircuitState string `json:"circuit_state"`

	// Requests and Failures are the breaker's counts for the current window.
	Requests uint32 `json:"requests"`
	Failures uint32 `json:"failures"`

	// Healthy is true while the breaker is closed.
	Healthy bool `json:"healthy"`
}

// Registry tracks the resilient clients behind each external provider.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

// Register adds a provider client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

// Health returns the health status of a specific provider, or nil when the
// provider is not registered.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[name]
	if !ok {
		return nil
	}
	return snapshot(name, client)
}

// AllHealth returns the health status of all registered providers.
func (r *Registry) AllHealth() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*ProviderHealth, 0, len(r.clients))
	for name, client := range r.clients {
		health = append(health, snapshot(name, client))
	}
	return health
}

func snapshot(name string, client *Client) *ProviderHealth {
	state := client.CircuitBreakerState()
	counts := client.CircuitBreakerCounts()
	return &ProviderHealth{
		Name:         name,
		CircuitState: state.String(),
		Requests:     counts.Requests,
		Failures:     counts.TotalFailures,
		Healthy:      state == gobreaker.StateClosed,
	}
}
