package loading

import (
	"sync"
	"time"

	"storyadmin/internal/metrics"
)

// Flag describes one in-flight operation shown by the blocking overlay.
type Flag struct {
	Active    bool      `json:"active"`
	Message   string    `json:"message"`
	StartedAt time.Time `json:"started_at"`
}

// Registry tracks keyed loading flags. Each key is owned by a single
// operation at a time; Begin must always be paired with the returned done
// func, usually via defer, so a flag never outlives its operation.
type Registry struct {
	mu    sync.Mutex
	flags map[string]Flag
}

func NewRegistry() *Registry {
	return &Registry{
		flags: make(map[string]Flag),
	}
}

// Begin activates the flag for key and returns the terminal done func.
func (r *Registry) Begin(key, message string) func() {
	r.mu.Lock()
	r.flags[key] = Flag{
		Active:    true,
		Message:   message,
		StartedAt: time.Now(),
	}
	r.mu.Unlock()

	metrics.OpsInFlight.Inc()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.flags, key)
			r.mu.Unlock()

			metrics.OpsInFlight.Dec()
		})
	}
}

// Active reports whether the flag for key is currently set.
func (r *Registry) Active(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.flags[key].Active
}

// Snapshot returns a copy of the active flags for the overlay endpoint.
func (r *Registry) Snapshot() map[string]Flag {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]Flag, len(r.flags))
	for k, v := range r.flags {
		out[k] = v
	}

	return out
}
