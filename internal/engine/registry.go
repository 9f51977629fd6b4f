package engine

// Registry holds the set of available algorithms keyed by identifier.
// It is built once during startup and never mutated afterwards, so
// concurrent lookups need no synchronization.
type Registry struct {
	byID  map[string]Algorithm
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]Algorithm)}
}

// Register adds an algorithm under its metadata identifier. Registering
// two algorithms with the same identifier is a programming error and
// fails; registration happens only at process initialization.
func (r *Registry) Register(alg Algorithm) error {
	id := alg.Metadata().ID
	if id == "" {
		return NewInternalError("algorithm has empty identifier").WithComponent("registry")
	}
	if _, exists := r.byID[id]; exists {
		return NewInternalError("algorithm %q already registered", id).WithComponent("registry")
	}
	r.byID[id] = alg
	r.order = append(r.order, id)
	return nil
}

// Lookup returns the algorithm registered under id, or a not-found
// error when no such algorithm exists.
func (r *Registry) Lookup(id string) (Algorithm, error) {
	alg, ok := r.byID[id]
	if !ok {
		return nil, NewNotFoundError("unknown algorithm %q", id).WithComponent("registry")
	}
	return alg, nil
}

// ListMetadata returns every registered algorithm's metadata in
// registration order.
func (r *Registry) ListMetadata() []Metadata {
	out := make([]Metadata, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Metadata())
	}
	return out
}
