package scheduler

// Registry records which tasks have already alerted during one engine
// activation. It is not safe for concurrent use; the engine guards it.
type Registry struct {
	ids map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]struct{})}
}

// Has reports whether id has alerted.
func (r *Registry) Has(id string) bool {
	_, ok := r.ids[id]
	return ok
}

// Add records id. It returns false if id was already present.
func (r *Registry) Add(id string) bool {
	if r.Has(id) {
		return false
	}
	r.ids[id] = struct{}{}
	return true
}

// Len returns the number of recorded tasks.
func (r *Registry) Len() int {
	return len(r.ids)
}

// Reset forgets every recorded task.
func (r *Registry) Reset() {
	clear(r.ids)
}
