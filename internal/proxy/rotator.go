package proxy

import "sync"

// Rotator hands out endpoints in round-robin order. The list is never mutated;
// the cursor is the only shared state.
type Rotator struct {
	mu        sync.Mutex
	endpoints []Endpoint
	next      int
}

func NewRotator(endpoints []Endpoint) *Rotator {
	return &Rotator{endpoints: append([]Endpoint(nil), endpoints...)}
}

// Next returns false only when the rotator was built with no endpoints.
func (r *Rotator) Next() (Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.endpoints) == 0 {
		return Endpoint{}, false
	}
	ep := r.endpoints[r.next]
	r.next = (r.next + 1) % len(r.endpoints)
	return ep, true
}

func (r *Rotator) Len() int {
	return len(r.endpoints)
}
