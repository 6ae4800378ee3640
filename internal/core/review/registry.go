package review

import (
	"slices"
	"sync"
)

// RegistryHooks are notified of session lifecycle events. Hooks run outside
// the registry lock and may call back into the registry.
type RegistryHooks struct {
	// OnCreate runs when Open creates a session for a new key.
	OnCreate func(key string, s *Session)
	// OnLeave runs when an editor context goes away without closing its review.
	OnLeave func(key string)
	// OnClose runs when a session is closed explicitly or discarded.
	OnClose func(key string)
}

// Registry maps editor-context keys to their sessions.
type Registry struct {
	hooks RegistryHooks

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(hooks RegistryHooks) *Registry {
	return &Registry{
		hooks:    hooks,
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for key, creating one when the key is new. A key
// bound to a different pull request, or to a session that has already
// terminated, is torn down and rebound.
func (r *Registry) Open(key string, pr PullRequestRef, opts SessionOptions) *Session {
	r.mu.Lock()
	existing, ok := r.sessions[key]
	if ok && existing.pr.String() == pr.String() && existing.State() != StateTerminated {
		r.mu.Unlock()
		return existing
	}

	s := NewSession(key, pr, opts)
	s.onTerminate = func() { r.remove(key, s) }
	r.sessions[key] = s
	r.mu.Unlock()

	if existing != nil {
		existing.detach()
	}

	if r.hooks.OnCreate != nil {
		r.hooks.OnCreate(key, s)
	}

	return s
}

// Get returns the session bound to key.
func (r *Registry) Get(key string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Keys returns the bound keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.sessions))
	for k := range r.sessions {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Len returns the number of bound sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Leave unbinds key when its editor context goes away. The session is
// detached before Leave returns so no pending operation can mutate it.
func (r *Registry) Leave(key string) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	s.detach()
	if r.hooks.OnLeave != nil {
		r.hooks.OnLeave(key)
	}
}

// LeaveAll unbinds every key.
func (r *Registry) LeaveAll() {
	for _, key := range r.Keys() {
		r.Leave(key)
	}
}

// Close closes the session's view and unbinds key. It reports whether key
// was bound.
func (r *Registry) Close(key string) bool {
	r.mu.Lock()
	s, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	s.Close()
	if r.hooks.OnClose != nil {
		r.hooks.OnClose(key)
	}
	return true
}

// remove unbinds key if it is still bound to s.
func (r *Registry) remove(key string, s *Session) {
	r.mu.Lock()
	current, ok := r.sessions[key]
	if ok && current == s {
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	if ok && current == s && r.hooks.OnClose != nil {
		r.hooks.OnClose(key)
	}
}
