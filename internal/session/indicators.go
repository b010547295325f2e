// Package session owns the per-user navigation indicator flags that the
// original kept as untyped keys in browser-local storage. The flags are
// explicit typed state with subscriber callbacks, so the live notification
// watcher and the notifications view mutate one shared source of truth.
package session

import "sync"

// Flags are the typed indicator values used to badge navigation.
type Flags struct {
	HasUnreadNotifications bool `json:"hasUnreadNotifications"`
	HasNewPosts            bool `json:"hasNewPosts"`
}

// Indicators holds one user's flags and their subscribers.
type Indicators struct {
	mu      sync.Mutex
	flags   Flags
	subs    map[int]func(Flags)
	nextSub int
}

// Snapshot returns the current flag values.
func (i *Indicators) Snapshot() Flags {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.flags
}

// SetUnreadNotifications sets the unread-notifications flag and notifies
// subscribers when the value changed.
func (i *Indicators) SetUnreadNotifications(v bool) {
	i.set(func(f *Flags) bool {
		if f.HasUnreadNotifications == v {
			return false
		}
		f.HasUnreadNotifications = v
		return true
	})
}

// SetNewPosts sets the new-posts flag and notifies subscribers when the
// value changed.
func (i *Indicators) SetNewPosts(v bool) {
	i.set(func(f *Flags) bool {
		if f.HasNewPosts == v {
			return false
		}
		f.HasNewPosts = v
		return true
	})
}

func (i *Indicators) set(mutate func(*Flags) bool) {
	i.mu.Lock()
	if !mutate(&i.flags) {
		i.mu.Unlock()
		return
	}
	snapshot := i.flags
	subs := make([]func(Flags), 0, len(i.subs))
	for _, fn := range i.subs {
		subs = append(subs, fn)
	}
	i.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers a callback invoked on every flag change. The returned
// function cancels the subscription.
func (i *Indicators) Subscribe(fn func(Flags)) (cancel func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.subs == nil {
		i.subs = make(map[int]func(Flags))
	}
	id := i.nextSub
	i.nextSub++
	i.subs[id] = fn
	return func() {
		i.mu.Lock()
		defer i.mu.Unlock()
		delete(i.subs, id)
	}
}

// Registry maps user IDs to their indicator state.
type Registry struct {
	mu sync.Mutex
	m  map[string]*Indicators
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]*Indicators)}
}

// For returns the user's indicators, creating them on first use.
func (r *Registry) For(userID string) *Indicators {
	r.mu.Lock()
	defer r.mu.Unlock()
	ind, ok := r.m[userID]
	if !ok {
		ind = &Indicators{}
		r.m[userID] = ind
	}
	return ind
}
