// Package task tracks cancellable in-flight operations keyed by an owner,
// such as the form an autofill request belongs to.
package task

import (
	"context"
	"sync"
)

type entry struct {
	seq    uint64
	cancel context.CancelFunc
}

// Registry holds at most one live task per key. Starting a task for a key
// cancels the one already running under it.
type Registry struct {
	mu    sync.Mutex
	seq   uint64
	tasks map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]entry)}
}

// Start registers a task under key and returns its context. done must be
// called when the task finishes; it releases the context and forgets the
// task unless a newer one has replaced it.
func (r *Registry) Start(parent context.Context, key string) (ctx context.Context, done func()) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	r.seq++
	seq := r.seq
	if prev, ok := r.tasks[key]; ok {
		prev.cancel()
	}
	r.tasks[key] = entry{seq: seq, cancel: cancel}
	r.mu.Unlock()

	return ctx, func() {
		r.mu.Lock()
		if cur, ok := r.tasks[key]; ok && cur.seq == seq {
			delete(r.tasks, key)
		}
		r.mu.Unlock()
		cancel()
	}
}

// Cancel stops the task running under key and reports whether there was one.
func (r *Registry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[key]
	if !ok {
		return false
	}
	e.cancel()
	delete(r.tasks, key)
	return true
}

// CancelAll stops every running task.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, e := range r.tasks {
		e.cancel()
		delete(r.tasks, key)
	}
}

// Len returns the number of running tasks.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}
