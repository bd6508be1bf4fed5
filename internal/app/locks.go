package app

import "sync"

// DefinitionLocks serializes writers per definition path. Cross-definition
// operations never need atomicity with each other, so this is the whole
// concurrency story for the graph's writers.
type DefinitionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDefinitionLocks creates an empty lock set.
func NewDefinitionLocks() *DefinitionLocks {
	return &DefinitionLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a definition path and returns its unlock func.
func (l *DefinitionLocks) Lock(path string) func() {
	l.mu.Lock()
	m, ok := l.locks[path]
	if !ok {
		m = &sync.Mutex{}
		l.locks[path] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
