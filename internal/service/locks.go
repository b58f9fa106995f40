package service

import (
	"sync"

	"github.com/google/uuid"
)

// ProjectLocker serializes mutating work on a single project. Syllabus
// generation, grading writes, and progress resets for the same project must
// never interleave; different projects proceed independently.
//
// The zero value is not usable; create instances with NewProjectLocker.
type ProjectLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewProjectLocker creates an empty ProjectLocker.
func NewProjectLocker() *ProjectLocker {
	return &ProjectLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the mutex for the given project, blocking until it is free,
// and returns the function that releases it. Callers defer the returned
// function immediately:
//
//	unlock := locker.Lock(projectID)
//	defer unlock()
//
// Per-project mutexes are never removed from the map. Each entry is a few
// words, the map is bounded by the number of distinct projects this process
// has touched, and keeping entries alive avoids refcounting handed-out
// mutexes.
func (l *ProjectLocker) Lock(projectID uuid.UUID) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[projectID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[projectID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
