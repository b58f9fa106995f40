package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProjectLocker_SerializesSameProject(t *testing.T) {
	locker := NewProjectLocker()
	projectID := uuid.New()

	const goroutines = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(projectID)
			defer unlock()
			// Unsynchronized read-modify-write; only the project lock keeps
			// this from racing.
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestProjectLocker_IndependentProjects(t *testing.T) {
	locker := NewProjectLocker()
	first := uuid.New()
	second := uuid.New()

	unlockFirst := locker.Lock(first)
	defer unlockFirst()

	// A second project must not wait on the first project's lock. Acquiring
	// it on the same goroutine would deadlock if the locks were shared.
	unlockSecond := locker.Lock(second)
	unlockSecond()
}

func TestProjectLocker_Reentry(t *testing.T) {
	locker := NewProjectLocker()
	projectID := uuid.New()

	unlock := locker.Lock(projectID)
	unlock()

	// The same project can be locked again after release.
	unlock = locker.Lock(projectID)
	unlock()
}
