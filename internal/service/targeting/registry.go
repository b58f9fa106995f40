package targeting

import (
	"sync"

	"github.com/google/uuid"
)

// roundRegistry holds the active round per project. Rounds are in-memory
// only: a process restart abandons them, which costs the learner one
// regeneration and loses no recorded progress.
type roundRegistry struct {
	mu     sync.RWMutex
	rounds map[uuid.UUID]*Round
}

func newRoundRegistry() *roundRegistry {
	return &roundRegistry{
		rounds: make(map[uuid.UUID]*Round),
	}
}

// put registers a ready round, replacing any round the project already had.
func (r *roundRegistry) put(round *Round) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds[round.ProjectID] = round
}

// get returns the project's active round, if any.
func (r *roundRegistry) get(projectID uuid.UUID) (*Round, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	round, ok := r.rounds[projectID]
	return round, ok
}

// remove forgets the project's active round if it is still the given one. A
// round that replaced it while grading was in flight stays registered.
func (r *roundRegistry) remove(projectID, roundID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if round, ok := r.rounds[projectID]; ok && round.ID == roundID {
		delete(r.rounds, projectID)
	}
}
