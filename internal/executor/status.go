package executor

import (
	"sync"

	"github.com/XertroV/tasks/cmdstack/internal/models"
)

// StatusMap collects per-run outcomes from concurrent workers.
type StatusMap struct {
	mu       sync.Mutex
	statuses map[models.RunID]models.Status
}

func NewStatusMap() *StatusMap {
	return &StatusMap{statuses: map[models.RunID]models.Status{}}
}

func (m *StatusMap) Set(id models.RunID, status models.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = status
}

func (m *StatusMap) Get(id models.RunID) (models.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status, ok := m.statuses[id]
	return status, ok
}

// Snapshot copies the current contents.
func (m *StatusMap) Snapshot() map[models.RunID]models.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.RunID]models.Status, len(m.statuses))
	for id, status := range m.statuses {
		out[id] = status
	}
	return out
}
