package session

import (
	"time"

	"multimodal-assistant-be/internal/repository/memory"
	"multimodal-assistant-be/pkg/assistant"
	"multimodal-assistant-be/pkg/collaborator"

	"github.com/google/uuid"
)

// Manager handles session lifecycle operations
type Manager struct {
	sessionRepo *memory.SessionRepository
	factories   collaborator.Set
	now         func() time.Time
}

// NewManager creates a new session manager
func NewManager(sessionRepo *memory.SessionRepository, factories collaborator.Set) *Manager {
	return &Manager{
		sessionRepo: sessionRepo,
		factories:   factories,
		now:         time.Now,
	}
}

// Create initialises a workspace under a fresh session id
func (m *Manager) Create() *assistant.Workspace {
	return m.LoadOrCreate(uuid.NewString())
}

// LoadOrCreate retrieves the workspace of sessionID, initialising it exactly
// once when it does not exist yet.
func (m *Manager) LoadOrCreate(sessionID string) *assistant.Workspace {
	if ws, found := m.sessionRepo.Get(sessionID); found {
		m.sessionRepo.Touch(sessionID, ws)
		return ws
	}

	ws := assistant.NewWorkspace(sessionID, m.factories, m.now())
	if m.sessionRepo.Add(sessionID, ws) {
		return ws
	}
	// lost the race against a concurrent initialisation
	if existing, found := m.sessionRepo.Get(sessionID); found {
		return existing
	}
	m.sessionRepo.Touch(sessionID, ws)
	return ws
}

// Find returns an existing workspace without creating one
func (m *Manager) Find(sessionID string) (*assistant.Workspace, bool) {
	return m.sessionRepo.Get(sessionID)
}

// End tears a session down and releases its collaborators
func (m *Manager) End(sessionID string) {
	m.sessionRepo.Delete(sessionID)
}

// CloseAll ends every live session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.sessionRepo.DeleteAll()
}
