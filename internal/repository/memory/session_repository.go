package memory

import (
	"time"

	"multimodal-assistant-be/pkg/assistant"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps one workspace per browser session. Entries expire
// after ttl without access; an expired workspace releases its collaborators.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	// purge expired items every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, v interface{}) {
		if ws, ok := v.(*assistant.Workspace); ok {
			// wait for any in-flight request on this workspace
			go func() {
				ws.Lock()
				defer ws.Unlock()
				_ = ws.Close()
			}()
		}
	})
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

// Add stores ws only if no workspace exists for sessionID yet.
// It returns false when another caller won the race.
func (r *SessionRepository) Add(sessionID string, ws *assistant.Workspace) bool {
	return r.cache.Add(sessionID, ws, cache.DefaultExpiration) == nil
}

// Touch extends the expiry of an existing workspace
func (r *SessionRepository) Touch(sessionID string, ws *assistant.Workspace) {
	r.cache.Set(sessionID, ws, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*assistant.Workspace, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*assistant.Workspace), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// DeleteAll drops every workspace and closes them before returning
func (r *SessionRepository) DeleteAll() {
	items := r.cache.Items()
	r.cache.Flush() // Flush skips OnEvicted
	for _, item := range items {
		if ws, ok := item.Object.(*assistant.Workspace); ok {
			ws.Lock()
			_ = ws.Close()
			ws.Unlock()
		}
	}
}
