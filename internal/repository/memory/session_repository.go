package memory

import (
	"sync"
	"time"

	"mediskill/internal/models"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the in-process registry of live sessions. Idle
// sessions expire after the TTL; their durable history survives in Postgres
// and is re-warmed on the next contact.
type SessionRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// GetOrCreate returns the live session for id, creating it with the given
// mode on first contact. The bool reports whether the session was created.
// Creation is serialized so concurrent first requests share one session
// object (and therefore one turn lock).
func (r *SessionRepository) GetOrCreate(id string, mode models.Mode) (*models.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(id); found {
		s := x.(*models.Session)
		r.cache.Set(id, s, cache.DefaultExpiration)
		return s, false
	}

	s := models.NewSession(id, mode)
	r.cache.Set(id, s, cache.DefaultExpiration)
	return s, true
}

func (r *SessionRepository) Get(id string) (*models.Session, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*models.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(id string) {
	r.cache.Delete(id)
}
