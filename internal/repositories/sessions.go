package repositories

import (
	"github.com/maxaizer/worksearch-bot/internal/domain/models"
	"github.com/maxaizer/worksearch-bot/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"strconv"
	"sync"
	"time"
)

// Sessions keeps per-user search state in memory. Every access extends the
// entry's lifetime by ttl; idle sessions are evicted.
type Sessions struct {
	cache *gocache.Cache
	ttl   time.Duration
	mu    sync.Mutex
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sessions := &Sessions{cache: gocache.New(ttl, ttl/2), ttl: ttl}
	sessions.cache.OnEvicted(func(string, interface{}) { sessions.reportCount() })
	return sessions
}

func sessionKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Get returns a copy of the user's session, or an empty one.
func (s *Sessions) Get(userID int64) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID)
}

// Update applies fn to the user's session atomically and stores the result.
func (s *Sessions) Update(userID int64, fn func(session *models.Session) error) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.load(userID)
	if err := fn(&session); err != nil {
		return session, err
	}
	s.cache.Set(sessionKey(userID), session, s.ttl)
	s.reportCount()
	return session, nil
}

func (s *Sessions) Delete(userID int64) {
	s.cache.Delete(sessionKey(userID))
}

func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}

func (s *Sessions) reportCount() {
	metrics.ActiveSessionsGauge.Set(float64(s.cache.ItemCount()))
}

func (s *Sessions) load(userID int64) models.Session {
	key := sessionKey(userID)
	value, found := s.cache.Get(key)
	if !found {
		return models.Session{}
	}
	session := value.(models.Session)
	s.cache.Set(key, session, s.ttl)
	return session.Clone()
}
