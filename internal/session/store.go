// Package session remembers each visitor's last search so that the
// not-found page can hand the original text to the AI fallback.
//
// Entries are keyed by an opaque uuid token carried in a cookie and expire
// after a fixed TTL. The store is bounded; the least recently used entry is
// dropped when it is full.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// maxSearchLen bounds what is stored per session.
const maxSearchLen = 1024

// Store maps session tokens to the last search text. Safe for concurrent use.
type Store struct {
	lru     *expirable.LRU[string, string]
	metrics *Metrics
}

// NewStore creates a store holding at most maxEntries sessions for ttl each.
// metrics may be nil.
func NewStore(ttl time.Duration, maxEntries int, metrics *Metrics) *Store {
	s := &Store{metrics: metrics}
	var onEvict expirable.EvictCallback[string, string]
	if metrics != nil {
		onEvict = func(string, string) { metrics.EvictionsTotal.Inc() }
	}
	s.lru = expirable.NewLRU[string, string](maxEntries, onEvict, ttl)
	return s
}

// Save records search for token and returns the token to hand back to the
// client. A missing or malformed token is replaced by a fresh one.
func (s *Store) Save(token, search string) string {
	if _, err := uuid.Parse(token); err != nil {
		token = uuid.NewString()
	}
	if len(search) > maxSearchLen {
		search = strings.ToValidUTF8(search[:maxSearchLen], "")
	}
	s.lru.Add(token, search)
	s.observeSize()
	return token
}

// LastSearch returns the search stored for token.
func (s *Store) LastSearch(token string) (string, bool) {
	if token == "" {
		s.miss()
		return "", false
	}
	search, ok := s.lru.Get(token)
	if !ok {
		s.miss()
		return "", false
	}
	if s.metrics != nil {
		s.metrics.HitsTotal.Inc()
	}
	return search, true
}

// Forget drops token's entry.
func (s *Store) Forget(token string) {
	s.lru.Remove(token)
	s.observeSize()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.lru.Len()
}

func (s *Store) miss() {
	if s.metrics != nil {
		s.metrics.MissesTotal.Inc()
	}
}

func (s *Store) observeSize() {
	if s.metrics != nil {
		s.metrics.Size.Set(float64(s.lru.Len()))
	}
}
