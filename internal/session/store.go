package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wms/internal/models"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("session: not logged in")

// Store persists the single session of the local driver. Implementations are
// safe for concurrent use; writes are serialised.
type Store interface {
	Load() (models.Session, error)
	Save(s models.Session) error
	// AuthToken returns the stored bearer token or "".
	AuthToken() string
	// Update applies fn to the stored session and saves the result.
	Update(fn func(*models.Session)) error
	// Clear removes every stored value.
	Clear() error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu sync.Mutex
	s  *models.Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return models.Session{}, ErrNoSession
	}
	return *m.s, nil
}

func (m *MemoryStore) Save(s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = &s
	return nil
}

func (m *MemoryStore) AuthToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return ""
	}
	return m.s.Token
}

func (m *MemoryStore) Update(fn func(*models.Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return ErrNoSession
	}
	cp := *m.s
	fn(&cp)
	m.s = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// TokenExpiry reads the exp claim of a bearer token without verifying its
// signature. ok is false when the token is malformed or carries no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

// Expired reports whether token carries an expiry that lies before now.
// Tokens without an expiry never expire.
func Expired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}
