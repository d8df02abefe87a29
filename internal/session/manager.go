package session

import (
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/localstore"
	"github.com/google/uuid"
)

// DefaultTTL is how long a saved session stays valid.
const DefaultTTL = 24 * time.Hour

// KV is the device-local store the session is cached in.
// Satisfied by *localstore.Store.
type KV interface {
	Get(key string, v any) (bool, error)
	Put(key string, v any) error
	Delete(key string) error
}

// Cached is the stored session document.
type Cached struct {
	Staff   Staff     `json:"staff"`
	Expires time.Time `json:"expires"`
}

// Manager caches the signed-in staff member on the device.
type Manager struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

func NewManager(kv KV, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{kv: kv, ttl: ttl, now: time.Now}
}

// Save stores staff as the current session and returns its expiry.
func (m *Manager) Save(staff Staff) (Cached, error) {
	c := Cached{Staff: staff, Expires: m.now().Add(m.ttl)}
	if err := m.kv.Put(localstore.KeySession, c); err != nil {
		return Cached{}, err
	}
	return c, nil
}

// Current returns the cached session. Expired or unreadable sessions are
// cleared and reported as ErrNoSession.
func (m *Manager) Current() (Cached, error) {
	var c Cached
	ok, err := m.kv.Get(localstore.KeySession, &c)
	if err != nil || !ok {
		if err != nil {
			_ = m.kv.Delete(localstore.KeySession)
		}
		return Cached{}, ErrNoSession
	}
	if m.now().After(c.Expires) {
		_ = m.kv.Delete(localstore.KeySession)
		return Cached{}, ErrNoSession
	}
	return c, nil
}

// Clear signs the terminal out.
func (m *Manager) Clear() error {
	return m.kv.Delete(localstore.KeySession)
}

// TTL returns the session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// ActiveStaffID reports the staff member of the current unexpired session.
func (m *Manager) ActiveStaffID() (uuid.UUID, bool) {
	c, err := m.Current()
	if err != nil {
		return uuid.Nil, false
	}
	return c.Staff.ID, true
}
