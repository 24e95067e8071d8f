// Package session keeps per-browser checklist state in memory, keyed by a
// random cookie. Nothing here is persisted; a restart locks every browser
// again and discards unsubmitted grids.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultCookieName = "checklist_session"

type Options struct {
	CookieName string
	Secure     bool
	// IdleTTL drops sessions not seen for this long. Zero keeps them forever.
	IdleTTL time.Duration
	Logger  *zap.Logger
	Now     func() time.Time
}

type Manager struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{opts: opts, sessions: make(map[string]*Session)}
}

// Load returns the session named by the request cookie, creating a fresh
// one (and setting the cookie) when it is missing or unknown.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	now := m.opts.Now()
	if c, err := r.Cookie(m.opts.CookieName); err == nil {
		if s, ok := m.Get(c.Value); ok {
			s.touch(now)
			return s
		}
	}

	s := newSession(uuid.New().String(), now)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.opts.Logger.Debug("session created", zap.String("session", s.ID))
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes idle sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	if n > 0 {
		m.opts.Logger.Info("idle sessions dropped", zap.Int("count", n))
	}
	return n
}

// Run sweeps every interval until done is closed.
func (m *Manager) Run(done <-chan struct{}, interval time.Duration) {
	if m.opts.IdleTTL <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			m.Sweep()
		}
	}
}
