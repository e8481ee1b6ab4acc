package assistant

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hrygo/schedula/internal/clock"
)

const (
	// DefaultSessionKey is used when the client sends no session id.
	DefaultSessionKey = "default"
	// DefaultSessionTTL is the idle lifetime of conversation state.
	DefaultSessionTTL = 30 * time.Minute
	// DefaultSweepInterval is the interval between expiry sweeps.
	DefaultSweepInterval = 5 * time.Minute
)

// SessionState is the conversation carry-over for one session key: the last
// classified intent and the partially collected booking fields, so a bare
// confirmation ("yes, book it") can complete the previous turn's request.
type SessionState struct {
	LastIntent    Intent
	Date          *time.Time
	Time          *ClockTime
	EndTime       *ClockTime
	DurationHours int
	Category      string
	UpdatedAt     time.Time
}

// SessionManager keeps per-key conversation state with idle expiry. Keys from
// distinct clients never observe each other's partial bookings.
type SessionManager struct {
	ttl   time.Duration
	sweep time.Duration
	clock clock.Clock

	mu       sync.Mutex
	sessions map[string]*SessionState
	running  bool
	stopChan chan struct{}
}

// NewSessionManager creates a manager with the given idle TTL. Non-positive
// values fall back to the defaults.
func NewSessionManager(ttl time.Duration, clk clock.Clock) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		ttl:      ttl,
		sweep:    DefaultSweepInterval,
		clock:    clk,
		sessions: make(map[string]*SessionState),
	}
}

// Remember stores the extraction's booking fields under the session key,
// refreshing its expiry.
func (m *SessionManager) Remember(key string, ex *Extraction) {
	if key == "" {
		key = DefaultSessionKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = &SessionState{
		LastIntent:    ex.Intent,
		Date:          ex.Date,
		Time:          ex.Time,
		EndTime:       ex.EndTime,
		DurationHours: ex.DurationHours,
		Category:      ex.Category,
		UpdatedAt:     m.clock.Now(),
	}
}

// Merge fills the extraction's empty fields from the stored state of the
// session, then drops the state. Used on confirmation turns so "yes, book it"
// inherits the date, time and category collected earlier. Expired or missing
// state leaves the extraction untouched.
func (m *SessionManager) Merge(key string, ex *Extraction) {
	if key == "" {
		key = DefaultSessionKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.sessions[key]
	if !ok || m.clock.Now().Sub(state.UpdatedAt) > m.ttl {
		return
	}

	if ex.Date == nil {
		ex.Date = state.Date
	}
	if ex.Time == nil {
		ex.Time = state.Time
	}
	if ex.EndTime == nil {
		ex.EndTime = state.EndTime
	}
	if ex.DurationHours == 0 {
		ex.DurationHours = state.DurationHours
	}
	if ex.Category == "" {
		ex.Category = state.Category
	}
	delete(m.sessions, key)
}

// Forget removes the state of a session key.
func (m *SessionManager) Forget(key string) {
	if key == "" {
		key = DefaultSessionKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Start begins the periodic expiry sweep. Non-blocking; a second call while
// running is a no-op.
func (m *SessionManager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})

	go m.run(ctx)

	slog.Info("session sweep started", "ttl", m.ttl, "interval", m.sweep)
}

// Stop halts the expiry sweep.
func (m *SessionManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	close(m.stopChan)
	m.running = false
}

func (m *SessionManager) run(ctx context.Context) {
	ticker := time.NewTicker(m.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			return
		case <-ticker.C:
			if removed := m.evictExpired(); removed > 0 {
				slog.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

func (m *SessionManager) evictExpired() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, state := range m.sessions {
		if now.Sub(state.UpdatedAt) > m.ttl {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}
