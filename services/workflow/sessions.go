package workflow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Federicojaviermartino/logiaccounting-pro-sub001/pkg/designer"
)

// sweepInterval is how often the janitor looks for idle sessions.
const sweepInterval = time.Minute

// Session is one designer editing session bound to a workflow. The mutex
// serializes store access; handlers hold it for the whole operation so
// concurrent requests against the same session apply one at a time.
type Session struct {
	ID         string
	WorkflowID string
	Store      *designer.Store

	mu       sync.Mutex
	lastUsed time.Time
}

// SessionManager owns the in-memory designer sessions and expires ones idle
// longer than the TTL. Sessions are cheap to rebuild from a workflow or a
// checkpoint, so expiry only costs the undo history.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration

	janitor  *time.Ticker
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionManager creates a manager that drops sessions idle longer than
// ttl and starts its background janitor.
func NewSessionManager(ttl time.Duration) *SessionManager {
	m := &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		janitor:  time.NewTicker(sweepInterval),
		stop:     make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *SessionManager) run() {
	for {
		select {
		case <-m.janitor.C:
			m.sweep(time.Now())
		case <-m.stop:
			return
		}
	}
}

// sweep removes sessions idle past the TTL.
func (m *SessionManager) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sess := range m.sessions {
		if now.Sub(sess.lastUsed) > m.ttl {
			delete(m.sessions, id)
			slog.Debug("Expired idle session", "sessionId", id, "workflowId", sess.WorkflowID)
		}
	}
}

// Open creates a fresh session for the workflow and registers it.
func (m *SessionManager) Open(workflowID string) *Session {
	sess := &Session{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		Store:      designer.NewStore(),
		lastUsed:   time.Now(),
	}

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
	return sess
}

// Get returns the session and refreshes its idle timer. The second return
// is false when the session does not exist or has expired.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if ok {
		sess.lastUsed = time.Now()
	}
	return sess, ok
}

// Close removes the session. Unknown ids are a no-op.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count reports the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown stops the janitor. Safe to call more than once.
func (m *SessionManager) Shutdown() {
	m.stopOnce.Do(func() {
		m.janitor.Stop()
		close(m.stop)
	})
}
