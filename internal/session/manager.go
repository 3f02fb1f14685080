package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns the live sessions of this process, one per taker
// instance. Sessions are keyed by an opaque id; the countdown runs on a
// per-session goroutine that the manager cancels on teardown.
type Manager struct {
	src  TestSource
	rec  Recorder
	tick time.Duration

	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewManager(src TestSource, rec Recorder, tick time.Duration) *Manager {
	if tick <= 0 {
		tick = time.Second
	}
	return &Manager{
		src:      src,
		rec:      rec,
		tick:     tick,
		sessions: make(map[string]*Controller),
	}
}

// Begin opens a session for the share code and starts its countdown.
func (m *Manager) Begin(ctx context.Context, shareCode string, takerID int64) (*Controller, error) {
	c := New(m.src, m.rec)
	c.id = uuid.NewString()

	if err := c.Load(ctx, shareCode, takerID); err != nil {
		return nil, err
	}

	// The timer outlives the originating request.
	timerCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	go c.runTimer(timerCtx, m.tick)

	m.mu.Lock()
	m.sessions[c.id] = c
	m.mu.Unlock()
	return c, nil
}

func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// End tears the session down, releasing its timer.
func (m *Manager) End(id string) {
	m.mu.Lock()
	c, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}
