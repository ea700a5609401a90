// Package session keeps one conversation per chat session id.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comigor/tailortalk/internal/logger"
	"github.com/comigor/tailortalk/internal/metrics"
)

const (
	DefaultTTL           = 30 * time.Minute
	DefaultMax           = 1000
	DefaultSweepInterval = time.Minute
)

// Conversation answers user messages. *agent.Conversation implements it.
type Conversation interface {
	Process(ctx context.Context, message string) (string, error)
}

// Factory opens a new conversation for the session id.
type Factory func(ctx context.Context, id string) (Conversation, error)

// Options tune a Store. Zero values fall back to defaults.
type Options struct {
	TTL           time.Duration
	Max           int
	SweepInterval time.Duration
	Metrics       *metrics.Metrics
	Now           func() time.Time
}

type entry struct {
	conv       Conversation
	lastAccess time.Time
	inFlight   int
	tracked    *trackedConversation
}

// trackedConversation marks its entry busy while a message is processed and
// refreshes the idle timer when it finishes.
type trackedConversation struct {
	store *Store
	entry *entry
}

func (t *trackedConversation) Process(ctx context.Context, message string) (string, error) {
	t.store.mu.Lock()
	t.entry.inFlight++
	t.store.mu.Unlock()

	defer func() {
		t.store.mu.Lock()
		t.entry.inFlight--
		t.entry.lastAccess = t.store.opts.Now()
		t.store.mu.Unlock()
	}()
	return t.entry.conv.Process(ctx, message)
}

// Store holds live conversations keyed by session id. Idle sessions expire
// after the TTL; when full, the least recently used idle session is evicted.
// Sessions with a message in progress are never dropped, so the store can
// briefly hold more than Max entries.
type Store struct {
	factory Factory
	opts    Options

	mu       sync.Mutex
	sessions map[string]*entry

	cleanupTicker *time.Ticker
	cleanupDone   chan struct{}
	stopOnce      sync.Once
}

// NewStore creates a store and starts its cleanup goroutine. Call Stop to
// release it.
func NewStore(factory Factory, opts Options) (*Store, error) {
	if factory == nil {
		return nil, errors.New("session factory cannot be nil")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		factory:       factory,
		opts:          opts,
		sessions:      make(map[string]*entry),
		cleanupTicker: time.NewTicker(opts.SweepInterval),
		cleanupDone:   make(chan struct{}),
	}
	go s.cleanupExpiredSessions()
	return s, nil
}

// Get returns the conversation for id. An empty, unknown or expired id
// opens a new conversation under a freshly generated id, which is returned.
func (s *Store) Get(ctx context.Context, id string) (string, Conversation, error) {
	if id != "" {
		s.mu.Lock()
		e, ok := s.sessions[id]
		if ok && (e.inFlight > 0 || s.opts.Now().Sub(e.lastAccess) <= s.opts.TTL) {
			e.lastAccess = s.opts.Now()
			s.mu.Unlock()
			return id, e.tracked, nil
		}
		if ok {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
	}

	newID := uuid.NewString()
	// Opening a conversation talks to the model, so it runs unlocked.
	conv, err := s.factory(ctx, newID)
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	if len(s.sessions) >= s.opts.Max {
		s.evictOldestLocked()
	}
	e := &entry{conv: conv, lastAccess: s.opts.Now()}
	e.tracked = &trackedConversation{store: s, entry: e}
	s.sessions[newID] = e
	n := len(s.sessions)
	s.mu.Unlock()

	s.opts.Metrics.SetActiveSessions(n)
	logger.L.Info("session opened", "session", newID, "requested", id, "active", n)
	return newID, e.tracked, nil
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if e.inFlight > 0 {
			continue
		}
		if oldestID == "" || e.lastAccess.Before(oldest) {
			oldestID, oldest = id, e.lastAccess
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		logger.L.Info("session evicted", "session", oldestID)
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	now := s.opts.Now()
	expired := 0
	for id, e := range s.sessions {
		if e.inFlight == 0 && now.Sub(e.lastAccess) > s.opts.TTL {
			delete(s.sessions, id)
			expired++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.opts.Metrics.SetActiveSessions(n)
	if expired > 0 {
		logger.L.Info("Cleaned up expired sessions", "count", expired)
	}
	return expired
}

// cleanupExpiredSessions periodically removes expired sessions
func (s *Store) cleanupExpiredSessions() {
	for {
		select {
		case <-s.cleanupTicker.C:
			s.Sweep()
		case <-s.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		s.cleanupTicker.Stop()
		close(s.cleanupDone)
	})
}
