package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"sync"
	"time"

	"github.com/Levii22/planning-poker/internal/dependencies/clock"
	"github.com/Levii22/planning-poker/internal/model"
)

// Entry records the identity a session token was issued for. Entries
// deliberately outlive the socket that created them so a dropped client
// could re-associate later; nothing redeems them yet, so they are only
// ever written, counted and swept.
type Entry struct {
	Token     string
	PlayerID  model.PlayerID
	RoomCode  model.RoomCode
	Name      string
	CreatedAt time.Time
}

// Config holds configuration for the session registry
type Config struct {
	// TTL is how long an entry lives regardless of use
	TTL time.Duration
	// SweepInterval is how often Run clears expired entries
	SweepInterval time.Duration
}

// DefaultConfig returns default session registry configuration
func DefaultConfig() Config {
	return Config{
		TTL:           30 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// Service is the in-memory session-token registry
type Service struct {
	clock  clock.Clock
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]*Entry

	ttl           time.Duration
	sweepInterval time.Duration
}

// New creates a new session registry
func New(clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	return &Service{
		clock:         clk,
		logger:        logger.With(slog.String("component", "session")),
		entries:       make(map[string]*Entry),
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
	}
}

// Issue creates a session token for a player and records it
func (s *Service) Issue(playerID model.PlayerID, roomCode model.RoomCode, name string) string {
	token := generateToken()

	s.mu.Lock()
	s.entries[token] = &Entry{
		Token:     token,
		PlayerID:  playerID,
		RoomCode:  roomCode,
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	s.mu.Unlock()

	return token
}

// Sweep removes every entry whose age exceeds the TTL and returns how
// many were removed. Idempotent.
func (s *Service) Sweep() int {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, entry := range s.entries {
		if now.Sub(entry.CreatedAt) > s.ttl {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Count returns the number of live entries
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Run sweeps on a fixed interval until the context is cancelled
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	s.logger.Info("session sweeper started",
		slog.Duration("ttl", s.ttl),
		slog.Duration("interval", s.sweepInterval))

	for {
		select {
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Info("swept expired sessions", slog.Int("removed", removed))
			}
		case <-ctx.Done():
			s.logger.Info("session sweeper stopped")
			return
		}
	}
}

// generateToken returns an unguessable 128-bit token
func generateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "sess_" + base64.RawURLEncoding.EncodeToString(b)
}
