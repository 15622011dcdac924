package referral

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MrSnakeDoc/jaayvee/internal/logger"
)

// Store reads and writes the attribution of one session.
//
// Attribution is best effort: every storage failure is logged and the
// operation degrades to a no-op or a nil result. Nothing is returned to
// the caller as an error.
type Store struct {
	backend Backend
	logger  logger.Logger
	now     func() time.Time
}

// NewStore creates a store on top of backend.
func NewStore(backend Backend, log logger.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  log,
		now:     time.Now,
	}
}

// WithClock overrides the time source used for CapturedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Read returns the current record, or nil if absent or unreadable.
func (s *Store) Read(ctx context.Context) *Record {
	raw, ok := s.get(ctx, KeyCurrent)
	if !ok {
		return nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.logger.Warn("ignoring malformed referral record", logger.Error(err))
		return nil
	}
	if rec.Token == "" {
		s.logger.Warn("ignoring referral record without token")
		return nil
	}
	return &rec
}

// Write replaces the current record and appends a copy to the history log.
func (s *Store) Write(ctx context.Context, token, source, eventID, userID string) {
	rec := Record{
		Token:      token,
		Source:     source,
		CapturedAt: s.now().UnixMilli(),
		EventID:    eventID,
		UserID:     userID,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("failed to encode referral record", logger.Error(err))
		return
	}
	if err := s.backend.Set(ctx, KeyCurrent, string(data)); err != nil {
		s.logger.Warn("failed to store referral record",
			logger.String("ref", token),
			logger.Error(err))
		return
	}

	history, ok := s.loadHistory(ctx)
	if !ok {
		// an unreadable log is left alone rather than truncated
		return
	}
	history = append(history, rec)
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}

	data, err = json.Marshal(history)
	if err != nil {
		s.logger.Error("failed to encode referral history", logger.Error(err))
		return
	}
	if err := s.backend.Set(ctx, KeyHistory, string(data)); err != nil {
		s.logger.Warn("failed to store referral history", logger.Error(err))
	}
}

// ReadHistory returns the history log, oldest first.
func (s *Store) ReadHistory(ctx context.Context) []Record {
	history, _ := s.loadHistory(ctx)
	return history
}

// loadHistory decodes the history log. ok is false when the backend failed,
// in which case the stored log may still exist and must not be replaced.
// Absent or malformed logs decode to an empty history.
func (s *Store) loadHistory(ctx context.Context) (history []Record, ok bool) {
	raw, err := s.backend.Get(ctx, KeyHistory)
	if errors.Is(err, ErrNotFound) {
		return []Record{}, true
	}
	if err != nil {
		s.logger.Warn("referral storage unavailable",
			logger.String("key", KeyHistory),
			logger.Error(err))
		return []Record{}, false
	}

	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.logger.Warn("ignoring malformed referral history", logger.Error(err))
		return []Record{}, true
	}
	if history == nil {
		return []Record{}, true
	}
	return history, true
}

// Clear removes the current record. History is kept.
func (s *Store) Clear(ctx context.Context) {
	if err := s.backend.Delete(ctx, KeyCurrent); err != nil {
		s.logger.Warn("failed to clear referral record", logger.Error(err))
	}
}

func (s *Store) get(ctx context.Context, key string) (string, bool) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("referral storage unavailable",
				logger.String("key", key),
				logger.Error(err))
		}
		return "", false
	}
	return raw, true
}
