// Package progress persists per-Day practice records on a kv.Store.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vocadrill/internal/kv"
	"vocadrill/internal/model"
)

const progressKey = "progress"

// Store owns the DayStat records, one per Day, under a single durable key.
// Writes are whole-record read-modify-write; concurrent processes are
// last-writer-wins.
type Store struct {
	kv   kv.Store
	now  func() time.Time
	logf func(format string, args ...any)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the completion-date clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogf overrides the corruption log sink, for tests.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(s *Store) { s.logf = logf }
}

// New returns a progress store over the given kv backend.
func New(store kv.Store, opts ...Option) *Store {
	s := &Store{
		kv:  store,
		now: time.Now,
		logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format, args...)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) readState(ctx context.Context) map[string]model.DayStat {
	raw, ok, err := s.kv.Get(ctx, progressKey)
	if err != nil {
		s.logf("failed to read progress: %v\n", err)
		return map[string]model.DayStat{}
	}
	if !ok {
		return map[string]model.DayStat{}
	}
	var state map[string]model.DayStat
	if err := json.Unmarshal(raw, &state); err != nil {
		// Corrupt records fall back to defaults; gameplay must not stop.
		s.logf("corrupt progress record, starting fresh: %v\n", err)
		return map[string]model.DayStat{}
	}
	if state == nil {
		return map[string]model.DayStat{}
	}
	return state
}

func (s *Store) writeState(ctx context.Context, state map[string]model.DayStat) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	if err := s.kv.Set(ctx, progressKey, raw); err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}
	return nil
}

func normalizeStat(stat model.DayStat) model.DayStat {
	if stat.Correct < 0 {
		stat.Correct = 0
	}
	if stat.Wrong < 0 {
		stat.Wrong = 0
	}
	if stat.LastIndex < 0 {
		stat.LastIndex = 0
	}
	if stat.ReviewCount < 0 {
		stat.ReviewCount = 0
	}
	stat.CompletedDates = dedup(stat.CompletedDates)
	stat.WrongSet = dedup(stat.WrongSet)
	return stat
}

func dedup(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Get returns the Day's record, defaulting to all-zero/empty for an unseen Day.
func (s *Store) Get(ctx context.Context, dayID string) model.DayStat {
	return normalizeStat(s.readState(ctx)[dayID])
}

// Set replaces the Day's record.
func (s *Store) Set(ctx context.Context, dayID string, stat model.DayStat) error {
	state := s.readState(ctx)
	state[dayID] = normalizeStat(stat)
	return s.writeState(ctx, state)
}

// MarkAnswer records one answer event. A correct answer increments the correct
// counter and removes the word from the wrong set; a wrong attempt increments
// the wrong counter and adds the word (idempotent). nextIndex becomes the new
// resume checkpoint, floored at zero.
func (s *Store) MarkAnswer(ctx context.Context, dayID, word string, ok bool, nextIndex int) error {
	state := s.readState(ctx)
	stat := normalizeStat(state[dayID])
	if nextIndex < 0 {
		nextIndex = 0
	}
	stat.LastIndex = nextIndex
	if ok {
		stat.Correct++
		kept := stat.WrongSet[:0]
		for _, w := range stat.WrongSet {
			if w != word {
				kept = append(kept, w)
			}
		}
		stat.WrongSet = kept
	} else {
		stat.Wrong++
		if !stat.HasWrong(word) {
			stat.WrongSet = append(stat.WrongSet, word)
		}
	}
	state[dayID] = stat
	return s.writeState(ctx, state)
}

// MarkDayCompleted appends today's date to the Day's completion history.
// Completing the same Day twice on one calendar date records a single entry.
func (s *Store) MarkDayCompleted(ctx context.Context, dayID string) error {
	state := s.readState(ctx)
	stat := normalizeStat(state[dayID])
	today := s.now().Format("2006-01-02")
	found := false
	for _, d := range stat.CompletedDates {
		if d == today {
			found = true
			break
		}
	}
	if !found {
		stat.CompletedDates = append(stat.CompletedDates, today)
	}
	state[dayID] = stat
	return s.writeState(ctx, state)
}

// IncrementReviewCount records one completed review cycle.
func (s *Store) IncrementReviewCount(ctx context.Context, dayID string) error {
	state := s.readState(ctx)
	stat := normalizeStat(state[dayID])
	stat.ReviewCount++
	state[dayID] = stat
	return s.writeState(ctx, state)
}

// ResetDay zeroes the counters and resume checkpoint. The wrong set is kept or
// cleared per the caller's choice; completion history and the review cycle
// count survive every reset.
func (s *Store) ResetDay(ctx context.Context, dayID string, keepWrongSet bool) error {
	state := s.readState(ctx)
	current := normalizeStat(state[dayID])
	wrongSet := []string{}
	if keepWrongSet {
		wrongSet = current.WrongSet
	}
	state[dayID] = model.DayStat{
		CompletedDates: current.CompletedDates,
		WrongSet:       wrongSet,
		ReviewCount:    current.ReviewCount,
	}
	return s.writeState(ctx, state)
}
