package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"vocadrill/internal/kv"
)

const completedKey = "completed-words"

// CompletedStore tracks words the learner has manually marked mastered,
// independent of the DayStat records. Mastered words are filtered out of new
// non-review sessions.
type CompletedStore struct {
	kv   kv.Store
	logf func(format string, args ...any)
}

// NewCompleted returns a completed-word store over the given kv backend.
func NewCompleted(store kv.Store, logf func(format string, args ...any)) *CompletedStore {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &CompletedStore{kv: store, logf: logf}
}

func (s *CompletedStore) read(ctx context.Context) map[string][]string {
	raw, ok, err := s.kv.Get(ctx, completedKey)
	if err != nil {
		s.logf("failed to read completed words: %v\n", err)
		return map[string][]string{}
	}
	if !ok {
		return map[string][]string{}
	}
	var state map[string][]string
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logf("corrupt completed-word record, starting fresh: %v\n", err)
		return map[string][]string{}
	}
	if state == nil {
		return map[string][]string{}
	}
	return state
}

func (s *CompletedStore) write(ctx context.Context, state map[string][]string) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode completed words: %w", err)
	}
	if err := s.kv.Set(ctx, completedKey, raw); err != nil {
		return fmt.Errorf("failed to write completed words: %w", err)
	}
	return nil
}

// List returns the Day's mastered words.
func (s *CompletedStore) List(ctx context.Context, dayID string) []string {
	return dedup(s.read(ctx)[dayID])
}

// Set returns the Day's mastered words as a membership set.
func (s *CompletedStore) Set(ctx context.Context, dayID string) map[string]struct{} {
	words := s.List(ctx, dayID)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsCompleted reports whether the word is marked mastered for the Day.
func (s *CompletedStore) IsCompleted(ctx context.Context, dayID, word string) bool {
	for _, w := range s.read(ctx)[dayID] {
		if w == word {
			return true
		}
	}
	return false
}

// Toggle flips the word's mastered flag and returns the new value.
func (s *CompletedStore) Toggle(ctx context.Context, dayID, word string) (bool, error) {
	state := s.read(ctx)
	words := state[dayID]
	for i, w := range words {
		if w == word {
			state[dayID] = append(words[:i], words[i+1:]...)
			return false, s.write(ctx, state)
		}
	}
	state[dayID] = append(words, word)
	return true, s.write(ctx, state)
}

// MarkAll marks every given word mastered for the Day.
func (s *CompletedStore) MarkAll(ctx context.Context, dayID string, words []string) error {
	state := s.read(ctx)
	existing := state[dayID]
	seen := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		seen[w] = struct{}{}
	}
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		existing = append(existing, w)
	}
	state[dayID] = existing
	return s.write(ctx, state)
}

// Count returns how many words the Day has marked mastered.
func (s *CompletedStore) Count(ctx context.Context, dayID string) int {
	return len(s.read(ctx)[dayID])
}

// Clear removes the Day's mastered-word list.
func (s *CompletedStore) Clear(ctx context.Context, dayID string) error {
	state := s.read(ctx)
	delete(state, dayID)
	return s.write(ctx, state)
}
