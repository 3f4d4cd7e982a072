package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"vocadrill/internal/kv"
	"vocadrill/internal/model"
)

const customKey = "custom-words"

// CustomStore holds learner-added words per Day. The catalog loader merges
// them after the Day's catalog rows.
type CustomStore struct {
	kv   kv.Store
	logf func(format string, args ...any)
}

// NewCustom returns a custom-word store over the given kv backend.
func NewCustom(store kv.Store, logf func(format string, args ...any)) *CustomStore {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &CustomStore{kv: store, logf: logf}
}

func (s *CustomStore) read(ctx context.Context) map[string][]model.Word {
	raw, ok, err := s.kv.Get(ctx, customKey)
	if err != nil {
		s.logf("failed to read custom words: %v\n", err)
		return map[string][]model.Word{}
	}
	if !ok {
		return map[string][]model.Word{}
	}
	var state map[string][]model.Word
	if err := json.Unmarshal(raw, &state); err != nil {
		s.logf("corrupt custom-word record, starting fresh: %v\n", err)
		return map[string][]model.Word{}
	}
	if state == nil {
		return map[string][]model.Word{}
	}
	return state
}

func (s *CustomStore) write(ctx context.Context, state map[string][]model.Word) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode custom words: %w", err)
	}
	if err := s.kv.Set(ctx, customKey, raw); err != nil {
		return fmt.Errorf("failed to write custom words: %w", err)
	}
	return nil
}

// List returns the Day's custom words in insertion order.
func (s *CustomStore) List(ctx context.Context, dayID string) []model.Word {
	return s.read(ctx)[dayID]
}

// Add appends a custom word to the Day.
func (s *CustomStore) Add(ctx context.Context, dayID string, word model.Word) error {
	if word.Word == "" {
		return fmt.Errorf("custom word must not be empty")
	}
	state := s.read(ctx)
	state[dayID] = append(state[dayID], word)
	return s.write(ctx, state)
}

// Remove deletes the custom word identified by its exact text.
func (s *CustomStore) Remove(ctx context.Context, dayID, wordText string) error {
	state := s.read(ctx)
	words := state[dayID]
	kept := words[:0]
	for _, w := range words {
		if w.Word != wordText {
			kept = append(kept, w)
		}
	}
	state[dayID] = kept
	return s.write(ctx, state)
}

// Update replaces the stored fields of the custom word identified by wordText.
// It reports whether the word was found.
func (s *CustomStore) Update(ctx context.Context, dayID, wordText string, updated model.Word) (bool, error) {
	state := s.read(ctx)
	words := state[dayID]
	for i, w := range words {
		if w.Word == wordText {
			if updated.Word == "" {
				updated.Word = wordText
			}
			words[i] = updated
			state[dayID] = words
			return true, s.write(ctx, state)
		}
	}
	return false, nil
}

// Clear removes all custom words for the Day.
func (s *CustomStore) Clear(ctx context.Context, dayID string) error {
	state := s.read(ctx)
	delete(state, dayID)
	return s.write(ctx, state)
}
