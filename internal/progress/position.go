package progress

import (
	"context"
	"encoding/json"

	"vocadrill/internal/kv"
)

const (
	lastWordPrefix   = "last-word:"
	pendingTargetKey = "pending-target"
)

// PositionStore keeps the small auxiliary resume records: the last word
// practiced per Day, and a one-shot navigation target used to jump a new
// session to a specific word.
type PositionStore struct {
	kv kv.Store
}

// NewPosition returns a position store over the given kv backend.
func NewPosition(store kv.Store) *PositionStore {
	return &PositionStore{kv: store}
}

// SetLastWord records the word last shown for the Day. Failures are ignored;
// the record is advisory.
func (s *PositionStore) SetLastWord(ctx context.Context, dayID, word string) {
	_ = s.kv.Set(ctx, lastWordPrefix+dayID, []byte(word))
}

// LastWord returns the recorded last word for the Day, or "".
func (s *PositionStore) LastWord(ctx context.Context, dayID string) string {
	raw, ok, err := s.kv.Get(ctx, lastWordPrefix+dayID)
	if err != nil || !ok {
		return ""
	}
	return string(raw)
}

// ClearLastWord removes the Day's last-word record.
func (s *PositionStore) ClearLastWord(ctx context.Context, dayID string) {
	_ = s.kv.Delete(ctx, lastWordPrefix+dayID)
}

// PendingTarget is a one-shot navigation request: start the next session for
// DayID at Word.
type PendingTarget struct {
	DayID string `json:"dayId"`
	Word  string `json:"word"`
}

// SetPendingTarget stores the one-shot navigation target.
func (s *PositionStore) SetPendingTarget(ctx context.Context, dayID, word string) error {
	raw, err := json.Marshal(PendingTarget{DayID: dayID, Word: word})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, pendingTargetKey, raw)
}

// TakePendingTarget returns and clears the pending target, if any. A malformed
// record is discarded.
func (s *PositionStore) TakePendingTarget(ctx context.Context) (PendingTarget, bool) {
	raw, ok, err := s.kv.Get(ctx, pendingTargetKey)
	if err != nil || !ok {
		return PendingTarget{}, false
	}
	_ = s.kv.Delete(ctx, pendingTargetKey)
	var target PendingTarget
	if err := json.Unmarshal(raw, &target); err != nil {
		return PendingTarget{}, false
	}
	if target.DayID == "" || target.Word == "" {
		return PendingTarget{}, false
	}
	return target, true
}
