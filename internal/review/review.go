// Package review decides what happens when a session completes.
package review

import (
	"context"
	"errors"

	"vocadrill/internal/model"
	"vocadrill/internal/progress"
	"vocadrill/internal/session"
)

// OutcomeType tags what a completed session leads to.
type OutcomeType int

const (
	// OutcomeNone means no completion semantics apply (random-mode runs).
	OutcomeNone OutcomeType = iota
	// OutcomeDayCompleted means the Day finished; the learner may begin a
	// review of the wrong set.
	OutcomeDayCompleted
	// OutcomeReviewFinished means a review cycle ended; the learner chooses
	// to clear or retain the remaining wrong set.
	OutcomeReviewFinished
)

// Outcome is the orchestrator's verdict for a completed session.
type Outcome struct {
	Type OutcomeType
	// WrongWords is the Day's current wrong set at completion time, for
	// display and for deciding whether a review is worth offering.
	WrongWords []string
}

// Orchestrator owns the day-completion and review-cycle transitions.
type Orchestrator struct {
	progress  *progress.Store
	completed *progress.CompletedStore
}

// New returns an orchestrator over the given stores.
func New(progressStore *progress.Store, completedStore *progress.CompletedStore) *Orchestrator {
	return &Orchestrator{progress: progressStore, completed: completedStore}
}

// OnSessionComplete applies completion semantics. A finished review bumps the
// review-cycle counter; a normal sequence run records the completion date.
// Random-mode runs carry no completion semantics: the session order has no
// relation to the catalog, so "finished" does not mean "covered the Day".
func (o *Orchestrator) OnSessionComplete(ctx context.Context, dayID string, wasReview bool, mode model.Mode) (Outcome, error) {
	if wasReview {
		if err := o.progress.IncrementReviewCount(ctx, dayID); err != nil {
			return Outcome{}, err
		}
		stat := o.progress.Get(ctx, dayID)
		return Outcome{Type: OutcomeReviewFinished, WrongWords: stat.WrongSet}, nil
	}
	if mode != model.ModeSequence {
		return Outcome{Type: OutcomeNone}, nil
	}
	if err := o.progress.MarkDayCompleted(ctx, dayID); err != nil {
		return Outcome{}, err
	}
	stat := o.progress.Get(ctx, dayID)
	return Outcome{Type: OutcomeDayCompleted, WrongWords: stat.WrongSet}, nil
}

// BeginReview builds a review session over the Day's wrong set. An empty
// wrong set is a perfect completion: no session, perfect=true.
func (o *Orchestrator) BeginReview(ctx context.Context, dayID string, catalog []model.PracticeWord) (sess *session.Session, perfect bool, err error) {
	stat := o.progress.Get(ctx, dayID)
	completedSet := o.completed.Set(ctx, dayID)
	sess, err = session.Build(catalog, stat, completedSet, session.Options{
		Mode:   model.ModeSequence,
		Review: true,
	})
	if errors.Is(err, session.ErrNoReviewWords) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return sess, false, nil
}

// FinalizeReview resolves a finished review cycle: the Day restarts fresh,
// keeping or clearing the remaining wrong set per the learner's choice. This
// choice is the only bulk mutation path for the wrong set; individual words
// still clear on correct answers during the review itself.
func (o *Orchestrator) FinalizeReview(ctx context.Context, dayID string, keepWrongSet bool) error {
	return o.progress.ResetDay(ctx, dayID, keepWrongSet)
}

// ResetDay zeroes the Day's counters. Completion history always survives.
func (o *Orchestrator) ResetDay(ctx context.Context, dayID string, keepWrongSet bool) error {
	return o.progress.ResetDay(ctx, dayID, keepWrongSet)
}
