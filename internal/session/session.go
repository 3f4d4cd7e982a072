// Package session builds practice sessions from a Day's catalog and progress.
package session

import (
	"errors"
	"math/rand"
	"time"

	"vocadrill/internal/model"
)

// ErrNothingToPractice signals that every catalog word is marked mastered.
// Not a failure: the caller should prompt for new words instead.
var ErrNothingToPractice = errors.New("nothing left to practice")

// ErrNoReviewWords signals a review request with an empty wrong set after
// filtering. Not a failure: review of nothing is not a valid session.
var ErrNoReviewWords = errors.New("no words to review")

// Options controls how a session is built.
type Options struct {
	Mode   model.Mode
	Review bool
	// TargetWord, when set, forces the session to start at that word. A target
	// absent from the session list but present in the catalog is spliced to
	// the front so navigation never silently fails.
	TargetWord string
	// Rand supplies the shuffle source for random mode. Nil seeds from the
	// current time.
	Rand *rand.Rand
}

// Session is the ephemeral word queue for one practice run. It is rebuilt on
// every (re-)entry of a Day and never persisted.
type Session struct {
	Words  []model.PracticeWord
	Index  int
	Review bool
}

// Current returns the session's current word, or nil past either end.
func (s *Session) Current() *model.PracticeWord {
	if s == nil || s.Index < 0 || s.Index >= len(s.Words) {
		return nil
	}
	return &s.Words[s.Index]
}

// Build filters, orders, and positions a session per the resume rules.
// catalog is the full ordered word list for the Day, already merged with
// custom words; completed is the Day's mastered-word set.
func Build(catalog []model.PracticeWord, stat model.DayStat, completed map[string]struct{}, opts Options) (*Session, error) {
	var words []model.PracticeWord
	if opts.Review {
		for _, w := range catalog {
			if !stat.HasWrong(w.Word.Word) {
				continue
			}
			if _, done := completed[w.Word.Word]; done {
				continue
			}
			words = append(words, w)
		}
		if len(words) == 0 {
			return nil, ErrNoReviewWords
		}
	} else {
		for _, w := range catalog {
			if _, done := completed[w.Word.Word]; done {
				continue
			}
			words = append(words, w)
		}
		if len(words) == 0 {
			return nil, ErrNothingToPractice
		}
	}

	if opts.Mode == model.ModeRandom {
		shuffle(words, opts.Rand)
	}

	sess := &Session{Words: words, Review: opts.Review}
	sess.Index = startIndex(words, catalog, stat, opts, sess)
	return sess, nil
}

func startIndex(words, catalog []model.PracticeWord, stat model.DayStat, opts Options, sess *Session) int {
	if opts.TargetWord != "" {
		for i, w := range sess.Words {
			if w.Word.Word == opts.TargetWord {
				return i
			}
		}
		// Not in the session list; splice a catalog copy to the front.
		// A review session holds only the day's wrong words, so a target
		// outside that set is ignored rather than spliced in.
		if !opts.Review {
			for _, w := range catalog {
				if w.Word.Word == opts.TargetWord {
					sess.Words = append([]model.PracticeWord{w}, sess.Words...)
					return 0
				}
			}
		}
		// Unknown word; fall through to the normal rules.
	}

	if opts.Review || opts.Mode == model.ModeRandom {
		return 0
	}

	// Resume: first remaining word at or past the checkpoint, in canonical
	// orderIndex space. lastIndex is clamped to the catalog length on read.
	last := stat.LastIndex
	if last > len(catalog) {
		last = len(catalog)
	}
	for i, w := range words {
		if w.OrderIndex >= last {
			return i
		}
	}
	return 0
}

// shuffle is a uniform Fisher-Yates permutation.
func shuffle(words []model.PracticeWord, rnd *rand.Rand) {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for i := len(words) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		words[i], words[j] = words[j], words[i]
	}
}
