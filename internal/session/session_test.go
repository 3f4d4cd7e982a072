package session

import (
	"errors"
	"math/rand"
	"testing"

	"vocadrill/internal/model"
)

func catalogOf(words ...string) []model.PracticeWord {
	out := make([]model.PracticeWord, len(words))
	for i, w := range words {
		out[i] = model.PracticeWord{
			Word:       model.Word{Word: w},
			DayID:      "d01",
			OrderIndex: i,
		}
	}
	return out
}

func sessionWords(s *Session) []string {
	out := make([]string, len(s.Words))
	for i, w := range s.Words {
		out[i] = w.Word.Word
	}
	return out
}

func TestSequenceKeepsCatalogOrder(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	s, err := Build(catalog, model.DayStat{}, nil, Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := sessionWords(s)
	for i, want := range []string{"a", "b", "c"} {
		if got[i] != want {
			t.Fatalf("unexpected order: %v", got)
		}
	}
	if s.Index != 0 {
		t.Fatalf("fresh day should start at 0, got %d", s.Index)
	}
}

func TestResumeIndexSkipsToCheckpoint(t *testing.T) {
	catalog := catalogOf("a", "b", "c", "d")
	s, err := Build(catalog, model.DayStat{LastIndex: 2}, nil, Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Current() == nil || s.Current().Word.Word != "c" {
		t.Fatalf("expected resume at c, got %+v", s.Current())
	}
}

func TestResumeIndexWithCompletedGaps(t *testing.T) {
	catalog := catalogOf("a", "b", "c", "d")
	completed := map[string]struct{}{"c": {}}
	s, err := Build(catalog, model.DayStat{LastIndex: 2}, completed, Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	// c is filtered out; the first remaining word at or past the checkpoint is d.
	if s.Current().Word.Word != "d" {
		t.Fatalf("expected resume at d, got %s", s.Current().Word.Word)
	}
}

func TestResumeIndexPastEndFallsBackToStart(t *testing.T) {
	catalog := catalogOf("a", "b")
	s, err := Build(catalog, model.DayStat{LastIndex: 99}, nil, Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Index != 0 {
		t.Fatalf("checkpoint past the end should restart at 0, got %d", s.Index)
	}
}

func TestCompletedWordsExcluded(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	completed := map[string]struct{}{"b": {}}
	s, err := Build(catalog, model.DayStat{}, completed, Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, w := range s.Words {
		if w.Word.Word == "b" {
			t.Fatalf("mastered word must not enter the session")
		}
	}
}

func TestAllCompletedSignalsNothingToPractice(t *testing.T) {
	catalog := catalogOf("a", "b")
	completed := map[string]struct{}{"a": {}, "b": {}}
	_, err := Build(catalog, model.DayStat{}, completed, Options{Mode: model.ModeSequence})
	if !errors.Is(err, ErrNothingToPractice) {
		t.Fatalf("expected ErrNothingToPractice, got %v", err)
	}
}

func TestReviewFiltersToWrongSet(t *testing.T) {
	catalog := catalogOf("a", "b", "c", "d")
	stat := model.DayStat{WrongSet: []string{"b", "d", "ghost"}}
	completed := map[string]struct{}{"d": {}}
	s, err := Build(catalog, stat, completed, Options{Mode: model.ModeSequence, Review: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := sessionWords(s)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("review must contain wrongSet minus mastered, got %v", got)
	}
	if !s.Review {
		t.Fatalf("expected review session")
	}
	if s.Index != 0 {
		t.Fatalf("review starts at 0, got %d", s.Index)
	}
}

func TestEmptyReviewSignalsNoReviewWords(t *testing.T) {
	catalog := catalogOf("a", "b")
	_, err := Build(catalog, model.DayStat{}, nil, Options{Review: true})
	if !errors.Is(err, ErrNoReviewWords) {
		t.Fatalf("expected ErrNoReviewWords, got %v", err)
	}
}

func TestRandomShuffleIsPermutation(t *testing.T) {
	catalog := catalogOf("a", "b", "c", "d", "e", "f", "g", "h")
	rnd := rand.New(rand.NewSource(7))
	s, err := Build(catalog, model.DayStat{}, nil, Options{Mode: model.ModeRandom, Rand: rnd})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(s.Words) != len(catalog) {
		t.Fatalf("expected %d words, got %d", len(catalog), len(s.Words))
	}
	seen := map[string]int{}
	for _, w := range s.Words {
		seen[w.Word.Word]++
	}
	for _, w := range catalog {
		if seen[w.Word.Word] != 1 {
			t.Fatalf("shuffle is not a permutation: %v", seen)
		}
	}
	if s.Index != 0 {
		t.Fatalf("random mode starts at 0, got %d", s.Index)
	}
}

func TestRandomShuffleVariesAcrossCalls(t *testing.T) {
	catalog := catalogOf("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	rnd := rand.New(rand.NewSource(1))
	varied := false
	for i := 0; i < 10 && !varied; i++ {
		s, err := Build(catalog, model.DayStat{}, nil, Options{Mode: model.ModeRandom, Rand: rnd})
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		for j, w := range s.Words {
			if w.Word.Word != catalog[j].Word.Word {
				varied = true
				break
			}
		}
	}
	if !varied {
		t.Fatalf("shuffle never changed the order over repeated builds")
	}
}

func TestTargetWordPositionsSession(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	s, err := Build(catalog, model.DayStat{}, nil, Options{Mode: model.ModeSequence, TargetWord: "c"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Current().Word.Word != "c" {
		t.Fatalf("expected to start at c, got %s", s.Current().Word.Word)
	}
}

func TestTargetWordSplicedWhenFilteredOut(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	completed := map[string]struct{}{"b": {}}
	s, err := Build(catalog, model.DayStat{}, completed, Options{Mode: model.ModeSequence, TargetWord: "b"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Index != 0 || s.Current().Word.Word != "b" {
		t.Fatalf("filtered-out target must be spliced to the front, got index=%d word=%s",
			s.Index, s.Current().Word.Word)
	}
	if len(s.Words) != 3 {
		t.Fatalf("expected splice to add the target, got %v", sessionWords(s))
	}
}

func TestTargetOutsideWrongSetIgnoredInReview(t *testing.T) {
	catalog := catalogOf("a", "b", "c")
	stat := model.DayStat{WrongSet: []string{"b"}}
	s, err := Build(catalog, stat, nil, Options{Mode: model.ModeSequence, Review: true, TargetWord: "c"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	got := sessionWords(s)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("review must never pull a word from outside the wrong set, got %v", got)
	}
	if s.Index != 0 {
		t.Fatalf("review starts at 0, got %d", s.Index)
	}
}

func TestUnknownTargetWordIgnored(t *testing.T) {
	catalog := catalogOf("a", "b")
	s, err := Build(catalog, model.DayStat{LastIndex: 1}, nil, Options{Mode: model.ModeSequence, TargetWord: "zzz"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Current().Word.Word != "b" {
		t.Fatalf("unknown target should fall back to resume rules, got %s", s.Current().Word.Word)
	}
}
