package game

import (
	"context"
	"testing"
	"time"

	"vocadrill/internal/kv"
	"vocadrill/internal/model"
	"vocadrill/internal/progress"
	"vocadrill/internal/session"
)

func quietLogf(string, ...any) {}

type recordingSpeaker struct {
	words []string
}

func (s *recordingSpeaker) Pronounce(word string) { s.words = append(s.words, word) }

func testCatalog(words ...string) []model.PracticeWord {
	out := make([]model.PracticeWord, len(words))
	for i, w := range words {
		out[i] = model.PracticeWord{
			Word:       model.Word{Word: w, Meaning: "meaning of " + w},
			DayID:      "day1",
			OrderIndex: i,
		}
	}
	return out
}

func newRunningEngine(t *testing.T, catalog []model.PracticeWord, opts session.Options) (*Engine, *progress.Store) {
	t.Helper()
	store := progress.New(kv.NewMemory(), progress.WithLogf(quietLogf))
	sess, err := session.Build(catalog, model.DayStat{}, nil, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	eng := NewEngine(store, nil, model.DefaultTuning())
	eng.Bind("day1", sess, len(catalog), opts.Mode)
	eng.Start()
	return eng, store
}

func TestHappyPathScoring(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog("alpha", "beta", "gamma")
	eng, store := newRunningEngine(t, catalog, session.Options{Mode: model.ModeSequence})

	wantIndex := []int{1, 2, 3}
	for i, w := range []string{"alpha", "beta", "gamma"} {
		res, err := eng.Submit(ctx, w)
		if err != nil {
			t.Fatalf("Submit %q: %v", w, err)
		}
		if res.Outcome != OutcomeCorrect {
			t.Fatalf("Submit %q outcome = %d, want correct", w, res.Outcome)
		}
		if res.AdvanceToken == 0 {
			t.Fatalf("Submit %q returned no advance token", w)
		}
		if got := store.Get(ctx, "day1").LastIndex; got != wantIndex[i] {
			t.Fatalf("lastIndex after %q = %d, want %d", w, got, wantIndex[i])
		}
		eng.Advance()
	}

	board := eng.Board()
	if board.Score != 36 {
		t.Fatalf("score = %d, want 36", board.Score)
	}
	if board.MaxStreak != 3 {
		t.Fatalf("maxStreak = %d, want 3", board.MaxStreak)
	}
	if eng.State() != StateComplete {
		t.Fatalf("state = %d, want StateComplete", eng.State())
	}
	stat := store.Get(ctx, "day1")
	if stat.Correct != 3 || stat.Wrong != 0 || len(stat.WrongSet) != 0 {
		t.Fatalf("dayStat = %+v, want correct=3 wrong=0 empty wrongSet", stat)
	}
	if len(stat.CompletedDates) != 0 {
		t.Fatalf("completedDates = %v, want empty until completion is confirmed", stat.CompletedDates)
	}
}

func TestMissThenRecover(t *testing.T) {
	ctx := context.Background()
	eng, store := newRunningEngine(t, testCatalog("alpha", "beta"), session.Options{Mode: model.ModeSequence})

	res, err := eng.Submit(ctx, "aplha")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeIncorrect || res.AdvanceToken != 0 {
		t.Fatalf("wrong submission: %+v, want incorrect with no token", res)
	}
	if eng.Board().Streak != 0 {
		t.Fatalf("streak = %d, want 0 after a miss", eng.Board().Streak)
	}
	stat := store.Get(ctx, "day1")
	if stat.Wrong != 1 || len(stat.WrongSet) != 1 || stat.WrongSet[0] != "alpha" {
		t.Fatalf("dayStat after miss = %+v", stat)
	}
	if stat.LastIndex != 0 {
		t.Fatalf("lastIndex = %d, want to stay at the missed word", stat.LastIndex)
	}

	if _, err := eng.Submit(ctx, "alpha"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	stat = store.Get(ctx, "day1")
	if stat.Correct != 1 || stat.Wrong != 1 {
		t.Fatalf("dayStat after recovery = %+v", stat)
	}
	if len(stat.WrongSet) != 0 {
		t.Fatalf("wrongSet = %v, want cleared by the correct answer", stat.WrongSet)
	}
	if eng.Board().Streak != 1 {
		t.Fatalf("streak = %d, want 1", eng.Board().Streak)
	}
}

func TestRepeatSubmitBeforeAdvanceScoresOnce(t *testing.T) {
	ctx := context.Background()
	eng, store := newRunningEngine(t, testCatalog("alpha", "beta"), session.Options{Mode: model.ModeSequence})

	first, err := eng.Submit(ctx, "alpha")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if first.Outcome != OutcomeCorrect || first.AdvanceToken == 0 {
		t.Fatalf("first submission: %+v, want correct with a token", first)
	}

	// A second Enter lands before the auto-advance fires. The word is
	// already answered, so nothing scores and nothing persists.
	second, err := eng.Submit(ctx, "alpha")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if second.Outcome != OutcomeCorrect || second.AdvanceToken != 0 {
		t.Fatalf("repeat submission: %+v, want correct with no token", second)
	}
	board := eng.Board()
	if board.Score != 10 || board.Streak != 1 {
		t.Fatalf("score/streak = %d/%d, want 10/1", board.Score, board.Streak)
	}
	stat := store.Get(ctx, "day1")
	if stat.Correct != 1 {
		t.Fatalf("persisted correct = %d, want 1", stat.Correct)
	}

	// The original token still advances the session.
	if moved, _ := eng.AutoAdvance(first.AdvanceToken); !moved {
		t.Fatalf("first token did not advance")
	}
	if got := eng.Current().Word.Word; got != "beta" {
		t.Fatalf("current = %q, want beta", got)
	}
}

func TestScoreFormula(t *testing.T) {
	ctx := context.Background()
	eng, _ := newRunningEngine(t, testCatalog("a", "b", "c", "d"), session.Options{Mode: model.ModeSequence})

	// Miss on the third word resets the streak, so the fourth scores base only.
	inputs := []struct {
		typed     string
		wantScore int
	}{
		{"a", 10},
		{"b", 22},
		{"x", 22},
		{"c", 32},
	}
	for _, in := range inputs {
		if _, err := eng.Submit(ctx, in.typed); err != nil {
			t.Fatalf("Submit %q: %v", in.typed, err)
		}
		if got := eng.Board().Score; got != in.wantScore {
			t.Fatalf("score after %q = %d, want %d", in.typed, got, in.wantScore)
		}
		if in.typed == eng.Current().Word.Word {
			eng.Advance()
		}
	}
}

func TestCheckpointUnchangedInReviewAndRandom(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog("alpha", "beta", "gamma")

	store := progress.New(kv.NewMemory(), progress.WithLogf(quietLogf))
	if err := store.MarkAnswer(ctx, "day1", "beta", false, 2); err != nil {
		t.Fatalf("MarkAnswer: %v", err)
	}
	sess, err := session.Build(catalog, store.Get(ctx, "day1"), nil, session.Options{
		Mode:   model.ModeSequence,
		Review: true,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	eng := NewEngine(store, nil, model.DefaultTuning())
	eng.Bind("day1", sess, len(catalog), model.ModeSequence)
	eng.Start()
	if _, err := eng.Submit(ctx, "beta"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := store.Get(ctx, "day1").LastIndex; got != 2 {
		t.Fatalf("lastIndex after review answer = %d, want unchanged 2", got)
	}

	engR, storeR := newRunningEngine(t, catalog, session.Options{Mode: model.ModeRandom})
	if _, err := engR.Submit(ctx, engR.Current().Word.Word); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := storeR.Get(ctx, "day1").LastIndex; got != 0 {
		t.Fatalf("lastIndex after random-mode answer = %d, want unchanged 0", got)
	}
}

func TestCheckpointClampedAtCatalogEnd(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog("alpha", "beta")
	eng, store := newRunningEngine(t, catalog, session.Options{Mode: model.ModeSequence})

	eng.Advance()
	if _, err := eng.Submit(ctx, "beta"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := store.Get(ctx, "day1").LastIndex; got != 2 {
		t.Fatalf("lastIndex = %d, want clamped to catalog length 2", got)
	}
}

func TestStaleAutoAdvanceIsNoOp(t *testing.T) {
	ctx := context.Background()
	eng, _ := newRunningEngine(t, testCatalog("alpha", "beta", "gamma"), session.Options{Mode: model.ModeSequence})

	res, err := eng.Submit(ctx, "alpha")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// The learner advances manually before the delayed callback fires.
	eng.Advance()
	if moved, _ := eng.AutoAdvance(res.AdvanceToken); moved {
		t.Fatalf("stale advance token moved the session")
	}
	if got := eng.Current().Word.Word; got != "beta" {
		t.Fatalf("current = %q, want beta", got)
	}

	res, err = eng.Submit(ctx, "beta")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if moved, completed := eng.AutoAdvance(res.AdvanceToken); !moved || completed {
		t.Fatalf("live advance token: moved=%v completed=%v, want moved", moved, completed)
	}
	if got := eng.Current().Word.Word; got != "gamma" {
		t.Fatalf("current = %q, want gamma", got)
	}
}

func TestAutoAdvanceCompletesAtLastWord(t *testing.T) {
	ctx := context.Background()
	eng, _ := newRunningEngine(t, testCatalog("alpha"), session.Options{Mode: model.ModeSequence})

	res, err := eng.Submit(ctx, "alpha")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.LastWord {
		t.Fatalf("LastWord = false, want true on the only word")
	}
	if moved, completed := eng.AutoAdvance(res.AdvanceToken); !moved || !completed {
		t.Fatalf("moved=%v completed=%v, want both", moved, completed)
	}
	if eng.State() != StateComplete {
		t.Fatalf("state = %d, want StateComplete", eng.State())
	}
}

func TestCountdownTimesOut(t *testing.T) {
	store := progress.New(kv.NewMemory(), progress.WithLogf(quietLogf))
	sess, err := session.Build(testCatalog("alpha"), model.DayStat{}, nil, session.Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tuning := model.DefaultTuning()
	tuning.CountdownSeconds = 2
	eng := NewEngine(store, nil, tuning)
	eng.Bind("day1", sess, 1, model.ModeSequence)
	eng.ToggleTimer()
	token, timed := eng.Start()
	if !timed {
		t.Fatalf("Start with timer enabled returned timed=false")
	}

	left, timedOut, live := eng.CountdownTick(token)
	if left != 1 || timedOut || !live {
		t.Fatalf("first tick: left=%d timedOut=%v live=%v", left, timedOut, live)
	}
	left, timedOut, live = eng.CountdownTick(token)
	if left != 0 || !timedOut || live {
		t.Fatalf("second tick: left=%d timedOut=%v live=%v", left, timedOut, live)
	}
	if eng.State() != StateTimedOut {
		t.Fatalf("state = %d, want StateTimedOut", eng.State())
	}
	// The timed-out engine refuses submissions until restarted.
	if res, _ := eng.Submit(context.Background(), "alpha"); res.Outcome != OutcomeIncorrect {
		t.Fatalf("submission accepted while timed out")
	}

	if _, timed := eng.Start(); !timed {
		t.Fatalf("restart after timeout did not rearm the countdown")
	}
	if eng.State() != StateRunning {
		t.Fatalf("state after restart = %d, want StateRunning", eng.State())
	}
}

func TestStaleCountdownTokenIsNoOp(t *testing.T) {
	eng, _ := newRunningEngine(t, testCatalog("alpha"), session.Options{Mode: model.ModeSequence})
	token, _ := eng.ToggleTimer()
	eng.Stop()
	eng.Start()
	if _, timedOut, live := eng.CountdownTick(token); timedOut || live {
		t.Fatalf("stale countdown token was consumed")
	}
}

func TestObserveInputCountsEachKeystrokeOnce(t *testing.T) {
	eng, _ := newRunningEngine(t, testCatalog("cat"), session.Options{Mode: model.ModeSequence})

	eng.ObserveInput("c")
	eng.ObserveInput("ca")
	eng.ObserveInput("ca") // repeated value, no new characters
	eng.ObserveInput("cat")
	board := eng.Board()
	if board.TotalKeystrokes != 3 || board.CorrectKeystrokes != 3 {
		t.Fatalf("keystrokes = %d/%d, want 3/3", board.CorrectKeystrokes, board.TotalKeystrokes)
	}

	// Backspace then a wrong character: only the new character counts.
	eng.ObserveInput("ca")
	eng.ObserveInput("cax")
	board = eng.Board()
	if board.TotalKeystrokes != 4 || board.CorrectKeystrokes != 3 {
		t.Fatalf("keystrokes = %d/%d, want 3/4", board.CorrectKeystrokes, board.TotalKeystrokes)
	}
}

func TestObserveInputResetsOnAdvance(t *testing.T) {
	ctx := context.Background()
	eng, _ := newRunningEngine(t, testCatalog("ab", "cd"), session.Options{Mode: model.ModeSequence})

	eng.ObserveInput("ab")
	if _, err := eng.Submit(ctx, "ab"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	eng.Advance()
	eng.ObserveInput("c")
	board := eng.Board()
	if board.TotalKeystrokes != 3 || board.CorrectKeystrokes != 3 {
		t.Fatalf("keystrokes = %d/%d, want 3/3 across words", board.CorrectKeystrokes, board.TotalKeystrokes)
	}
}

func TestObserveInputResetsAfterMiss(t *testing.T) {
	ctx := context.Background()
	eng, _ := newRunningEngine(t, testCatalog("cat"), session.Options{Mode: model.ModeSequence})

	for _, v := range []string{"x", "xx", "xxx", "xxxx", "xxxxx"} {
		eng.ObserveInput(v)
	}
	if _, err := eng.Submit(ctx, "xxxxx"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	// The typing box is cleared after the miss; retyping from scratch must
	// count every keystroke, including the first.
	for _, v := range []string{"c", "ca", "cat"} {
		eng.ObserveInput(v)
	}
	board := eng.Board()
	if board.TotalKeystrokes != 8 || board.CorrectKeystrokes != 3 {
		t.Fatalf("keystrokes = %d/%d, want 3/8", board.CorrectKeystrokes, board.TotalKeystrokes)
	}
}

func TestPreviousStopsAtFirstWord(t *testing.T) {
	eng, _ := newRunningEngine(t, testCatalog("alpha", "beta"), session.Options{Mode: model.ModeSequence})

	eng.Previous()
	if got := eng.Current().Word.Word; got != "alpha" {
		t.Fatalf("current = %q, want alpha", got)
	}
	eng.Advance()
	eng.Previous()
	if got := eng.Current().Word.Word; got != "alpha" {
		t.Fatalf("current after back = %q, want alpha", got)
	}
}

func TestSpeakerFiresOnCorrectOnly(t *testing.T) {
	ctx := context.Background()
	store := progress.New(kv.NewMemory(), progress.WithLogf(quietLogf))
	sess, err := session.Build(testCatalog("alpha"), model.DayStat{}, nil, session.Options{Mode: model.ModeSequence})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sp := &recordingSpeaker{}
	eng := NewEngine(store, sp, model.DefaultTuning())
	eng.Bind("day1", sess, 1, model.ModeSequence)
	eng.Start()

	if _, err := eng.Submit(ctx, "wrong"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := eng.Submit(ctx, "alpha"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(sp.words) != 1 || sp.words[0] != "alpha" {
		t.Fatalf("pronounced = %v, want [alpha]", sp.words)
	}
}

func TestElapsedAndMetrics(t *testing.T) {
	ctx := context.Background()
	eng, _ := newRunningEngine(t, testCatalog("hello"), session.Options{Mode: model.ModeSequence})

	base := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	eng.SetClock(func() time.Time { return base })
	eng.Start()
	eng.SetClock(func() time.Time { return base.Add(6 * time.Second) })
	eng.ObserveInput("hello")
	if _, err := eng.Submit(ctx, "hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	eng.TickElapsed()
	if got := eng.Board().ElapsedMs; got != 6000 {
		t.Fatalf("elapsedMs = %d, want 6000", got)
	}
	// 5 correct chars in 6s: one standard word in a tenth of a minute.
	if wpm := eng.WPM(); wpm < 9.9 || wpm > 10.1 {
		t.Fatalf("wpm = %f, want ~10", wpm)
	}
	if acc := eng.Accuracy(); acc != 1 {
		t.Fatalf("accuracy = %f, want 1", acc)
	}
}
