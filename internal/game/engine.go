// Package game implements the answer-evaluating session state machine.
package game

import (
	"context"
	"time"

	"vocadrill/internal/model"
	"vocadrill/internal/progress"
	"vocadrill/internal/session"
	"vocadrill/internal/stats"
)

// State is the evaluator's lifecycle state.
type State int

const (
	// StateIdle means no run has started for the bound session.
	StateIdle State = iota
	// StateRunning accepts input and submissions.
	StateRunning
	// StateComplete means every session word was answered or advanced past.
	StateComplete
	// StateTimedOut means the countdown expired; an explicit Start is
	// required to run again.
	StateTimedOut
)

// Outcome classifies one submission.
type Outcome int

const (
	// OutcomeCorrect is an exact whole-word match.
	OutcomeCorrect Outcome = iota
	// OutcomeIncorrect is any other submitted value.
	OutcomeIncorrect
)

// Scoreboard holds the per-run counters. It is reset on Start and never
// persisted; only the DayStat aggregates reach the store.
type Scoreboard struct {
	Score             int
	Streak            int
	MaxStreak         int
	CorrectKeystrokes int
	TotalKeystrokes   int
	StartedAt         time.Time
	ElapsedMs         int64
}

// Speaker voices a word after a correct answer. Implementations must not
// block; failures are the implementation's problem, never the engine's.
type Speaker interface {
	Pronounce(word string)
}

// SubmitResult reports what a submission did.
type SubmitResult struct {
	Outcome Outcome
	// AdvanceToken arms the auto-advance for a correct answer: schedule
	// AutoAdvance(token) after Tuning.AdvanceDelay. Zero when not armed.
	AdvanceToken int
	// LastWord reports that the session has no word after the current one.
	LastWord bool
}

// Engine evaluates submissions for one bound session and writes DayStat
// mutations through the progress store. Timers live outside the engine;
// generation tokens guard against a stale timer firing after the session
// moved on.
type Engine struct {
	store   *progress.Store
	speaker Speaker
	tuning  model.Tuning
	now     func() time.Time

	dayID      string
	mode       model.Mode
	catalogLen int
	sess       *session.Session

	state State
	board Scoreboard

	lastInputLen   int
	advancePending bool

	advanceSeq   int
	countdownSeq int
	timerEnabled bool
	timeLeft     int
}

// NewEngine returns an engine writing through the given progress store.
// speaker may be nil.
func NewEngine(store *progress.Store, speaker Speaker, tuning model.Tuning) *Engine {
	return &Engine{
		store:   store,
		speaker: speaker,
		tuning:  tuning,
		now:     time.Now,
	}
}

// SetClock overrides the engine clock, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Bind attaches a freshly built session. Any pending timers from a previous
// session are invalidated synchronously.
func (e *Engine) Bind(dayID string, sess *session.Session, catalogLen int, mode model.Mode) {
	e.cancelTimers()
	e.dayID = dayID
	e.sess = sess
	e.catalogLen = catalogLen
	e.mode = mode
	e.state = StateIdle
	e.board = Scoreboard{}
	e.lastInputLen = 0
	e.advancePending = false
	e.timeLeft = e.tuning.CountdownSeconds
}

// cancelTimers invalidates every outstanding token so late callbacks no-op.
func (e *Engine) cancelTimers() {
	e.advanceSeq++
	e.countdownSeq++
}

// Stop freezes the engine without completing the session. Used on navigation
// away; all pending timers are cancelled synchronously.
func (e *Engine) Stop() {
	e.cancelTimers()
	if e.state == StateRunning {
		e.state = StateIdle
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Board returns a copy of the scoreboard.
func (e *Engine) Board() Scoreboard { return e.board }

// Session returns the bound session.
func (e *Engine) Session() *session.Session { return e.sess }

// Current returns the current word, or nil when no session is bound or the
// session is exhausted.
func (e *Engine) Current() *model.PracticeWord {
	if e.sess == nil {
		return nil
	}
	return e.sess.Current()
}

// Start transitions Idle/Complete/TimedOut to Running with a fresh
// scoreboard. It returns a countdown token when the timer option is enabled;
// the caller schedules CountdownTick(token) each second.
func (e *Engine) Start() (countdownToken int, timed bool) {
	if e.sess == nil || len(e.sess.Words) == 0 {
		return 0, false
	}
	e.cancelTimers()
	e.board = Scoreboard{StartedAt: e.now()}
	e.lastInputLen = 0
	e.advancePending = false
	e.state = StateRunning
	e.timeLeft = e.tuning.CountdownSeconds
	if e.timerEnabled {
		return e.countdownSeq, true
	}
	return 0, false
}

// TimerEnabled reports whether the countdown option is on.
func (e *Engine) TimerEnabled() bool { return e.timerEnabled }

// TimeLeft returns the remaining countdown seconds.
func (e *Engine) TimeLeft() int { return e.timeLeft }

// ToggleTimer flips the countdown option. Enabling mid-run arms a fresh
// budget immediately and returns its token.
func (e *Engine) ToggleTimer() (countdownToken int, armed bool) {
	e.timerEnabled = !e.timerEnabled
	e.countdownSeq++
	e.timeLeft = e.tuning.CountdownSeconds
	if e.timerEnabled && e.state == StateRunning {
		return e.countdownSeq, true
	}
	return 0, false
}

// CountdownTick consumes one countdown second. A stale token or a non-running
// state is a no-op. At zero the session freezes in StateTimedOut.
func (e *Engine) CountdownTick(token int) (timeLeft int, timedOut, live bool) {
	if token != e.countdownSeq || e.state != StateRunning || !e.timerEnabled {
		return e.timeLeft, false, false
	}
	e.timeLeft--
	if e.timeLeft <= 0 {
		e.timeLeft = 0
		e.finishClock()
		e.cancelTimers()
		e.state = StateTimedOut
		return 0, true, false
	}
	return e.timeLeft, false, true
}

// TickElapsed refreshes the elapsed-time counter while running.
func (e *Engine) TickElapsed() {
	if e.state != StateRunning || e.board.StartedAt.IsZero() {
		return
	}
	e.board.ElapsedMs = e.now().Sub(e.board.StartedAt).Milliseconds()
}

func (e *Engine) finishClock() {
	if !e.board.StartedAt.IsZero() {
		e.board.ElapsedMs = e.now().Sub(e.board.StartedAt).Milliseconds()
	}
}

// ObserveInput records character-level accuracy for the typing box value.
// Only characters beyond the previously observed length are counted, compared
// positionally against the target word, so the final keystroke of a word is
// counted exactly once. Deletions just shrink the observed length.
func (e *Engine) ObserveInput(value string) {
	if e.state != StateRunning {
		return
	}
	current := e.Current()
	if current == nil {
		return
	}
	target := []rune(current.Word.Word)
	input := []rune(value)
	if len(input) <= e.lastInputLen {
		e.lastInputLen = len(input)
		return
	}
	for i := e.lastInputLen; i < len(input); i++ {
		e.board.TotalKeystrokes++
		if i < len(target) && input[i] == target[i] {
			e.board.CorrectKeystrokes++
		}
	}
	e.lastInputLen = len(input)
}

// Submit evaluates an explicit submission against the current word. A wrong
// answer is expected input, not an error; Submit only fails on store errors.
func (e *Engine) Submit(ctx context.Context, typed string) (SubmitResult, error) {
	if e.state != StateRunning {
		return SubmitResult{Outcome: OutcomeIncorrect}, nil
	}
	current := e.Current()
	if current == nil {
		return SubmitResult{Outcome: OutcomeIncorrect}, nil
	}
	if e.advancePending {
		// The word was already answered; a repeat Enter before the
		// auto-advance fires must not score or persist again.
		return SubmitResult{Outcome: OutcomeCorrect}, nil
	}

	target := current.Word.Word
	lastWord := e.sess.Index+1 >= len(e.sess.Words)

	if typed != target {
		e.board.Streak = 0
		// The typing box clears on a miss; restart the keystroke baseline
		// so the retry's first character is counted.
		e.lastInputLen = 0
		checkpoint := e.checkpointOnWrong(ctx, current)
		if err := e.store.MarkAnswer(ctx, e.dayID, target, false, checkpoint); err != nil {
			return SubmitResult{Outcome: OutcomeIncorrect}, err
		}
		return SubmitResult{Outcome: OutcomeIncorrect, LastWord: lastWord}, nil
	}

	e.board.Score += e.tuning.ScoreBase + e.board.Streak*e.tuning.StreakBonus
	e.board.Streak++
	if e.board.Streak > e.board.MaxStreak {
		e.board.MaxStreak = e.board.Streak
	}
	checkpoint := e.checkpointOnCorrect(ctx, current)
	if err := e.store.MarkAnswer(ctx, e.dayID, target, true, checkpoint); err != nil {
		return SubmitResult{Outcome: OutcomeCorrect}, err
	}
	if e.speaker != nil {
		e.speaker.Pronounce(target)
	}

	e.advanceSeq++
	e.advancePending = true
	return SubmitResult{
		Outcome:      OutcomeCorrect,
		AdvanceToken: e.advanceSeq,
		LastWord:     lastWord,
	}, nil
}

// checkpointOnCorrect follows the progress rule: only non-review sequence
// sessions advance the resume checkpoint.
func (e *Engine) checkpointOnCorrect(ctx context.Context, current *model.PracticeWord) int {
	if !e.sess.Review && e.mode == model.ModeSequence {
		next := current.OrderIndex + 1
		if next > e.catalogLen {
			next = e.catalogLen
		}
		return next
	}
	return e.store.Get(ctx, e.dayID).LastIndex
}

func (e *Engine) checkpointOnWrong(ctx context.Context, current *model.PracticeWord) int {
	if !e.sess.Review && e.mode == model.ModeSequence {
		return current.OrderIndex
	}
	return e.store.Get(ctx, e.dayID).LastIndex
}

// AutoAdvance consumes a scheduled advance. A stale token (the learner moved
// on, or a new session started) is a no-op.
func (e *Engine) AutoAdvance(token int) (moved, completed bool) {
	if token != e.advanceSeq || e.state != StateRunning {
		return false, false
	}
	return true, e.Advance()
}

// Advance moves to the next word, or completes the session at the last one.
// There is no wrap-around in any mode; a finished review prompts resolution
// instead of looping.
func (e *Engine) Advance() (completed bool) {
	if e.state != StateRunning || e.sess == nil {
		return false
	}
	e.advanceSeq++
	e.lastInputLen = 0
	e.advancePending = false
	if e.sess.Index+1 >= len(e.sess.Words) {
		e.finishClock()
		e.cancelTimers()
		e.state = StateComplete
		return true
	}
	e.sess.Index++
	return false
}

// Previous moves back one word for browsing. No-op at the first word; the
// scoreboard and the store are untouched.
func (e *Engine) Previous() {
	if e.state != StateRunning || e.sess == nil || e.sess.Index == 0 {
		return
	}
	e.advanceSeq++
	e.lastInputLen = 0
	e.advancePending = false
	e.sess.Index--
}

// Accuracy returns correct/total keystrokes, 0 when nothing was typed.
func (e *Engine) Accuracy() float64 {
	_, acc := stats.TypingMetrics(e.board.CorrectKeystrokes, e.board.TotalKeystrokes, e.board.ElapsedMs)
	return acc
}

// WPM returns the standard five-chars-per-word rate, 0 for a zero elapsed.
func (e *Engine) WPM() float64 {
	wpm, _ := stats.TypingMetrics(e.board.CorrectKeystrokes, e.board.TotalKeystrokes, e.board.ElapsedMs)
	return wpm
}

// Summary freezes the scoreboard into a display record.
func (e *Engine) Summary() model.GameSummary {
	return model.GameSummary{
		Score:     e.board.Score,
		Accuracy:  e.Accuracy(),
		MaxStreak: e.board.MaxStreak,
	}
}
