// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vocadrill/internal/catalog"
	"vocadrill/internal/game"
	"vocadrill/internal/model"
	"vocadrill/internal/progress"
	"vocadrill/internal/review"
	"vocadrill/internal/session"
)

type screen int

const (
	screenSelect screen = iota
	screenPractice
)

type modal int

const (
	modalNone modal = iota
	modalDayCompleted
	modalReviewFinished
	modalPerfect
	modalTimedOut
	modalSummary
	modalNothingLeft
)

// advanceMsg fires the auto-advance scheduled after a correct answer. The
// token is checked by the engine so a stale callback cannot move the session.
type advanceMsg struct{ token int }

// countdownMsg consumes one countdown second for the carried token.
type countdownMsg struct{ token int }

// elapsedMsg refreshes the elapsed counter; seq guards against tickers left
// over from a previous run.
type elapsedMsg struct{ seq int }

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	subtleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	goodStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	badStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	barDoneStyle   = lipgloss.NewStyle().Background(lipgloss.Color("10")).SetString(" ")
	barLeftStyle   = lipgloss.NewStyle().Background(lipgloss.Color("8")).SetString(" ")
)

// dayRow is the precomputed selection-list entry for one Day.
type dayRow struct {
	day       model.DayDescriptor
	stat      model.DayStat
	completed int
	total     int
	lastWord  string
}

// Model implements the Bubble Tea practice UI.
type Model struct {
	config    model.Config
	loader    *catalog.Loader
	progress  *progress.Store
	completed *progress.CompletedStore
	position  *progress.PositionStore
	orch      *review.Orchestrator
	engine    *game.Engine

	width  int
	height int

	screen screen
	modal  modal

	// selection screen
	rows   []dayRow
	cursor int

	// practice screen
	input      textinput.Model
	dayID      string
	dayLabel   string
	inReview   bool
	lastWrong  string
	elapsedSeq int

	// last completion verdict, shown in the modals
	outcome review.Outcome
	summary model.GameSummary

	err error
}

// New constructs the practice UI. When cfg.DayID is set the model opens
// directly on that Day's practice screen.
func New(cfg model.Config, loader *catalog.Loader, progressStore *progress.Store, completedStore *progress.CompletedStore, positionStore *progress.PositionStore, engine *game.Engine) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()

	m := &Model{
		config:    cfg,
		loader:    loader,
		progress:  progressStore,
		completed: completedStore,
		position:  positionStore,
		orch:      review.New(progressStore, completedStore),
		engine:    engine,
		input:     ti,
		screen:    screenSelect,
	}
	m.reloadRows()
	if cfg.DayID != "" {
		m.dayID = cfg.DayID
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.dayID != "" {
		return tea.Batch(textinput.Blink, m.startPractice(m.dayID, m.config.Review))
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case error:
		m.err = msg
		return m, nil
	}

	switch m.screen {
	case screenSelect:
		return m.updateSelect(msg)
	default:
		return m.updatePractice(msg)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return badStyle.Render("error: " + m.err.Error())
	}
	switch m.screen {
	case screenSelect:
		return m.viewSelect()
	default:
		return m.viewPractice()
	}
}

// reloadRows rebuilds the selection list from the manifest and the stores.
// The catalog cache is dropped so word-list edits made outside the session
// show up without a restart.
func (m *Model) reloadRows() {
	ctx := context.Background()
	m.loader.InvalidateAll()
	days, err := m.loader.Manifest(ctx)
	if err != nil {
		m.err = err
		return
	}
	rows := make([]dayRow, 0, len(days))
	for _, d := range days {
		total := d.Total
		if total == 0 {
			if words, err := m.loader.LoadWords(ctx, d.ID); err == nil {
				total = len(words)
			}
		}
		rows = append(rows, dayRow{
			day:       d,
			stat:      m.progress.Get(ctx, d.ID),
			completed: m.completed.Count(ctx, d.ID),
			total:     total,
			lastWord:  m.position.LastWord(ctx, d.ID),
		})
	}
	m.rows = rows
	if m.cursor >= len(rows) {
		m.cursor = 0
	}
}

// startPractice builds and binds a session for the Day, then starts the run.
func (m *Model) startPractice(dayID string, asReview bool) tea.Cmd {
	ctx := context.Background()
	day, err := m.loader.Day(ctx, dayID)
	if err != nil {
		m.err = err
		return nil
	}
	words, err := m.loader.LoadWords(ctx, dayID)
	if err != nil {
		m.err = err
		return nil
	}

	target := m.config.Word
	if pending, ok := m.position.TakePendingTarget(ctx); ok && pending.DayID == dayID {
		target = pending.Word
	}

	stat := m.progress.Get(ctx, dayID)
	completedSet := m.completed.Set(ctx, dayID)
	sess, err := session.Build(words, stat, completedSet, session.Options{
		Mode:       m.config.Mode,
		Review:     asReview,
		TargetWord: target,
	})
	if err == session.ErrNothingToPractice || err == session.ErrNoReviewWords {
		m.screen = screenPractice
		m.modal = modalNothingLeft
		m.dayID = dayID
		m.dayLabel = day.Label
		return nil
	}
	if err != nil {
		m.err = err
		return nil
	}

	m.dayID = dayID
	m.dayLabel = day.Label
	m.inReview = asReview
	m.lastWrong = ""
	m.screen = screenPractice
	m.modal = modalNone
	m.input.SetValue("")
	m.input.Focus()

	m.engine.Bind(dayID, sess, len(words), m.config.Mode)
	m.rememberCurrent()
	return m.startRun()
}

// startRun starts the bound engine and schedules its tickers.
func (m *Model) startRun() tea.Cmd {
	token, timed := m.engine.Start()
	m.elapsedSeq++
	cmds := []tea.Cmd{m.elapsedTick(m.elapsedSeq)}
	if timed {
		cmds = append(cmds, m.countdownTick(token))
	}
	return tea.Batch(cmds...)
}

func (m *Model) elapsedTick(seq int) tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return elapsedMsg{seq: seq}
	})
}

func (m *Model) countdownTick(token int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownMsg{token: token}
	})
}

func (m *Model) advanceAfterDelay(token int) tea.Cmd {
	return tea.Tick(m.config.Tuning.AdvanceDelay, func(time.Time) tea.Msg {
		return advanceMsg{token: token}
	})
}

// leavePractice cancels the run and returns to the selection list.
func (m *Model) leavePractice() {
	m.engine.Stop()
	m.elapsedSeq++
	m.modal = modalNone
	m.screen = screenSelect
	m.inReview = false
	m.reloadRows()
}

// onSessionComplete routes a finished session through the orchestrator.
func (m *Model) onSessionComplete() {
	ctx := context.Background()
	m.summary = m.engine.Summary()
	out, err := m.orch.OnSessionComplete(ctx, m.dayID, m.inReview, m.config.Mode)
	if err != nil {
		m.err = err
		return
	}
	m.outcome = out
	switch out.Type {
	case review.OutcomeDayCompleted:
		if len(out.WrongWords) == 0 {
			m.modal = modalPerfect
		} else {
			m.modal = modalDayCompleted
		}
	case review.OutcomeReviewFinished:
		m.modal = modalReviewFinished
	default:
		m.modal = modalSummary
	}
}

// beginReview starts a review run over the Day's wrong set.
func (m *Model) beginReview() tea.Cmd {
	ctx := context.Background()
	words, err := m.loader.LoadWords(ctx, m.dayID)
	if err != nil {
		m.err = err
		return nil
	}
	sess, perfect, err := m.orch.BeginReview(ctx, m.dayID, words)
	if err != nil {
		m.err = err
		return nil
	}
	if perfect {
		m.modal = modalPerfect
		return nil
	}
	m.inReview = true
	m.modal = modalNone
	m.lastWrong = ""
	m.input.SetValue("")
	m.engine.Bind(m.dayID, sess, len(words), model.ModeSequence)
	return m.startRun()
}

// finalizeReview resolves a finished review cycle and returns to selection.
func (m *Model) finalizeReview(keepWrongSet bool) {
	if err := m.orch.FinalizeReview(context.Background(), m.dayID, keepWrongSet); err != nil {
		m.err = err
		return
	}
	m.leavePractice()
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
