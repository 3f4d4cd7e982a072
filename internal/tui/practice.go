package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"vocadrill/internal/game"
)

func (m *Model) updatePractice(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case elapsedMsg:
		if msg.seq != m.elapsedSeq {
			return m, nil
		}
		m.engine.TickElapsed()
		if m.engine.State() != game.StateRunning {
			return m, nil
		}
		return m, m.elapsedTick(msg.seq)

	case countdownMsg:
		_, timedOut, live := m.engine.CountdownTick(msg.token)
		if timedOut {
			m.summary = m.engine.Summary()
			m.modal = modalTimedOut
			return m, nil
		}
		if live {
			return m, m.countdownTick(msg.token)
		}
		return m, nil

	case advanceMsg:
		moved, completed := m.engine.AutoAdvance(msg.token)
		if !moved {
			return m, nil
		}
		m.input.SetValue("")
		m.lastWrong = ""
		m.rememberCurrent()
		if completed {
			m.onSessionComplete()
		}
		return m, nil

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		switch msg.Type {
		case tea.KeyEsc:
			m.leavePractice()
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyCtrlN:
			if m.engine.Advance() {
				m.onSessionComplete()
			}
			m.input.SetValue("")
			m.lastWrong = ""
			m.rememberCurrent()
			return m, nil
		case tea.KeyCtrlP:
			m.engine.Previous()
			m.input.SetValue("")
			m.lastWrong = ""
			m.rememberCurrent()
			return m, nil
		case tea.KeyCtrlT:
			token, armed := m.engine.ToggleTimer()
			if armed {
				return m, m.countdownTick(token)
			}
			return m, nil
		case tea.KeyCtrlO:
			return m.toggleMastered()
		}
	}

	old := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != old {
		m.engine.ObserveInput(v)
	}
	return m, cmd
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	res, err := m.engine.Submit(context.Background(), m.input.Value())
	if err != nil {
		logErrf("failed to record answer: %v\n", err)
	}
	if res.Outcome == game.OutcomeCorrect {
		m.lastWrong = ""
		if res.AdvanceToken != 0 {
			return m, m.advanceAfterDelay(res.AdvanceToken)
		}
		return m, nil
	}
	m.lastWrong = m.input.Value()
	m.input.SetValue("")
	return m, nil
}

// toggleMastered flips the current word's completed flag; a newly mastered
// word is skipped immediately.
func (m *Model) toggleMastered() (tea.Model, tea.Cmd) {
	current := m.engine.Current()
	if current == nil {
		return m, nil
	}
	nowMastered, err := m.completed.Toggle(context.Background(), m.dayID, current.Word.Word)
	if err != nil {
		logErrf("failed to toggle mastered flag: %v\n", err)
		return m, nil
	}
	if nowMastered {
		if m.engine.Advance() {
			m.onSessionComplete()
		}
		m.input.SetValue("")
		m.lastWrong = ""
		m.rememberCurrent()
	}
	return m, nil
}

func (m *Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalDayCompleted:
		switch {
		case msg.Type == tea.KeyEnter || msg.String() == "r":
			return m, m.beginReview()
		case msg.Type == tea.KeyEsc || msg.String() == "d":
			m.leavePractice()
		}
	case modalReviewFinished:
		switch msg.String() {
		case "c":
			m.finalizeReview(false)
		case "k":
			m.finalizeReview(true)
		}
	case modalPerfect, modalSummary, modalNothingLeft:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			m.leavePractice()
		}
	case modalTimedOut:
		switch msg.Type {
		case tea.KeyEnter:
			m.modal = modalNone
			m.input.SetValue("")
			m.lastWrong = ""
			return m, m.startRun()
		case tea.KeyEsc:
			m.leavePractice()
		}
	}
	return m, nil
}

// rememberCurrent records the word now on screen as the Day's resume word.
func (m *Model) rememberCurrent() {
	if current := m.engine.Current(); current != nil {
		m.position.SetLastWord(context.Background(), m.dayID, current.Word.Word)
	}
}

func (m *Model) viewPractice() string {
	if m.modal != modalNone {
		return m.viewModal()
	}
	current := m.engine.Current()
	sess := m.engine.Session()
	if current == nil || sess == nil {
		return ""
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	var b strings.Builder
	title := m.dayLabel
	if m.inReview {
		title += " (review)"
	}
	b.WriteString(headerStyle.Render("vocadrill"))
	b.WriteString("  ")
	b.WriteString(accentStyle.Render(title))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  [%d/%d]", sess.Index+1, len(sess.Words))))
	b.WriteString("\n\n")

	b.WriteString("  ")
	b.WriteString(renderWordFeedback([]rune(current.Word.Word), []rune(m.input.Value())))
	b.WriteString("\n\n")

	for _, line := range wrapText(current.Word.Meaning, contentWidth) {
		b.WriteString("  " + line + "\n")
	}
	if current.Word.Pronunciation != "" {
		b.WriteString(subtleStyle.Render("  "+current.Word.Pronunciation) + "\n")
	}
	if current.Word.Syllables != "" {
		b.WriteString(subtleStyle.Render("  "+current.Word.Syllables) + "\n")
	}
	if current.Word.PartOfSpeech != "" {
		b.WriteString(subtleStyle.Render("  "+current.Word.PartOfSpeech) + "\n")
	}
	if current.Word.Example != "" {
		b.WriteString("\n")
		for _, line := range wrapText(current.Word.Example, contentWidth) {
			b.WriteString(subtleStyle.Render("  "+line) + "\n")
		}
	}

	b.WriteString("\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.lastWrong != "" {
		b.WriteString(incorrectStyle.Render("  ✗ "+m.lastWrong) + "\n")
	}

	b.WriteString("\n")
	footer := m.renderFooter()
	if m.height > 3 {
		return b.String() + lipgloss.Place(width, 1, lipgloss.Left, lipgloss.Bottom, footer)
	}
	return b.String() + footer
}

func (m *Model) renderFooter() string {
	board := m.engine.Board()
	segments := []string{
		fmt.Sprintf("Score %d", board.Score),
		fmt.Sprintf("Streak %d", board.Streak),
		fmt.Sprintf("Acc %.0f%%", m.engine.Accuracy()*100),
		fmt.Sprintf("%.1f WPM", m.engine.WPM()),
		formatElapsed(board.ElapsedMs),
	}
	if m.engine.TimerEnabled() {
		segments = append(segments, fmt.Sprintf("⏱ %ds", m.engine.TimeLeft()))
	}
	return footerStyle.Render("  " + strings.Join(segments, "  ·  "))
}

func formatElapsed(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (m *Model) viewModal() string {
	var b strings.Builder
	switch m.modal {
	case modalDayCompleted:
		b.WriteString(headerStyle.Render("Day complete"))
		b.WriteString("\n\n")
		b.WriteString(m.renderSummary())
		b.WriteString(fmt.Sprintf("\n%d word(s) to review: %s\n",
			len(m.outcome.WrongWords), strings.Join(m.outcome.WrongWords, ", ")))
		b.WriteString(subtleStyle.Render("\nenter/r: review them now | esc/d: done"))
	case modalReviewFinished:
		b.WriteString(headerStyle.Render("Review complete"))
		b.WriteString("\n\n")
		if len(m.outcome.WrongWords) == 0 {
			b.WriteString(goodStyle.Render("Every word cleared.") + "\n")
		} else {
			b.WriteString(fmt.Sprintf("Still wrong: %s\n", strings.Join(m.outcome.WrongWords, ", ")))
		}
		b.WriteString(subtleStyle.Render("\nc: clear wrong set and restart fresh | k: keep it for another pass"))
	case modalPerfect:
		b.WriteString(headerStyle.Render("Perfect"))
		b.WriteString("\n\n")
		b.WriteString(goodStyle.Render("No wrong words. Nothing to review.") + "\n")
		b.WriteString(m.renderSummary())
		b.WriteString(subtleStyle.Render("\nenter: back to day list"))
	case modalTimedOut:
		b.WriteString(headerStyle.Render("Time's up"))
		b.WriteString("\n\n")
		b.WriteString(m.renderSummary())
		b.WriteString(subtleStyle.Render("\nenter: try again | esc: back to day list"))
	case modalSummary:
		b.WriteString(headerStyle.Render("Session complete"))
		b.WriteString("\n\n")
		b.WriteString(m.renderSummary())
		b.WriteString(subtleStyle.Render("\nenter: back to day list"))
	case modalNothingLeft:
		b.WriteString(headerStyle.Render(m.dayLabel))
		b.WriteString("\n\n")
		b.WriteString("Nothing left to practice: every word is mastered or the wrong set is empty.\n")
		b.WriteString(subtleStyle.Render("\nenter: back to day list"))
	}
	return b.String()
}

func (m *Model) renderSummary() string {
	return fmt.Sprintf("Score %d  ·  Max streak %d  ·  Accuracy %.0f%%\n",
		m.summary.Score, m.summary.MaxStreak, m.summary.Accuracy*100)
}
