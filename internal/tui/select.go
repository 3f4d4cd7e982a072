package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"vocadrill/internal/model"
)

func (m *Model) updateSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		if len(m.rows) == 0 {
			return m, nil
		}
		return m, m.startPractice(m.rows[m.cursor].day.ID, false)
	case tea.KeyRunes:
		switch string(keyMsg.Runes) {
		case "r":
			if len(m.rows) == 0 {
				return m, nil
			}
			row := m.rows[m.cursor]
			if len(row.stat.WrongSet) == 0 {
				return m, nil
			}
			m.dayID = row.day.ID
			m.dayLabel = row.day.Label
			m.screen = screenPractice
			return m, m.beginReview()
		case "m":
			if m.config.Mode == model.ModeSequence {
				m.config.Mode = model.ModeRandom
			} else {
				m.config.Mode = model.ModeSequence
			}
			return m, nil
		case "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
			return m, nil
		case "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) viewSelect() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("vocadrill"))
	b.WriteString("  ")
	b.WriteString(subtleStyle.Render("mode: " + string(m.config.Mode)))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("No word lists found. Add CSV files and a manifest.json to the words directory.\n")
		b.WriteString(subtleStyle.Render("\nesc: quit"))
		return b.String()
	}

	labelWidth := 0
	for _, row := range m.rows {
		if w := len(row.day.Label); w > labelWidth {
			labelWidth = w
		}
	}
	for i, row := range m.rows {
		cursor := " "
		if i == m.cursor {
			cursor = cursorStyle.Render(">")
		}
		line := fmt.Sprintf("%s %-*s %s %3d/%-3d", cursor, labelWidth, row.day.Label,
			progressBar(row.completed, row.total, 20), row.completed, row.total)
		if len(row.stat.CompletedDates) > 0 {
			line += goodStyle.Render(" done")
		}
		if n := len(row.stat.WrongSet); n > 0 {
			line += badStyle.Render(fmt.Sprintf(" %d to review", n))
		}
		if row.stat.ReviewCount > 0 {
			line += subtleStyle.Render(fmt.Sprintf(" (%d reviews)", row.stat.ReviewCount))
		}
		if row.lastWord != "" {
			line += subtleStyle.Render(" at " + row.lastWord)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(subtleStyle.Render("\n↑/↓: navigate | enter: practice | r: review wrong words | m: toggle mode | esc: quit"))
	return b.String()
}

func progressBar(done, total, width int) string {
	if total <= 0 {
		return strings.Repeat(barLeftStyle.String(), width)
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	return strings.Repeat(barDoneStyle.String(), filled) + strings.Repeat(barLeftStyle.String(), width-filled)
}
