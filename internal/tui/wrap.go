package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// renderWordFeedback colors the target word against what is typed so far:
// matching characters light up, mismatches go red, the rest stays dim with
// the next expected character underlined.
func renderWordFeedback(target, input []rune) string {
	cursor := -1
	if len(input) < len(target) {
		cursor = len(input)
	}
	var b strings.Builder
	for i, r := range target {
		style := pendingStyle
		if i < len(input) {
			if input[i] == r {
				style = correctStyle
			} else {
				style = incorrectStyle
			}
		}
		if i == cursor {
			style = style.Underline(true)
		}
		b.WriteString(style.Render(string(r)))
	}
	// Overflow beyond the target is always wrong.
	for _, r := range input[min(len(input), len(target)):] {
		b.WriteString(incorrectStyle.Render(string(r)))
	}
	return b.String()
}

// wrapText breaks the text into display lines no wider than width, measured
// with runewidth so wide CJK meanings wrap correctly. Words longer than the
// width are split hard.
func wrapText(text string, width int) []string {
	if width <= 0 || text == "" {
		return []string{text}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	for _, word := range strings.Fields(text) {
		wordWidth := runewidth.StringWidth(word)
		spaceNeeded := 0
		if lineWidth > 0 {
			spaceNeeded = 1
		}
		if lineWidth+spaceNeeded+wordWidth <= width {
			if spaceNeeded > 0 {
				line.WriteByte(' ')
				lineWidth++
			}
			line.WriteString(word)
			lineWidth += wordWidth
			continue
		}
		if lineWidth > 0 {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		if wordWidth <= width {
			line.WriteString(word)
			lineWidth = wordWidth
			continue
		}
		for _, r := range word {
			rw := runewidth.RuneWidth(r)
			if lineWidth+rw > width && lineWidth > 0 {
				lines = append(lines, line.String())
				line.Reset()
				lineWidth = 0
			}
			line.WriteRune(r)
			lineWidth += rw
		}
	}
	if lineWidth > 0 {
		lines = append(lines, line.String())
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
