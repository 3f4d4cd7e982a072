package stats

import (
	"os"

	"golang.org/x/term"
)

const terminalWidthBackup = 80

// TerminalWidth returns the stdout width, with an 80-column fallback for
// pipes and failed lookups.
func TerminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
