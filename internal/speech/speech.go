// Package speech pronounces words through a system TTS command.
package speech

import (
	"os/exec"
)

// candidates are tried in order; the first one on PATH wins.
var candidates = []string{"say", "espeak-ng", "espeak"}

// Null is a Speaker that does nothing. Used when speech is disabled or no
// TTS command is installed.
type Null struct{}

// Pronounce is a no-op.
func (Null) Pronounce(string) {}

// Command speaks via an external TTS binary. Every call runs in its own
// goroutine; failures are logged and swallowed so pronunciation can never
// stall or fail a practice run.
type Command struct {
	path string
	logf func(format string, args ...any)
}

// NewCommand looks up a TTS binary on PATH. ok is false when none of the
// known commands are installed.
func NewCommand(logf func(format string, args ...any)) (*Command, bool) {
	for _, name := range candidates {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		return &Command{path: path, logf: logf}, true
	}
	return nil, false
}

// Pronounce speaks the word in the background.
func (c *Command) Pronounce(word string) {
	if word == "" {
		return
	}
	go func() {
		cmd := exec.Command(c.path, word)
		if err := cmd.Run(); err != nil && c.logf != nil {
			c.logf("speech: %v", err)
		}
	}()
}
