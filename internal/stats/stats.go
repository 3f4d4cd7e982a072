// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"
)

const sparkChars = " .:-=+*#%@"

// TypingMetrics computes WPM and keystroke accuracy for a run. Accuracy is
// correct/total keystrokes (0 with no keystrokes); WPM uses the standard
// five-characters-per-word convention and is 0 for a zero duration.
func TypingMetrics(correct, total int, durationMs int64) (wpm, accuracy float64) {
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	if minutes <= 0 {
		return 0, accuracy
	}
	wpm = (float64(correct) / 5.0) / minutes
	return wpm, accuracy
}

// AnswerAccuracy computes lifetime answer accuracy from DayStat counters.
func AnswerAccuracy(correct, wrong int) float64 {
	total := correct + wrong
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
