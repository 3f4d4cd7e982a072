// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"
	"time"

	"vocadrill/internal/model"
)

// DayReport pairs a Day descriptor with its progress for rendering.
type DayReport struct {
	Day      model.DayDescriptor
	Stat     model.DayStat
	Words    int // merged catalog size, or the declared total when not loaded
	Mastered int
}

// RenderDayTable prints one row per Day.
func RenderDayTable(w io.Writer, reports []DayReport) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No days found.")
		return err
	}
	headers := []string{"Day", "Words", "Mastered", "Correct", "Wrong", "Accuracy", "Done", "Reviews", "To review"}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.Day.Label,
			fmt.Sprintf("%d", r.Words),
			fmt.Sprintf("%d", r.Mastered),
			fmt.Sprintf("%d", r.Stat.Correct),
			fmt.Sprintf("%d", r.Stat.Wrong),
			fmt.Sprintf("%.1f%%", AnswerAccuracy(r.Stat.Correct, r.Stat.Wrong)*100),
			fmt.Sprintf("%d", len(r.Stat.CompletedDates)),
			fmt.Sprintf("%d", r.Stat.ReviewCount),
			fmt.Sprintf("%d", len(r.Stat.WrongSet)),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true, 8: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDayDetail prints the wrong set and completion history for one Day.
func RenderDayDetail(w io.Writer, r DayReport) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", r.Day.Label, r.Day.ID); err != nil {
		return err
	}
	acc := AnswerAccuracy(r.Stat.Correct, r.Stat.Wrong)
	if _, err := fmt.Fprintf(w, "Answers: %d correct, %d wrong (%.1f%%)\n",
		r.Stat.Correct, r.Stat.Wrong, acc*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Resume checkpoint: %d of %d\n", r.Stat.LastIndex, r.Words); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Review cycles: %d\n", r.Stat.ReviewCount); err != nil {
		return err
	}
	if len(r.Stat.WrongSet) == 0 {
		if _, err := fmt.Fprintln(w, "Words to review: none"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "Words to review (%d):\n", len(r.Stat.WrongSet)); err != nil {
			return err
		}
		for _, word := range r.Stat.WrongSet {
			if _, err := fmt.Fprintf(w, "  %s\n", word); err != nil {
				return err
			}
		}
	}
	if len(r.Stat.CompletedDates) == 0 {
		_, err := fmt.Fprintln(w, "Completed: never")
		return err
	}
	dates := append([]string(nil), r.Stat.CompletedDates...)
	sort.Strings(dates)
	if _, err := fmt.Fprintf(w, "Completed on %d date(s), last %s\n",
		len(dates), dates[len(dates)-1]); err != nil {
		return err
	}
	return nil
}

// ActivityCounts buckets Day completions into the trailing `days` calendar
// days ending today. Index 0 is the oldest day.
func ActivityCounts(reports []DayReport, days int, today time.Time) []float64 {
	if days <= 0 {
		return nil
	}
	counts := make([]float64, days)
	start := today.AddDate(0, 0, -(days - 1))
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for _, r := range reports {
		for _, date := range r.Stat.CompletedDates {
			t, err := time.Parse("2006-01-02", date)
			if err != nil {
				continue
			}
			offset := int(t.Sub(startDay).Hours() / 24)
			if offset >= 0 && offset < days {
				counts[offset]++
			}
		}
	}
	return counts
}

// RenderActivity prints a sparkline of completions over the trailing window,
// resized to fit the given terminal width.
func RenderActivity(w io.Writer, reports []DayReport, window int, totalWidth int, today time.Time) error {
	counts := ActivityCounts(reports, window, today)
	if len(counts) == 0 {
		return nil
	}
	label := fmt.Sprintf("Completions, last %d days: ", window)
	width := totalWidth - displayWidth(label)
	if width < 1 {
		width = len(counts)
	}
	if len(counts) > width {
		counts = counts[len(counts)-width:]
	}
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if _, err := fmt.Fprintf(w, "%s%s (%d total)\n", label, Sparkline(counts), int(total)); err != nil {
		return err
	}
	return nil
}
