// Package catalog loads the Day manifest and per-Day word lists.
package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vocadrill/internal/model"
	"vocadrill/internal/progress"
)

// Loader reads the manifest and Day CSV files from a words directory, merging
// learner-added custom words after the catalog rows. Loaded Days are cached
// until explicitly invalidated.
type Loader struct {
	dir    string
	custom *progress.CustomStore

	mu       sync.Mutex
	manifest []model.DayDescriptor
	days     map[string][]model.Word
}

// NewLoader returns a loader rooted at dir. custom may be nil when learner
// words are not wanted (offline tooling, tests).
func NewLoader(dir string, custom *progress.CustomStore) *Loader {
	return &Loader{
		dir:    dir,
		custom: custom,
		days:   map[string][]model.Word{},
	}
}

// Manifest returns the Day descriptors, loading and caching them on first use.
func (l *Loader) Manifest(ctx context.Context) ([]model.DayDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.manifest != nil {
		return l.manifest, nil
	}
	path := filepath.Join(l.dir, "manifest.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, manifestLoadError(path, err)
	}
	var payload struct {
		Days []model.DayDescriptor `json:"days"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	days := make([]model.DayDescriptor, 0, len(payload.Days))
	for _, day := range payload.Days {
		if day.ID == "" || day.CSV == "" {
			continue
		}
		if day.Label == "" {
			day.Label = day.ID
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("manifest %s lists no days", path)
	}
	l.manifest = days
	return days, nil
}

// Day returns the descriptor for a Day id.
func (l *Loader) Day(ctx context.Context, dayID string) (model.DayDescriptor, error) {
	manifest, err := l.Manifest(ctx)
	if err != nil {
		return model.DayDescriptor{}, err
	}
	for _, day := range manifest {
		if day.ID == dayID {
			return day, nil
		}
	}
	return model.DayDescriptor{}, fmt.Errorf("unknown day id: %s", dayID)
}

// LoadWords returns the Day's full ordered catalog as practice words: the CSV
// rows followed by the Day's custom words, with OrderIndex assigned over the
// merged canonical order.
func (l *Loader) LoadWords(ctx context.Context, dayID string) ([]model.PracticeWord, error) {
	day, err := l.Day(ctx, dayID)
	if err != nil {
		return nil, err
	}
	base, err := l.loadDayCSV(day)
	if err != nil {
		return nil, err
	}
	merged := make([]model.Word, 0, len(base))
	merged = append(merged, base...)
	if l.custom != nil {
		merged = append(merged, l.custom.List(ctx, dayID)...)
	}
	out := make([]model.PracticeWord, 0, len(merged))
	for _, w := range merged {
		w.Word = strings.TrimSpace(w.Word)
		if w.Word == "" {
			continue
		}
		out = append(out, model.PracticeWord{
			Word:       w,
			DayID:      dayID,
			OrderIndex: len(out),
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("day %s has no usable words", dayID)
	}
	return out, nil
}

func (l *Loader) loadDayCSV(day model.DayDescriptor) ([]model.Word, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.days[day.ID]; ok {
		return cached, nil
	}
	path := filepath.Join(l.dir, day.CSV)
	file, err := os.Open(path)
	if err != nil {
		return nil, wordListLoadError(day.ID, path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()
	words, err := parseWordCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	l.days[day.ID] = words
	return words, nil
}

// Invalidate drops the cached word list for one Day.
func (l *Loader) Invalidate(dayID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.days, dayID)
}

// InvalidateAll drops every cached word list and the manifest.
func (l *Loader) InvalidateAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.manifest = nil
	l.days = map[string][]model.Word{}
}

// parseWordCSV reads a header-mapped word CSV. Column order is free; only the
// word column is mandatory per row.
func parseWordCSV(r io.Reader) ([]model.Word, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("word list is empty")
	}
	if err != nil {
		return nil, err
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["word"]; !ok {
		return nil, fmt.Errorf("word list header has no word column")
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var words []model.Word
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		word := field(record, "word")
		if word == "" {
			continue
		}
		words = append(words, model.Word{
			Word:          word,
			Meaning:       field(record, "meaning"),
			Pronunciation: field(record, "pronunciation"),
			Syllables:     field(record, "syllables"),
			PartOfSpeech:  field(record, "partOfSpeech"),
			Example:       field(record, "example"),
		})
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list contained no usable rows")
	}
	return words, nil
}

func manifestLoadError(path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load day manifest: %v", err),
		fmt.Sprintf("expected manifest at: %s", path),
		"Place a manifest.json and day CSV files in that directory.",
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func wordListLoadError(dayID, path string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load word list: %v", err),
		fmt.Sprintf("expected word list at: %s", path),
		fmt.Sprintf("day %q is listed in the manifest but its CSV is missing", dayID),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}
