package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Day", "Accuracy", "Correct"}
	rows := [][]string{
		{"Day 1", "97.5%", "12"},
		{"Day 10", "8.0%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Day    Accuracy Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Day 1     97.5%      12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Day 10     8.0%       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthCountsCJKCells(t *testing.T) {
	if got := displayWidth("사과"); got != 4 {
		t.Fatalf("expected CJK chars to be two cells each, got %d", got)
	}
	if got := displayWidth("apple"); got != 5 {
		t.Fatalf("expected ascii width 5, got %d", got)
	}
}

func TestPadCellWideRunes(t *testing.T) {
	padded := padCell("사과", 6, false)
	if displayWidth(padded) != 6 {
		t.Fatalf("padding must target display cells, got %q (%d)", padded, displayWidth(padded))
	}
}
