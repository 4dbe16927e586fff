package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Digit", "Accuracy", "Timeouts"}
	rows := [][]string{
		{"7", "97.50%", "12"},
		{"0", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Digit Accuracy Timeouts" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "7       97.50%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "0        8.00%        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableRowWiderThanHeaders(t *testing.T) {
	lines := formatTable([]string{"Digit"}, [][]string{{"7", "extra"}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[1] != "7     extra" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}
