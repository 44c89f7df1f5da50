package components

import (
	"strings"
	"testing"
)

func TestProgressBarCells(t *testing.T) {
	tests := []struct {
		percent float64
		width   int
		want    int
	}{
		{0, 20, 0},
		{50, 20, 10},
		{100, 20, 20},
		{150, 20, 20},
		{-10, 20, 0},
	}
	for _, tt := range tests {
		p := NewProgressBar("", tt.percent, false, tt.width)
		if got := p.Cells(tt.width); got != tt.want {
			t.Errorf("Cells(%v%%, %d) = %d, want %d", tt.percent, tt.width, got, tt.want)
		}
	}
}

func TestProgressBarView(t *testing.T) {
	out := NewProgressBar("polity", 40, true, 40).View()
	if !strings.Contains(out, "polity") {
		t.Errorf("missing label: %q", out)
	}
	if !strings.Contains(out, "40%") {
		t.Errorf("missing percent: %q", out)
	}
}
