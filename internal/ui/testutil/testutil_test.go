package testutil

import "testing"

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no ansi codes", "hello world", "hello world"},
		{"with color codes", "\x1b[31mred\x1b[0m text", "red text"},
		{"with multiple codes", "\x1b[1;32mbold green\x1b[0m", "bold green"},
		{"empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.input); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMeasureWidth(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"abc", 3},
		{"\x1b[1mabc\x1b[0m", 3},
		{"坂本", 4},
		{"", 0},
	}
	for _, tt := range tests {
		if got := MeasureWidth(tt.input); got != tt.want {
			t.Errorf("MeasureWidth(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFindLine(t *testing.T) {
	output := "first line\n\x1b[1msecond\x1b[0m line\nthird"

	if got := FindLine(output, "second"); got != "second line" {
		t.Errorf("FindLine() = %q, want stripped line", got)
	}
	if got := FindLine(output, "missing"); got != "" {
		t.Errorf("FindLine() = %q, want empty", got)
	}
	if !ContainsLine(output, "third") {
		t.Error("ContainsLine() = false, want true")
	}
}

func TestCountLines(t *testing.T) {
	if got := CountLines("a\n\n  \nb\n"); got != 2 {
		t.Errorf("CountLines() = %d, want 2", got)
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\nb\n\n  \n")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("SplitLines() = %q, want [a b]", got)
	}
}
