package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCompose(t *testing.T) {
	base := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbbbbbbbb",
		"cccccccccc",
	}, "\n")
	top := strings.Join([]string{
		"",
		"   XYZ    ",
		"          ",
	}, "\n")

	got := Compose(base, top, 10)

	want := strings.Join([]string{
		"aaaaaaaaaa",
		"bbbXYZbbbb",
		"cccccccccc",
	}, "\n")
	if got != want {
		t.Errorf("Compose() =\n%s\nwant\n%s", got, want)
	}
}

func TestCompose_PadsShortBaseLines(t *testing.T) {
	got := Compose("ab", "    Z", 6)
	if want := "ab  Z "; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestCompose_InnerSpacesReplaceBase(t *testing.T) {
	got := Compose("0123456789", " [a  b] ", 10)
	if want := "0[a  b]789"; got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestCompose_StyledPopup(t *testing.T) {
	box := lipgloss.NewStyle().Bold(true).Render("HI")
	got := Compose("..........", "    "+box, 10)
	if w := lipgloss.Width(got); w != 10 {
		t.Errorf("width = %d, want 10", w)
	}
	if !strings.Contains(got, "HI") {
		t.Errorf("popup missing: %q", got)
	}
}

func TestCompose_TallerTopIsClipped(t *testing.T) {
	got := Compose("x", "a\nb\nc", 1)
	if got != "a" {
		t.Errorf("Compose() = %q, want %q", got, "a")
	}
}
