package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss/v2"
)

func TestPlace(t *testing.T) {
	base := "aaaaaaaa\nbbbbbbbb\ncccccccc"
	got := Place(base, "XY\nZW", 3, 1, 8)
	want := "aaaaaaaa\nbbbXYbbb\ncccZWccc"
	if got != want {
		t.Fatalf("Place =\n%s\nwant\n%s", got, want)
	}
}

func TestPlaceClampsToWidth(t *testing.T) {
	got := Place("abcdef", "XYZ", 5, 0, 6)
	if got != "abcXYZ" {
		t.Fatalf("Place = %q", got)
	}
}

func TestPlaceStripsBackgroundStyles(t *testing.T) {
	base := lipgloss.NewStyle().Bold(true).Render("abcdef")
	got := Place(base, "X", 0, 0, 6)
	if StripANSI(got) != "Xbcdef" {
		t.Fatalf("Place = %q", got)
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name      string
		placement Placement
		want      []string
	}{
		{
			name:      "centered",
			placement: Placement{Horizontal: lipgloss.Center, Vertical: lipgloss.Center},
			want:      []string{"......", "..##..", "......"},
		},
		{
			name:      "bottom left",
			placement: Placement{Vertical: lipgloss.Bottom},
			want:      []string{"......", "......", "##...."},
		},
		{
			name:      "right margin",
			placement: Placement{Horizontal: lipgloss.Right, MarginX: 1},
			want:      []string{"...##.", "......", "......"},
		},
	}
	bg := strings.Repeat("......\n", 2) + "......"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(Compose(bg, 6, 3, "##", tt.placement), "\n")
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("Compose = %q, want %q", got, tt.want)
			}
		})
	}
}
