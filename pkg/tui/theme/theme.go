package theme

import (
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	Grid   GridTheme
	Modal  ModalTheme
}

// FooterTheme groups styles used by the bottom status/search bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
	Prompt lipgloss.Style
	Page   lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame       lipgloss.Style
	FocusFrame  lipgloss.Style
	Title       lipgloss.Style
	Body        lipgloss.Style
	Item        lipgloss.Style
	CurrentItem lipgloss.Style
}

// GridTheme styles the data grid.
type GridTheme struct {
	Header       lipgloss.Style
	HeaderSorted lipgloss.Style
	Cell         lipgloss.Style
	Null         lipgloss.Style
	Focused      lipgloss.Style
	Selected     lipgloss.Style
	Editing      lipgloss.Style
	Match        lipgloss.Style
	CurrentMatch lipgloss.Style
	AddRow       lipgloss.Style
	AddRowFocus  lipgloss.Style
	Empty        lipgloss.Style
	Popover      lipgloss.Style
	Menu         lipgloss.Style
}

// ModalTheme styles centered modal overlays (e.g., help).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// Palette holds the base colours a theme is derived from.
type Palette struct {
	Background string
	Foreground string
	Accent     string
	Highlight  string
	Muted      string
	Danger     string
}

var (
	dark = Palette{
		Background: "#1E1E2E",
		Foreground: "#CDD6F4",
		Accent:     "#89B4FA",
		Highlight:  "#F9E2AF",
		Muted:      "#6C7086",
		Danger:     "#F38BA8",
	}
	light = Palette{
		Background: "#EFF1F5",
		Foreground: "#4C4F69",
		Accent:     "#1E66F5",
		Highlight:  "#DF8E1D",
		Muted:      "#8C8FA1",
		Danger:     "#D20F39",
	}
)

// Detect picks the palette matching the terminal background. It queries the
// terminal, so call it before the program takes over stdin.
func Detect() Theme {
	if termenv.HasDarkBackground() {
		return FromPalette(dark)
	}
	return FromPalette(light)
}

// Default returns the built-in dark theme.
func Default() Theme {
	return FromPalette(dark)
}

// FromPalette derives every style from p. Selection and match backgrounds
// are blends of the accent colours into the background.
func FromPalette(p Palette) Theme {
	fg := lipgloss.Color(p.Foreground)
	accent := lipgloss.Color(p.Accent)
	muted := lipgloss.Color(p.Muted)

	selected := lipgloss.Color(Blend(p.Accent, p.Background, 0.75))
	focused := lipgloss.Color(Blend(p.Accent, p.Background, 0.45))
	match := lipgloss.Color(Blend(p.Highlight, p.Background, 0.7))
	current := lipgloss.Color(p.Highlight)

	cell := lipgloss.NewStyle().Foreground(fg)
	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(muted),
			Status: lipgloss.NewStyle().Foreground(muted),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)).Bold(true),
			Prompt: lipgloss.NewStyle().Foreground(accent).Bold(true),
			Page:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(muted),
			FocusFrame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accent),
			Title:       lipgloss.NewStyle().Bold(true).Foreground(accent),
			Body:        lipgloss.NewStyle().Foreground(fg),
			Item:        lipgloss.NewStyle().Foreground(fg),
			CurrentItem: lipgloss.NewStyle().Foreground(accent).Bold(true),
		},
		Grid: GridTheme{
			Header:       lipgloss.NewStyle().Bold(true).Foreground(fg).Underline(true),
			HeaderSorted: lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true),
			Cell:         cell,
			Null:         lipgloss.NewStyle().Foreground(muted).Italic(true),
			Focused:      cell.Background(focused).Bold(true),
			Selected:     cell.Background(selected),
			Editing:      lipgloss.NewStyle().Reverse(true),
			Match:        cell.Background(match),
			CurrentMatch: lipgloss.NewStyle().Background(current).Foreground(lipgloss.Color(p.Background)).Bold(true),
			AddRow:       lipgloss.NewStyle().Foreground(muted),
			AddRowFocus:  lipgloss.NewStyle().Foreground(accent).Bold(true),
			Empty:        lipgloss.NewStyle().Foreground(muted).Italic(true),
			Popover: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accent).
				Padding(0, 1),
			Menu: lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(muted),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
	}
}

// Blend mixes hex colour a into b in Lab space; t = 0 is a, t = 1 is b.
// Unparseable input returns a unchanged.
func Blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}
