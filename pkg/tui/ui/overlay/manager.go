// Package overlay draws boxes over already rendered terminal views.
package overlay

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// Placement controls overlay alignment and sizing. The zero value anchors
// the overlay to the top-left corner.
type Placement struct {
	Horizontal lipgloss.Position
	Vertical   lipgloss.Position
	MarginX    int
	MarginY    int
	Width      int
	Height     int
}

// Compose overlays the foreground view atop a background of width x height
// cells positioned by placement.
func Compose(background string, width, height int, foreground string, placement Placement) string {
	bg := normalize(background, height)
	if foreground == "" || width <= 0 || height <= 0 {
		return bg
	}
	fg := strings.Split(foreground, "\n")
	w := placement.Width
	if w <= 0 {
		w = lipgloss.Width(foreground)
	}
	h := placement.Height
	if h <= 0 {
		h = len(fg)
	}
	w, h = min(w, width), min(h, height)
	x, y := offsets(width, height, w, h, placement)
	if len(fg) > h {
		fg = fg[:h]
	}
	return Place(bg, strings.Join(fg, "\n"), x, y, width)
}

// Place draws box over base with its top-left corner at x, y. Background
// lines under the box lose their styling.
func Place(base, box string, x, y, width int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(box, "\n") {
		row := y + i
		if row < 0 || row >= len(baseLines) {
			continue
		}
		bw := lipgloss.Width(line)
		start := min(max(x, 0), max(width-bw, 0))
		plain := StripANSI(baseLines[row])
		left := runewidth.FillRight(runewidth.Truncate(plain, start, ""), start)
		right := ""
		if runewidth.StringWidth(plain) > start+bw {
			right = runewidth.TruncateLeft(plain, start+bw, "")
		}
		baseLines[row] = left + line + right
	}
	return strings.Join(baseLines, "\n")
}

func normalize(view string, height int) string {
	lines := strings.Split(view, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func offsets(width, height, w, h int, p Placement) (int, int) {
	x := p.MarginX
	switch p.Horizontal {
	case lipgloss.Right:
		x = width - w - p.MarginX
	case lipgloss.Center:
		x = (width - w) / 2
	}
	y := p.MarginY
	switch p.Vertical {
	case lipgloss.Bottom:
		y = height - h - p.MarginY
	case lipgloss.Center:
		y = (height - h) / 2
	}
	return min(max(x, 0), width-w), min(max(y, 0), height-h)
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;:]*[A-Za-z~]`)

// StripANSI removes SGR and cursor sequences from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
