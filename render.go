package spots

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	refreshStyle = lipgloss.NewStyle().Faint(true)
)

func units(v float64) int {
	return int(math.Round(v))
}

// Render draws the part of the composed surface that is inside the
// composer's viewport, one text line per unit of height. Components laid
// out before a registry change are laid out again first.
func Render(ctl *Controller) string {
	if ctl.stale() {
		ctl.Refresh(nil)
	}
	comp := ctl.Composer()
	w, h := units(comp.Bounds().Width), units(comp.Bounds().Height)
	if h <= 0 {
		return ""
	}
	top := int(math.Floor(comp.ContentOffset()))
	rows := make([]string, h)

	for _, e := range ctl.entries {
		fr := e.region.Frame()
		if units(fr.MaxY()) <= top || units(fr.Y) >= top+h {
			continue
		}
		block := renderComponent(e.comp, e.cells, ctl.engine.HeaderHeight(e.comp), e.region.OffsetX())
		start := units(fr.Y)
		for j, line := range strings.Split(block, "\n") {
			if y := start + j - top; y >= 0 && y < h {
				rows[y] = line
			}
		}
	}

	if top < 0 {
		msg := "↓ pull to refresh"
		if float64(-top) >= ctl.cfg.Scroll.RefreshThreshold {
			msg = "↻ refreshing"
		}
		rows[0] = refreshStyle.Render(runewidth.Truncate(msg, max(w, 1), ""))
	}
	return strings.Join(rows, "\n")
}

// renderComponent draws a laid out component as a block of exactly
// Size.Height lines. Horizontal components are clipped to the component
// width starting at offsetX.
func renderComponent(c Component, cs []Cell, header, offsetX float64) string {
	w, h := units(c.Size.Width), units(c.Size.Height)
	if h <= 0 {
		return ""
	}
	var blocks []string
	if hh := units(header); hh > 0 {
		title := runewidth.Truncate(c.Title, max(w, 1), "…")
		blocks = append(blocks, box(headerStyle.Render(title), w, hh))
	}

	if c.Axis() == Horizontal {
		parts := make([]string, 0, len(cs))
		for i, cell := range cs {
			parts = append(parts, renderCell(cell, c.Items[i]))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
		blocks = append(blocks, clipColumns(row, units(offsetX), w))
	} else {
		cols := c.Columns()
		for start := 0; start < len(cs); start += cols {
			end := min(start+cols, len(cs))
			parts := make([]string, 0, end-start)
			for i := start; i < end; i++ {
				parts = append(parts, renderCell(cs[i], c.Items[i]))
			}
			blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
		}
	}
	return box(lipgloss.JoinVertical(lipgloss.Left, blocks...), w, h)
}

func renderCell(cell Cell, item Item) string {
	fw, fh := units(cell.Frame.Width), units(cell.Frame.Height)
	text := item.Title
	if r, ok := cell.View.(Renderer); ok {
		text = r.Render(item, fw)
	}
	return box(text, fw, fh)
}

// box truncates s to w columns and h lines, then pads it to exactly that.
func box(s string, w, h int) string {
	if w > 0 {
		s = lipgloss.NewStyle().MaxWidth(w).Render(s)
	}
	return lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(s)
}

func clipColumns(s string, left, width int) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = ansi.Cut(l, left, left+width)
	}
	return strings.Join(lines, "\n")
}
