package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/theakshaypant/dayview/internal/grid"
)

// cell is one terminal cell. A zero rune marks the right half of a wide
// rune drawn in the cell before it.
type cell struct {
	r     rune
	style int
}

// canvas is a grid of styled cells addressed in the layout engine's
// coordinates, one unit per cell.
type canvas struct {
	width, height int
	cells         [][]cell
	styles        []lipgloss.Style
}

func newCanvas(width, height int, bg lipgloss.Style) *canvas {
	c := &canvas{
		width:  max(0, width),
		height: max(0, height),
		styles: []lipgloss.Style{bg},
	}
	c.cells = make([][]cell, c.height)
	for y := range c.cells {
		row := make([]cell, c.width)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) bounds() grid.Rect {
	return grid.Rect{Width: c.width, Height: c.height}
}

func (c *canvas) style(s lipgloss.Style) int {
	c.styles = append(c.styles, s)
	return len(c.styles) - 1
}

func (c *canvas) set(x, y int, r rune, style int) int {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return 1
	}
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 0
	}
	if w == 2 && x+1 >= c.width {
		r, w = ' ', 1
	}
	c.cells[y][x] = cell{r: r, style: style}
	if w == 2 {
		c.cells[y][x+1] = cell{style: style}
	}
	return w
}

// fill paints r clipped to the canvas.
func (c *canvas) fill(r grid.Rect, ch rune, s lipgloss.Style) {
	r = r.Intersect(c.bounds())
	if r.Empty() {
		return
	}
	id := c.style(s)
	for y := r.Y; y < r.Bottom(); y++ {
		for x := r.X; x < r.Right(); x++ {
			c.set(x, y, ch, id)
		}
	}
}

// text writes s at (x, y), truncated to width cells.
func (c *canvas) text(x, y int, s string, width int, st lipgloss.Style) {
	if width <= 0 {
		return
	}
	s = runewidth.Truncate(s, width, "…")
	id := c.style(st)
	for _, r := range s {
		x += c.set(x, y, r, id)
	}
}

// hline draws a horizontal line across r's top row.
func (c *canvas) hline(x, y, width int, ch rune, st lipgloss.Style) {
	c.fill(grid.Rect{X: x, Y: y, Width: width, Height: 1}, ch, st)
}

// box outlines r with a rounded border.
func (c *canvas) box(r grid.Rect, st lipgloss.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	b := lipgloss.RoundedBorder()
	id := c.style(st)
	top, bottom := r.Y, r.Bottom()-1
	left, right := r.X, r.Right()-1
	for x := left + 1; x < right; x++ {
		c.set(x, top, []rune(b.Top)[0], id)
		c.set(x, bottom, []rune(b.Bottom)[0], id)
	}
	for y := top + 1; y < bottom; y++ {
		c.set(left, y, []rune(b.Left)[0], id)
		c.set(right, y, []rune(b.Right)[0], id)
	}
	c.set(left, top, []rune(b.TopLeft)[0], id)
	c.set(right, top, []rune(b.TopRight)[0], id)
	c.set(left, bottom, []rune(b.BottomLeft)[0], id)
	c.set(right, bottom, []rune(b.BottomRight)[0], id)
}

// String renders the canvas, one styled run per change of style.
func (c *canvas) String() string {
	var out strings.Builder
	var run strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			out.WriteByte('\n')
		}
		cur := -1
		for _, cl := range row {
			if cl.r == 0 {
				continue
			}
			if cl.style != cur && run.Len() > 0 {
				out.WriteString(c.styles[cur].Render(run.String()))
				run.Reset()
			}
			cur = cl.style
			run.WriteRune(cl.r)
		}
		if run.Len() > 0 {
			out.WriteString(c.styles[cur].Render(run.String()))
			run.Reset()
		}
	}
	return out.String()
}
