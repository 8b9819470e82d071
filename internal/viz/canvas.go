package viz

import (
	"math"
	"strings"
)

// A braille cell holds 2x4 dots numbered
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// and pixelMap gives each dot's bit above U+2800.
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells. Pixel coordinates address the dots, so
// the drawable area is (Width*2) x (Height*4) with y growing downwards.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

// NewCanvas returns a blank canvas of w x h cells.
func NewCanvas(w, h int) *Canvas {
	cells := make([]rune, w*h)
	grid := make([][]rune, h)
	for i := range grid {
		grid[i] = cells[i*w : (i+1)*w]
	}
	c := &Canvas{Width: w, Height: h, Grid: grid}
	c.Clear()
	return c
}

// Pixels returns the drawable size in dots.
func (c *Canvas) Pixels() (w, h int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for _, row := range c.Grid {
		for j := range row {
			row[j] = brailleBlank
		}
	}
}

// HLine lights the dots from x0 to x1 inclusive on row y.
func (c *Canvas) HLine(x0, x1, y int) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		c.Set(x, y)
	}
}

// VLine lights the dots from y0 to y1 inclusive on column x.
func (c *Canvas) VLine(x, y0, y1 int) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		c.Set(x, y)
	}
}

// DrawDisc fills a disc of radius r dots around (cx, cy). Discs smaller
// than a dot still light their centre.
func (c *Canvas) DrawDisc(cx, cy int, r float64) {
	c.Set(cx, cy)
	ri := int(math.Ceil(r))
	r2 := r * r
	for dy := -ri; dy <= ri; dy++ {
		for dx := -ri; dx <= ri; dx++ {
			if float64(dx*dx+dy*dy) <= r2 {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	rows := make([]string, len(c.Grid))
	for i, row := range c.Grid {
		rows[i] = string(row)
	}
	return strings.Join(rows, "\n") + "\n"
}
