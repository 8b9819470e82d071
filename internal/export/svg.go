// Package export renders runs as standalone SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/droptower/internal/particles"
)

const (
	background = "#0a0a0a"
	wallColor  = "#00ffff"
	fillColor  = "#00ff00"
)

func header(sb *strings.Builder, width, height float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// SnapshotSVG draws the chamber and every particle at scale pixels per cm.
// The top wall is omitted when the chamber is open.
func SnapshotSVG(chamber particles.Chamber, ps []particles.Particle, scale float64) string {
	const margin = 10.0
	width := chamber.Width*scale + 2*margin
	height := chamber.Height*scale + 2*margin
	x0, y0 := margin, margin
	x1, y1 := margin+chamber.Width*scale, margin+chamber.Height*scale

	var sb strings.Builder
	header(&sb, width, height)

	path := fmt.Sprintf("M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f L%.1f,%.1f", x0, y0, x0, y1, x1, y1, x1, y0)
	if chamber.ClosedTop {
		path += " Z"
	}
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="2" d="%s"/>
<g fill="%s">
`, wallColor, path, fillColor))

	for _, p := range ps {
		cx := x0 + p.X*scale
		cy := y1 - p.Y*scale
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, p.Radius*scale))
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots ys against xs as a polyline scaled to fit the image.
func SeriesToSVG(xs, ys []float64, width, height int, strokeColor string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := 0; i < n; i++ {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i := 0; i < n; i++ {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
