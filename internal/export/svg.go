package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// Palette cycles through path colors when a Path has none.
var Palette = []string{"#00ff9c", "#ffb000", "#4fc3f7", "#ff5c8a", "#c792ea", "#f0f0f0"}

// Path is one body's track projected onto the reference plane.
type Path struct {
	Name   string
	Color  string
	Points [][2]float64
}

// OrbitSVG writes paths as an SVG with the attracting body at the origin.
// Both axes share one scale so ellipses keep their shape. Non-finite points
// break the path instead of ending it.
func OrbitSVG(w io.Writer, paths []Path, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export: invalid size %dx%d", width, height)
	}

	extent := 0.0
	for _, p := range paths {
		for _, pt := range p.Points {
			if finite(pt) {
				extent = math.Max(extent, math.Max(math.Abs(pt[0]), math.Abs(pt[1])))
			}
		}
	}
	if extent == 0 {
		extent = 1
	}
	// 10% margin on each side.
	scale := 0.45 * float64(min(width, height)) / extent
	cx, cy := float64(width)/2, float64(height)/2

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="#ffd54f"/>
`, width, height, width, height, cx, cy)

	for i, p := range paths {
		color := p.Color
		if color == "" {
			color = Palette[i%len(Palette)]
		}

		fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		pen := false
		for _, pt := range p.Points {
			if !finite(pt) {
				pen = false
				continue
			}
			x := cx + pt[0]*scale
			y := cy - pt[1]*scale
			cmd := "L"
			if !pen {
				cmd = "M"
				pen = true
			}
			fmt.Fprintf(bw, "%s%.1f,%.1f ", cmd, x, y)
		}
		bw.WriteString("\"/>\n")

		if p.Name != "" {
			fmt.Fprintf(bw, `<text x="10" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, 20+16*i, color, escape(p.Name))
		}
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func finite(pt [2]float64) bool {
	for _, v := range pt {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
