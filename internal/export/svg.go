package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/san-kum/ljmd/internal/dynamo"
	"github.com/san-kum/ljmd/internal/storage"
	"github.com/san-kum/ljmd/internal/viz"
)

const background = "#0a0a0a"

// Line is one named curve of a time-series plot.
type Line struct {
	Name   string
	Color  string
	Values []float64
}

// CanvasToSVG converts a Braille canvas to SVG, one circle per lit dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64, color string) string {
	if canvas == nil {
		return ""
	}

	dw, dh := canvas.DotSize()
	width := float64(dw) * scale
	height := float64(dh) * scale

	var sb strings.Builder
	writeHeader(&sb, width, height)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", color)

	r := scale * 0.4
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, r)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SnapshotSVG renders particle positions through cam, with the box outline.
func SnapshotSVG(pos dynamo.Vectors, box float64, cam *viz.Camera, cols, rows int, scale float64) string {
	c := viz.NewCanvas(cols, rows)
	viz.Render3D(c, viz.CreateCubeWireframe(2), cam)
	viz.RenderParticles(c, pos, box, cam)
	return CanvasToSVG(c, scale, string(viz.CurrentTheme.Primary))
}

// SeriesToSVG plots every line against times on shared axes. Lines shorter
// than times are drawn up to their own length.
func SeriesToSVG(times []float64, lines []Line, width, height int) string {
	if len(times) < 2 || len(lines) == 0 {
		return ""
	}

	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, l := range lines {
		for _, v := range l.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 0) {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	minX, maxX := times[0], times[len(times)-1]
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}

	w, h := float64(width), float64(height)

	var sb strings.Builder
	writeHeader(&sb, w, h)

	for i, l := range lines {
		n := len(l.Values)
		if n > len(times) {
			n = len(times)
		}
		if n < 2 {
			continue
		}

		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"", l.Color)
		for k := 0; k < n; k++ {
			x := (times[k] - minX) / rangeX * w
			y := h - (l.Values[k]-minY)/rangeY*h
			if k == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")

		fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
			16*(i+1), l.Color, l.Name)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// EnergyLines returns the kinetic, potential and total energy curves of a
// stored run.
func EnergyLines(s *storage.Series) []Line {
	return []Line{
		{Name: "kinetic", Color: "#ffcc00", Values: s.Kinetic},
		{Name: "potential", Color: "#00a8cc", Values: s.Potential},
		{Name: "total", Color: "#33ff99", Values: s.Total},
	}
}

// WriteSVG writes svg to path, or to w when path is "-".
func WriteSVG(w io.Writer, path, svg string) error {
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}
	if path == "-" {
		_, err := io.WriteString(w, svg)
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func writeHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
