package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/threebody/internal/record"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds two record columns plotted against each other.
type PhasePortrait2D struct {
	XColumn, YColumn string
	Points           []Point
}

// PhasePortrait pairs two columns (by record.Columns name) of every record,
// e.g. "x1" against "vx1".
func PhasePortrait(recs []record.Record, xCol, yCol string) (*PhasePortrait2D, error) {
	xi, yi := record.ColumnIndex(xCol), record.ColumnIndex(yCol)
	if xi < 0 {
		return nil, fmt.Errorf("unknown column %q", xCol)
	}
	if yi < 0 {
		return nil, fmt.Errorf("unknown column %q", yCol)
	}

	portrait := &PhasePortrait2D{
		XColumn: xCol,
		YColumn: yCol,
		Points:  make([]Point, 0, len(recs)),
	}
	for _, r := range recs {
		f := r.Fields()
		portrait.Points = append(portrait.Points, Point{X: f[xi], Y: f[yi]})
	}
	return portrait, nil
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
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
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// PoincareSection collects (recordX, recordY) at every upward crossing of
// crossCol through threshold, linearly interpolated between the two
// bracketing records.
func PoincareSection(recs []record.Record, crossCol string, threshold float64, recordX, recordY string) ([]Point, error) {
	ci := record.ColumnIndex(crossCol)
	xi, yi := record.ColumnIndex(recordX), record.ColumnIndex(recordY)
	for _, c := range []struct {
		name string
		idx  int
	}{{crossCol, ci}, {recordX, xi}, {recordY, yi}} {
		if c.idx < 0 {
			return nil, fmt.Errorf("unknown column %q", c.name)
		}
	}

	points := make([]Point, 0)
	for i := 1; i < len(recs); i++ {
		prev, curr := recs[i-1].Fields(), recs[i].Fields()
		if prev[ci] < threshold && curr[ci] >= threshold {
			frac := (threshold - prev[ci]) / (curr[ci] - prev[ci])
			points = append(points, Point{
				X: prev[xi] + frac*(curr[xi]-prev[xi]),
				Y: prev[yi] + frac*(curr[yi]-prev[yi]),
			})
		}
	}
	return points, nil
}

// PoincareSectionToASCII converts section data to ASCII plot
func PoincareSectionToASCII(points []Point, width, height int) string {
	if len(points) == 0 {
		return "No crossings detected"
	}
	return PhasePortraitToASCII(&PhasePortrait2D{Points: points}, width, height)
}
