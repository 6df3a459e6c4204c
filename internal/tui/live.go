package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
	trailLen    = 40
)

var glyphs = [physics.NumBodies]rune{'1', '2', '3'}

type cell struct{ x, y int }

// LiveRenderer draws the xy plane of a running simulation in the terminal.
// It implements sim.Observer and redraws at most frameRate times a second.
type LiveRenderer struct {
	title      string
	totalSteps int
	frameRate  int
	out        io.Writer
	lastFrame  time.Time
	canvas     [][]rune
	trails     [physics.NumBodies][]cell
	scale      float64
	e0         float64
	frames     int
}

// NewLiveRenderer renders to stdout. totalSteps is used for the progress
// readout; frameRate <= 0 redraws on every step.
func NewLiveRenderer(title string, totalSteps, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		title:      title,
		totalSteps: totalSteps,
		frameRate:  frameRate,
		out:        os.Stdout,
		canvas:     canvas,
	}
}

// SetOutput redirects frames to w.
func (r *LiveRenderer) SetOutput(w io.Writer) { r.out = w }

// Frames reports how many frames have been drawn.
func (r *LiveRenderer) Frames() int { return r.frames }

func (r *LiveRenderer) OnStep(step int, rec record.Record) {
	positions := physics.Positions(rec.State)
	if step == 0 || r.scale == 0 {
		r.reset(rec)
	}

	// Trails are sampled every step so they stay smooth at low frame rates.
	for i, p := range positions {
		c, ok := r.project(p.X, p.Y)
		if !ok {
			continue
		}
		r.trails[i] = append(r.trails[i], c)
		if len(r.trails[i]) > trailLen {
			r.trails[i] = r.trails[i][1:]
		}
	}

	if r.frameRate > 0 && step != 0 && step != r.totalSteps-1 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
	}
	r.lastFrame = time.Now()

	r.clear()
	r.drawBodies(positions)
	r.render(step, rec)
}

func (r *LiveRenderer) reset(rec record.Record) {
	extent := 0.0
	for _, p := range physics.Positions(rec.State) {
		extent = math.Max(extent, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if extent == 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		extent = 1
	}
	// leave room for the bodies to wander to twice their initial extent
	r.scale = float64(height/2-1) / (2 * extent)
	r.e0 = rec.Total
	for i := range r.trails {
		r.trails[i] = r.trails[i][:0]
	}
}

// project maps xy to a canvas cell; terminal cells are about twice as tall
// as they are wide, hence the doubled horizontal scale.
func (r *LiveRenderer) project(x, y float64) (cell, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return cell{}, false
	}
	c := cell{
		x: width/2 + int(math.Round(x*r.scale*2)),
		y: height/2 - int(math.Round(y*r.scale)),
	}
	return c, c.x >= 0 && c.x < width && c.y >= 0 && c.y < height
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func (r *LiveRenderer) drawBodies(positions [physics.NumBodies]r3.Vec) {
	for i := range r.trails {
		for j, pt := range r.trails[i] {
			if j < len(r.trails[i])/2 {
				r.set(pt.x, pt.y, '.')
			} else {
				r.set(pt.x, pt.y, 'o')
			}
		}
	}

	var cells [physics.NumBodies]cell
	var visible [physics.NumBodies]bool
	for i, p := range positions {
		cells[i], visible[i] = r.project(p.X, p.Y)
	}
	// thin triangle between the bodies, drawn under them
	for i := 0; i < physics.NumBodies; i++ {
		j := (i + 1) % physics.NumBodies
		if visible[i] && visible[j] {
			r.line(cells[i].x, cells[i].y, cells[j].x, cells[j].y, '·')
		}
	}
	r.set(width/2, height/2, '+')
	for i, c := range cells {
		if visible[i] {
			r.set(c.x, c.y, glyphs[i])
		}
	}
}

func (r *LiveRenderer) render(step int, rec record.Record) {
	var b strings.Builder
	b.WriteString(clearScreen)
	progress := ""
	if r.totalSteps > 0 {
		progress = fmt.Sprintf("  %5.1f%%", 100*float64(step+1)/float64(r.totalSteps))
	}
	fmt.Fprintf(&b, "  %s  t=%.5f%s\n", r.title, rec.Time, progress)
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	drift := 0.0
	if r.e0 != 0 {
		drift = math.Abs(rec.Total-r.e0) / math.Abs(r.e0)
	}
	sep := physics.Separations(rec.State)
	fmt.Fprintf(&b, "  E=%.5e  dE/E0=%.2e  r12=%.3e r13=%.3e r23=%.3e\n", rec.Total, drift, sep[0], sep[1], sep[2])

	fmt.Fprint(r.out, b.String())
	r.frames++
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
