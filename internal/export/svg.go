package export

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// SVGOptions controls TrajectoriesToSVG. Zero values take the defaults noted.
type SVGOptions struct {
	Width, Height int       // default 800x800
	Plane         string    // "xy" (default), "xz" or "yz"
	Names         []string  // legend labels, default "Body 1".."Body 3"
	Colors        [3]string // stroke colors, default orange, blue, gray
	Every         int       // plot every n-th record, default 1
}

var planes = map[string][2]int{"xy": {0, 1}, "xz": {0, 2}, "yz": {1, 2}}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Width <= 0 {
		o.Width = 800
	}
	if o.Height <= 0 {
		o.Height = 800
	}
	if o.Plane == "" {
		o.Plane = "xy"
	}
	if len(o.Names) != physics.NumBodies {
		o.Names = []string{"Body 1", "Body 2", "Body 3"}
	}
	if o.Colors == ([3]string{}) {
		o.Colors = [3]string{"orange", "#1e90ff", "gray"}
	}
	if o.Every <= 0 {
		o.Every = 1
	}
	return o
}

type point struct{ X, Y float64 }

// TrajectoriesToSVG draws the paths of the three bodies projected onto a
// coordinate plane, with equal scaling on both axes, a marker at each final
// position and a legend. Non-finite samples break the path.
func TrajectoriesToSVG(w io.Writer, recs []record.Record, opts SVGOptions) error {
	opts = opts.withDefaults()
	axes, ok := planes[opts.Plane]
	if !ok {
		return fmt.Errorf("unknown plane %q (use xy, xz or yz)", opts.Plane)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no records to draw")
	}

	var paths [physics.NumBodies][]point
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < len(recs); i += opts.Every {
		for b, p := range physics.Positions(recs[i].State) {
			c := [3]float64{p.X, p.Y, p.Z}
			pt := point{c[axes[0]], c[axes[1]]}
			paths[b] = append(paths[b], pt)
			if finite(pt) {
				minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
				minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
			}
		}
	}
	if math.IsInf(minX, 1) {
		return fmt.Errorf("no finite positions to draw")
	}

	// Equal aspect: pad the shorter range and then add a 10% margin.
	rangeX, rangeY := maxX-minX, maxY-minY
	span := math.Max(rangeX, rangeY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span *= 1.2
	minX, minY = cx-span/2, cy-span/2

	size := float64(min(opts.Width, opts.Height))
	offX := (float64(opts.Width) - size) / 2
	offY := (float64(opts.Height) - size) / 2
	toScreen := func(p point) (float64, float64) {
		x := offX + (p.X-minX)/span*size
		y := offY + size - (p.Y-minY)/span*size
		return x, y
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	for b, path := range paths {
		fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, opts.Colors[b])
		pen := false
		for _, p := range path {
			if !finite(p) {
				pen = false
				continue
			}
			x, y := toScreen(p)
			if pen {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " M%.1f,%.1f", x, y)
				pen = true
			}
		}
		bw.WriteString("\"/>\n")

		for i := len(path) - 1; i >= 0; i-- {
			if finite(path[i]) {
				x, y := toScreen(path[i])
				fmt.Fprintf(bw, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"5\" fill=\"%s\"/>\n", x, y, opts.Colors[b])
				break
			}
		}
	}

	for b, name := range opts.Names {
		y := 20 + 18*b
		fmt.Fprintf(bw, "<circle cx=\"16\" cy=\"%d\" r=\"5\" fill=\"%s\"/>\n", y-4, opts.Colors[b])
		fmt.Fprintf(bw, "<text x=\"28\" y=\"%d\" fill=\"#dddddd\" font-family=\"monospace\" font-size=\"13\">%s</text>\n", y, html.EscapeString(name))
	}
	fmt.Fprintf(bw, "<text x=\"%d\" y=\"%d\" fill=\"#888888\" font-family=\"monospace\" font-size=\"12\" text-anchor=\"end\">%s plane, t = %.5f</text>\n",
		opts.Width-10, opts.Height-10, opts.Plane, recs[len(recs)-1].Time)

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func finite(p point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
