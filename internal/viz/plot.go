package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
)

// PlotOptions sizes a terminal plot. Zero values fall back to 80x12.
type PlotOptions struct {
	Width, Height int
}

func (o PlotOptions) opts(caption string, extra ...asciigraph.Option) []asciigraph.Option {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 12
	}
	return append([]asciigraph.Option{
		asciigraph.Width(w),
		asciigraph.Height(h),
		asciigraph.Caption(caption),
	}, extra...)
}

// PlotEnergy draws kinetic, potential and total energy.
func PlotEnergy(recs []record.Record, o PlotOptions) string {
	ke, pe, te := make([]float64, len(recs)), make([]float64, len(recs)), make([]float64, len(recs))
	for i, r := range recs {
		ke[i], pe[i], te[i] = r.Kinetic, r.Potential, r.Total
	}
	return plotMany([][]float64{ke, pe, te}, o.opts("energy vs time",
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green),
		asciigraph.SeriesLegends("E_kin", "E_pot", "E_tot"),
	))
}

// PlotEnergyError draws the relative energy error (E - E0)/|E0|.
func PlotEnergyError(recs []record.Record, o PlotOptions) string {
	if len(recs) == 0 {
		return ""
	}
	e0 := recs[0].Total
	errs := make([]float64, len(recs))
	for i, r := range recs {
		if e0 != 0 {
			errs[i] = (r.Total - e0) / math.Abs(e0)
		}
	}
	return plotMany([][]float64{errs}, o.opts("relative energy error"))
}

// PlotAngularMomentum draws the components of L and its magnitude.
func PlotAngularMomentum(recs []record.Record, o PlotOptions) string {
	lx, ly, lz, mag := make([]float64, len(recs)), make([]float64, len(recs)), make([]float64, len(recs)), make([]float64, len(recs))
	for i, r := range recs {
		l := r.AngularMomentum
		lx[i], ly[i], lz[i], mag[i] = l.X, l.Y, l.Z, r3.Norm(l)
	}
	return plotMany([][]float64{lx, ly, lz, mag}, o.opts("angular momentum vs time",
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green, asciigraph.Blue, asciigraph.Default),
		asciigraph.SeriesLegends("Lx", "Ly", "Lz", "|L|"),
	))
}

// PlotDistances draws the pairwise separations r12, r13 and r23.
func PlotDistances(recs []record.Record, names []string, o PlotOptions) string {
	series := [3][]float64{}
	for k := range series {
		series[k] = make([]float64, len(recs))
	}
	for i, r := range recs {
		d := physics.Separations(r.State)
		for k := range series {
			series[k][i] = d[k]
		}
	}

	legends := []string{"r12", "r13", "r23"}
	if len(names) == physics.NumBodies {
		legends = []string{
			names[0] + "-" + names[1],
			names[0] + "-" + names[2],
			names[1] + "-" + names[2],
		}
	}
	return plotMany(series[:], o.opts("distances between bodies",
		asciigraph.SeriesColors(asciigraph.Orange, asciigraph.Blue, asciigraph.Gray),
		asciigraph.SeriesLegends(legends...),
	))
}

// PlotSeries draws a single series, e.g. a power spectrum.
func PlotSeries(values []float64, caption string, o PlotOptions) string {
	return plotMany([][]float64{values}, o.opts(caption))
}

// plotMany drops non-finite samples, which asciigraph cannot scale, and
// returns "" when nothing plottable remains.
func plotMany(series [][]float64, opts []asciigraph.Option) string {
	clean := make([][]float64, 0, len(series))
	for _, s := range series {
		c := make([]float64, 0, len(s))
		for _, v := range s {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				c = append(c, v)
			}
		}
		if len(c) == 0 {
			return ""
		}
		clean = append(clean, c)
	}
	if len(clean) == 0 {
		return ""
	}
	return asciigraph.PlotMany(clean, opts...)
}
