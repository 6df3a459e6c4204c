package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/analysis"
	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/experiment"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/storage"
	"github.com/san-kum/threebody/internal/viz"
)

// loadRun reads the metadata and every n-th record of the run in args.
func loadRun(args []string, n int) (*storage.Store, *storage.RunMetadata, []record.Record, error) {
	st := storage.New(dataDir)
	id, err := runID(st, args)
	if err != nil {
		return nil, nil, nil, err
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, nil, err
	}
	recs, err := st.LoadRecords(id, n)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(recs) == 0 {
		return nil, nil, nil, fmt.Errorf("run %s has no records", id)
	}
	return st, meta, recs, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, meta, recs, err := loadRun(args, every)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(recs))

	o := viz.PlotOptions{Width: plotWidth, Height: plotHeight}
	plots := map[string]func() string{
		"energy":    func() string { return viz.PlotEnergy(recs, o) },
		"error":     func() string { return viz.PlotEnergyError(recs, o) },
		"momentum":  func() string { return viz.PlotAngularMomentum(recs, o) },
		"distances": func() string { return viz.PlotDistances(recs, meta.BodyNames, o) },
	}

	kinds := []string{plotKind}
	if plotKind == "all" {
		kinds = []string{"energy", "error", "momentum", "distances"}
	}
	for _, k := range kinds {
		plot, ok := plots[k]
		if !ok {
			return fmt.Errorf("unknown plot kind %q (energy, error, momentum, distances or all)", k)
		}
		fmt.Println(plot())
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	_, meta, recs, err := loadRun(args, every)
	if err != nil {
		return err
	}

	if section != "" {
		points, err := analysis.PoincareSection(recs, section, sectionAt, xColumn, yColumn)
		if err != nil {
			return err
		}
		fmt.Printf("poincare section: %s\n", meta.ID)
		fmt.Printf("%s = %g, plotting %s vs %s (%d crossings)\n\n", section, sectionAt, yColumn, xColumn, len(points))
		fmt.Println(analysis.PoincareSectionToASCII(points, 70, 20))
		return nil
	}

	portrait, err := analysis.PhasePortrait(recs, xColumn, yColumn)
	if err != nil {
		return err
	}
	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", xColumn, yColumn)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))
	return nil
}

// checkTheme rejects theme names the player does not know.
func checkTheme(name string) error {
	for _, t := range viz.ThemeNames() {
		if t == name {
			return nil
		}
	}
	return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(viz.ThemeNames(), ", "))
}

func animateRun(cmd *cobra.Command, args []string) error {
	if err := checkTheme(theme); err != nil {
		return err
	}
	_, meta, recs, err := loadRun(args, animateEvery)
	if err != nil {
		return err
	}

	names := meta.BodyNames
	if len(bodyNames) > 0 {
		names = bodyNames
	}
	return viz.Play(recs, viz.PlayerOptions{
		Title:    meta.ID,
		Names:    names,
		Trail:    trail,
		Interval: time.Duration(intervalMS) * time.Millisecond,
		Theme:    theme,
		GIFPath:  meta.ID + ".gif",
	})
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st, meta, recs, err := loadRun(args, 1)
	if err != nil {
		return err
	}

	series, err := analysis.SeparationSeries(recs, pair)
	if err != nil {
		return err
	}
	interval := analysis.SampleInterval(recs)
	spec := analysis.PowerSpectrum(series, interval)

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("distance: %s, samples: %d\n\n", pair, len(series))

	// the low end of the spectrum holds the orbital periods
	n := len(spec.Power) / 4
	if n < 2 {
		n = len(spec.Power)
	}
	if n > 1 {
		fmt.Println(viz.PlotSeries(spec.Power[1:n], "power spectrum ("+pair+")", viz.PlotOptions{Height: 15}))
		fmt.Println()
	}

	if f := spec.DominantFrequency(); f > 0 {
		fmt.Printf("dominant frequency: %.5e\n", f)
		fmt.Printf("period: %.5e\n", spec.DominantPeriod())
	} else {
		fmt.Println("no dominant frequency")
	}

	if !lyapunov {
		return nil
	}

	cfg, err := st.LoadConfig(meta.ID)
	if err != nil {
		return err
	}
	lambda, err := estimateLyapunov(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("largest lyapunov exponent: %.5e", lambda)
	if lambda > 0 {
		fmt.Printf("  (e-folding time %.5e)", 1/lambda)
	}
	fmt.Println()
	return nil
}

// estimateLyapunov reintegrates the stored initial conditions next to a
// copy perturbed by 1e-8 of the system's length scale.
func estimateLyapunov(cfg *config.Config) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	sys, err := cfg.System()
	if err != nil {
		return 0, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return 0, err
	}

	x0 := sys.State()
	scale := 0.0
	for _, v := range x0[:9] {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		scale = 1
	}

	duration := cfg.TMax
	if lyapTime > 0 {
		duration = lyapTime
	}
	return analysis.LyapunovExponent(sys, integ, x0, cfg.Dt, duration, 1e-8*scale), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// everySink keeps every n-th record in memory.
type everySink struct {
	n    int
	seen int
	recs []record.Record
}

func (s *everySink) Write(r record.Record) error {
	if s.seen%s.n == 0 {
		s.recs = append(s.recs, r)
	}
	s.seen++
	return nil
}

func runMenu(cmd *cobra.Command, args []string) error {
	var items []viz.MenuItem
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		items = append(items, viz.MenuItem{
			Name:        "preset:" + name,
			Description: fmt.Sprintf("%s, t_max=%g", strings.Join(cfg.Names(), "/"), cfg.TMax),
		})
	}

	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		items = append(items, viz.MenuItem{
			Name:        r.ID,
			Description: fmt.Sprintf("%s, %d records", r.Timestamp.Format("2006-01-02 15:04"), r.Records),
		})
	}

	load := func(name string) ([]record.Record, viz.PlayerOptions, error) {
		if preset, ok := strings.CutPrefix(name, "preset:"); ok {
			return simulatePreset(cmd, preset)
		}
		meta, err := st.Load(name)
		if err != nil {
			return nil, viz.PlayerOptions{}, err
		}
		n := max(1, meta.Records/maxFrames)
		recs, err := st.LoadRecords(name, n)
		return recs, viz.PlayerOptions{Title: name, Names: meta.BodyNames}, err
	}

	return viz.RunMenu("three-body", items, load)
}

const maxFrames = 5000

// simulatePreset integrates a preset in memory for playback.
func simulatePreset(cmd *cobra.Command, name string) ([]record.Record, viz.PlayerOptions, error) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, viz.PlayerOptions{}, fmt.Errorf("%w: %s", experiment.ErrUnknownScenario, name)
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return nil, viz.PlayerOptions{}, err
	}

	sink := &everySink{n: max(1, exp.RunConfig().Steps()/maxFrames)}
	if _, err := exp.Run(cmd.Context(), sink); err != nil {
		return nil, viz.PlayerOptions{}, err
	}
	return sink.recs, viz.PlayerOptions{Title: name, Names: cfg.Names()}, nil
}
