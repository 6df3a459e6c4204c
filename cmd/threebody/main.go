package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/viz"
)

var (
	dataDir string
	verbose bool
	logger  = slog.Default()

	// run overrides
	dt          float64
	tMax        float64
	gravity     float64
	integrator  string
	runName     string
	filename    string
	bodyNames   []string
	masses      [3]float64
	bodyVectors [3][6]float64
	live        bool
	frameRate   int
	datFile     string

	// inspection
	every        int
	animateEvery int
	plotKind     string
	plotWidth    int
	plotHeight   int
	xColumn      string
	yColumn      string
	section      string
	sectionAt    float64
	pair         string
	lyapunov     bool
	lyapTime     float64
	trail        int
	intervalMS   int
	theme        string
	outFile      string
	plane        string

	// studies
	integratorList []string
	refine         int
	parallel       int
	dtList         []float64
	benchTMax      float64
	sweepParam     string
	sweepFrom      float64
	sweepTo        float64
	sweepPoints    int
	trials         int
	perturbation   float64
	radius         float64
	seed           int64
	searchRanges   []string
	searchMetric   string
	maximize       bool
)

var vectorComponents = []string{"x", "y", "z", "vx", "vy", "vz"}

func main() {
	rootCmd := &cobra.Command{
		Use:          "threebody",
		Short:        "gravitational three-body simulator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
		// Default to the interactive menu when no command given
		RunE: runMenu,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "data", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation (preset name or config file) and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", 0.001, "timestep")
	runCmd.Flags().Float64Var(&tMax, "t-max", 10.0, "simulated time")
	runCmd.Flags().Float64Var(&gravity, "G", 0, "gravitational constant")
	runCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	runCmd.Flags().StringVar(&runName, "name", "", "run name")
	runCmd.Flags().StringVar(&filename, "filename", "", "base name of the run directory")
	runCmd.Flags().StringSliceVar(&bodyNames, "names", nil, "three body names")
	for i := range masses {
		runCmd.Flags().Float64Var(&masses[i], fmt.Sprintf("m%d", i+1), 1.0, fmt.Sprintf("mass of body %d", i+1))
		for k, c := range vectorComponents {
			runCmd.Flags().Float64Var(&bodyVectors[i][k], fmt.Sprintf("%s%d", c, i+1), 0, fmt.Sprintf("initial %s of body %d", c, i+1))
		}
	}
	runCmd.Flags().BoolVar(&live, "live", false, "draw the run in the terminal while it integrates")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")
	runCmd.Flags().StringVar(&datFile, "dat", "", "also write the record stream to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy, angular momentum and distances",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotKind, "kind", "all", "energy, error, momentum, distances or all")
	plotCmd.Flags().IntVar(&every, "every", 1, "plot every n-th record")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait or Poincare section of two record columns",
		Args:  cobra.MaximumNArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xColumn, "x", "x1", "column for the x axis")
	phaseCmd.Flags().StringVar(&yColumn, "y", "vx1", "column for the y axis")
	phaseCmd.Flags().StringVar(&section, "section", "", "plot a Poincare section where this column crosses --at")
	phaseCmd.Flags().Float64Var(&sectionAt, "at", 0, "section threshold")
	phaseCmd.Flags().IntVar(&every, "every", 1, "use every n-th record")

	animateCmd := &cobra.Command{
		Use:   "animate [run_id]",
		Short: "play back a run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  animateRun,
	}
	animateCmd.Flags().IntVar(&animateEvery, "every", 5, "show every n-th record")
	animateCmd.Flags().IntVar(&trail, "trail", 100, "trail length in frames")
	animateCmd.Flags().IntVar(&intervalMS, "interval", 50, "frame interval in milliseconds")
	animateCmd.Flags().StringVar(&theme, "theme", "solar", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	animateCmd.Flags().StringSliceVar(&bodyNames, "names", nil, "three body names")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "spectrum of a pairwise distance and chaos estimate",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&pair, "pair", "r12", "distance to analyze: r12, r13 or r23")
	analyzeCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest Lyapunov exponent")
	analyzeCmd.Flags().Float64Var(&lyapTime, "lyapunov-time", 0, "integration time for the estimate (default t_max)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the trajectories as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane: xy, xz or yz")
	exportSVGCmd.Flags().IntVar(&every, "every", 1, "draw every n-th record")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scenario]",
		Short: "compare integrators, or step sizes with --refine",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().StringSliceVar(&integratorList, "integrators", []string{"euler", "verlet", "leapfrog", "rk4"}, "integrators to compare")
	compareCmd.Flags().IntVar(&refine, "refine", 0, "instead compare this many successively halved step sizes")
	compareCmd.Flags().Float64Var(&dt, "dt", 0, "timestep (default from scenario)")
	compareCmd.Flags().Float64Var(&tMax, "t-max", 0, "simulated time (default from scenario)")
	compareCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	batchCmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "run and store every scenario of a batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default from file, then GOMAXPROCS)")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "measure integration speed",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	benchCmd.Flags().Float64SliceVar(&dtList, "dts", []float64{0.01, 0.001, 0.0001}, "step sizes")
	benchCmd.Flags().Float64Var(&benchTMax, "t-max", 1.0, "simulated time per step size")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "run a scenario across values of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	sweepCmd.Flags().StringVar(&sweepParam, "param", "m3", "parameter: m1, m2, m3, G, dt or t_max")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1.5, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "count how many randomly perturbed runs stay bounded",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.01, "uniform perturbation of positions and velocities")
	monteCarloCmd.Flags().Float64Var(&radius, "radius", 0, "escape radius (default 10x the initial extent)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	monteCarloCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (default GOMAXPROCS)")

	searchCmd := &cobra.Command{
		Use:   "search [scenario]",
		Short: "grid search parameters for the best value of a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  gridSearch,
	}
	searchCmd.Flags().StringArrayVar(&searchRanges, "range", nil, "parameter range name=min:max:n (repeatable)")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "energy_drift", "metric to optimize")
	searchCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")

	menuCmd := &cobra.Command{
		Use:   "menu",
		Short: "pick a preset or stored run to play back",
		RunE:  runMenu,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, phaseCmd, animateCmd, analyzeCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, compareCmd, batchCmd, benchCmd,
		sweepCmd, monteCarloCmd, searchCmd, menuCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
