package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/experiment"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/storage"
	"github.com/san-kum/threebody/internal/tui"
)

// loadScenario resolves the optional scenario argument, defaulting to the
// "default" preset.
func loadScenario(args []string) (*config.Config, error) {
	ref := "default"
	if len(args) > 0 {
		ref = args[0]
	}
	return experiment.Resolve(ref)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// runID returns the run named in args, or the latest run.
func runID(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 && args[0] != "latest" {
		return args[0], nil
	}
	return st.Latest()
}

// applyOverrides copies every flag the user set onto cfg.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("t-max") {
		cfg.TMax = tMax
	}
	if flags.Changed("G") {
		cfg.G = gravity
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("name") {
		cfg.Name = runName
	}
	if flags.Changed("filename") {
		cfg.Filename = filename
	}
	if flags.Changed("names") {
		cfg.BodyNames = bodyNames
	}

	for i := 0; i < physics.NumBodies; i++ {
		if flags.Changed(fmt.Sprintf("m%d", i+1)) {
			if len(cfg.Masses) != physics.NumBodies {
				cfg.Masses = make([]float64, physics.NumBodies)
			}
			cfg.Masses[i] = masses[i]
		}
		for k, c := range vectorComponents {
			if !flags.Changed(fmt.Sprintf("%s%d", c, i+1)) {
				continue
			}
			vs := &cfg.InitialPositions
			if k >= 3 {
				vs = &cfg.InitialVelocities
			}
			if len(*vs) != physics.NumBodies {
				*vs = [][]float64{make([]float64, 3), make([]float64, 3), make([]float64, 3)}
			}
			if len((*vs)[i]) != 3 {
				(*vs)[i] = make([]float64, 3)
			}
			(*vs)[i][k%3] = bodyVectors[i][k]
		}
	}
}

func runSimulation(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadScenario(args)
	if err != nil {
		return err
	}
	applyOverrides(cmd, cfg)

	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	var extra []record.Sink
	if datFile != "" {
		f, ferr := os.Create(datFile)
		if ferr != nil {
			return ferr
		}
		w := record.NewWriter(f)
		defer func() {
			if cerr := closeStream(w, f); cerr != nil && err == nil {
				err = fmt.Errorf("write %s: %w", datFile, cerr)
			}
		}()
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("write %s: %w", datFile, err)
		}
		extra = append(extra, w)
	}

	if live {
		renderer := tui.NewLiveRenderer(cfg.Name, exp.RunConfig().Steps(), frameRate)
		exp.Simulator().AddObserver(renderer)
		renderer.Start()
		defer renderer.Stop()
	}

	var sink record.Sink
	if len(extra) > 0 {
		sink = record.MultiSink(extra...)
	}

	fmt.Printf("running %s (%s, dt=%g, t_max=%g)...\n", cfg.Name, cfg.Integrator, cfg.Dt, cfg.TMax)
	start := time.Now()

	run, result, err := exp.RunStored(cmd.Context(), st, sink)
	if err != nil {
		if run != nil && errors.Is(err, dynamo.ErrContextCanceled) {
			fmt.Printf("interrupted; partial run kept as %s\n", run.ID)
		}
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", run.ID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	if result.Invalid != nil {
		fmt.Printf("warning: %v\n", result.Invalid)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6e\n", name, result.Metrics[name])
	}
	return nil
}

// closeStream flushes w and closes f, returning the first error.
func closeStream(w *record.Writer, f io.Closer) error {
	err := w.Flush()
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Printf("no runs found in %s\n", st.BaseDir())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tT_MAX\tDT\tINTEG\tRECORDS\tDRIFT\tDONE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%d\t%.2e\t%v\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.TMax,
			run.Dt,
			run.Integrator,
			run.Records,
			float64(run.EnergyDrift),
			run.Complete,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	id, err := runID(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMASSES\tG\tDT\tT_MAX\tBODIES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%v\t%g\t%g\t%g\t%s\n",
			name, cfg.Masses, cfg.G, cfg.Dt, cfg.TMax, strings.Join(cfg.Names(), ", "))
	}
	return w.Flush()
}
