package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/automation"
	"github.com/san-kum/threebody/internal/experiment"
	"github.com/san-kum/threebody/internal/optim"
)

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("t-max") {
		cfg.TMax = tMax
	}

	variants := experiment.IntegratorVariants(cfg, integratorList)
	if refine > 0 {
		variants = experiment.RefinementVariants(cfg, refine)
	}

	fmt.Printf("comparing on %s (dt=%g, t_max=%g)\n\n", cfg.Name, cfg.Dt, cfg.TMax)
	results, err := experiment.Compare(cmd.Context(), cfg, variants, parallel, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tDT\tSTEPS\tENERGY_DRIFT\tL_DRIFT\tMIN_SEP")
	for _, c := range results {
		fmt.Fprintf(w, "%s\t%g\t%d\t%.3e\t%.3e\t%.3e\n",
			c.Name, c.Dt, c.Result.Steps,
			c.Metric("energy_drift"), c.Metric("angular_momentum_drift"), c.Metric("min_separation"))
	}
	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		batch.Parallel = parallel
	}

	st, err := openStore()
	if err != nil {
		return err
	}

	fmt.Printf("batch %s: %d runs\n", batch.Name, len(batch.Runs))
	results, err := automation.RunBatch(cmd.Context(), batch, st, logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSCENARIO\tSTEPS\tENERGY_DRIFT")
	for _, r := range results {
		if r.Result == nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\n", r.RunID, r.Spec.Scenario)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.3e\n", r.RunID, r.Spec.Scenario, r.Result.Steps, r.Result.EnergyDrift)
	}
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	return err
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(args)
	if err != nil {
		return err
	}
	cfg.TMax = benchTMax

	fmt.Printf("benchmarking %s (%s, t_max=%g)\n\n", cfg.Name, cfg.Integrator, cfg.TMax)
	results, err := experiment.Bench(cmd.Context(), cfg, dtList, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC\tENERGY_DRIFT")
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%v\t%.0f\t%.3e\n", r.Dt, r.Steps, r.Elapsed, r.StepsPerSecond, r.EnergyDrift)
	}
	return w.Flush()
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepPoints,
		Parallel:  parallel,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Printf("sweep of %s on %s\n\n", sweepParam, cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY_DRIFT\tMIN_SEP\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.3e\t%.3e\n", r.ParamValue, r.EnergyDrift, r.MinSeparation)
	}
	return w.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(args)
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: perturbation,
		NumTrials:    trials,
		Radius:       radius,
		Seed:         seed,
		Parallel:     parallel,
	}, logger)
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	fmt.Printf("monte carlo on %s: %d trials, perturbation %g\n", cfg.Name, len(results), perturbation)
	fmt.Printf("stable: %d  unstable: %d  (%.1f%% stable)\n", stable, unstable, 100*float64(stable)/float64(max(1, len(results))))
	return nil
}

func gridSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadScenario(args)
	if err != nil {
		return err
	}
	if len(searchRanges) == 0 {
		return fmt.Errorf("at least one --range is required")
	}

	names := make([]string, len(searchRanges))
	ranges := make([][]float64, len(searchRanges))
	for i, spec := range searchRanges {
		names[i], ranges[i], err = optim.ParseRange(spec)
		if err != nil {
			return err
		}
	}

	g := optim.NewGridSearch(names, ranges)
	g.Maximize = maximize
	params, best, err := g.Search(cmd.Context(), optim.ConfigBuilder(cfg, logger), searchMetric)
	if err != nil {
		return err
	}

	fmt.Printf("best %s on %s: %.5e\n", searchMetric, cfg.Name, best)
	fmt.Printf("parameters: %s\n", optim.FormatParams(params))
	return nil
}
