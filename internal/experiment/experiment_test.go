package experiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/storage"
)

func reference() *config.Config {
	cfg := config.GetPreset("default")
	cfg.Dt = 0.001
	cfg.TMax = 0.01
	cfg.Filename = "reference"
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := reference()
	cfg.Masses = []float64{1, 1}
	if _, err := New(cfg, nil); !errors.Is(err, config.ErrArity) {
		t.Errorf("expected ErrArity, got %v", err)
	}

	cfg = reference()
	cfg.Integrator = "midpoint"
	if _, err := New(cfg, nil); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestNewCopiesConfig(t *testing.T) {
	cfg := reference()
	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Masses[0] = 100
	if exp.Config().Masses[0] != 1 {
		t.Error("experiment should not share the caller's config")
	}
}

func TestRun(t *testing.T) {
	exp, err := New(reference(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var c record.Collector
	res, err := exp.Run(context.Background(), &c)
	if err != nil {
		t.Fatal(err)
	}
	if res.Steps != 10 || len(c.Records) != 10 {
		t.Fatalf("expected 10 steps and records, got %d and %d", res.Steps, len(c.Records))
	}
	if res.EnergyDrift >= 1e-6 {
		t.Errorf("energy drift %g too large", res.EnergyDrift)
	}
	for _, name := range []string{"energy_drift", "angular_momentum_drift", "min_separation", "energy"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if res.Invalid != nil {
		t.Errorf("unexpected invalid step %v", res.Invalid)
	}
}

func TestRunReportsInvalidState(t *testing.T) {
	cfg := reference()
	cfg.InitialPositions[1] = []float64{0, 0, 0}
	exp, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := exp.Run(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Invalid == nil {
		t.Fatal("expected an invalid step report")
	}
	if !errors.Is(res.Invalid, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", res.Invalid)
	}
}

func TestRunStored(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	exp, err := New(reference(), nil)
	if err != nil {
		t.Fatal(err)
	}

	var extra record.Collector
	run, res, err := exp.RunStored(context.Background(), st, &extra)
	if err != nil {
		t.Fatal(err)
	}
	if len(extra.Records) != res.Steps {
		t.Errorf("extra sink got %d records, want %d", len(extra.Records), res.Steps)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !meta.Complete || meta.Records != 10 {
		t.Errorf("unexpected metadata: complete=%v records=%d", meta.Complete, meta.Records)
	}
	for _, f := range []string{storage.SeriesFile, storage.ParamsFile, storage.MetadataFile} {
		if _, err := os.Stat(filepath.Join(run.Dir, f)); err != nil {
			t.Errorf("%s missing: %v", f, err)
		}
	}
}

func TestRunStoredCanceled(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}
	exp, err := New(reference(), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	run, _, err := exp.RunStored(ctx, st, nil)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Fatalf("expected ErrContextCanceled, got %v", err)
	}

	meta, err := st.Load(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Complete {
		t.Error("canceled run should not be complete")
	}
}

func TestResolve(t *testing.T) {
	cfg, err := Resolve("figure8")
	if err != nil || cfg.Name != "figure8" {
		t.Errorf("preset: %v %v", cfg, err)
	}

	cfg, err = Resolve("")
	if err != nil || cfg.Dt != config.DefaultDt {
		t.Errorf("default: %v %v", cfg, err)
	}

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := config.Save(path, reference()); err != nil {
		t.Fatal(err)
	}
	cfg, err = Resolve(path)
	if err != nil || cfg.TMax != 0.01 {
		t.Errorf("file: %v %v", cfg, err)
	}

	if _, err := Resolve("no-such-thing"); !errors.Is(err, ErrUnknownScenario) {
		t.Errorf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestCompareIntegrators(t *testing.T) {
	cfg := reference()
	cfg.Dt = 0.01
	cfg.TMax = 1

	cmp, err := Compare(context.Background(), cfg, IntegratorVariants(cfg, []string{"euler", "rk4"}), 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmp) != 2 || cmp[0].Name != "euler" || cmp[1].Name != "rk4" {
		t.Fatalf("unexpected comparisons: %+v", cmp)
	}
	if cmp[0].Metric("energy_drift") <= cmp[1].Metric("energy_drift") {
		t.Errorf("euler drift %g should exceed rk4 drift %g",
			cmp[0].Metric("energy_drift"), cmp[1].Metric("energy_drift"))
	}
	if (Comparison{}).Metric("energy_drift") != 0 {
		t.Error("missing result should read as zero")
	}
}

func TestCompareRefinement(t *testing.T) {
	cfg := reference()
	cfg.Integrator = "euler"
	cfg.Dt = 0.01
	cfg.TMax = 1

	variants := RefinementVariants(cfg, 3)
	if variants[1].Dt != 0.005 || variants[2].Dt != 0.0025 {
		t.Fatalf("unexpected step sizes: %+v", variants)
	}

	cmp, err := Compare(context.Background(), cfg, variants, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(cmp); i++ {
		if cmp[i].Result.EnergyDrift >= cmp[i-1].Result.EnergyDrift {
			t.Errorf("drift should shrink with dt: %g then %g", cmp[i-1].Result.EnergyDrift, cmp[i].Result.EnergyDrift)
		}
	}
}

func TestCompareInvalidVariant(t *testing.T) {
	cfg := reference()
	_, err := Compare(context.Background(), cfg, []Variant{{Name: "bad", Integrator: "rk4", Dt: -1}}, 1, nil)
	if !errors.Is(err, config.ErrNonPositive) {
		t.Errorf("expected ErrNonPositive, got %v", err)
	}
}

func TestBench(t *testing.T) {
	res, err := Bench(context.Background(), reference(), []float64{0.001, 0.0005}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 || res[0].Steps != 10 || res[1].Steps != 20 {
		t.Fatalf("unexpected bench results: %+v", res)
	}
	for _, r := range res {
		if r.Elapsed <= 0 || r.StepsPerSecond <= 0 {
			t.Errorf("timing missing: %+v", r)
		}
	}
}
