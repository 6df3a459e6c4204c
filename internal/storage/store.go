package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/record"
	"github.com/san-kum/threebody/internal/sim"
)

// File names inside a run directory.
const (
	SeriesFile   = "series.dat"
	ParamsFile   = "params.yaml"
	MetadataFile = "metadata.json"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Float is a float64 whose JSON form is null when it is NaN or Inf.
// Null decodes back to NaN.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Store keeps one directory per run below baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Timestamp   time.Time        `json:"timestamp"`
	Masses      []float64        `json:"masses"`
	G           float64          `json:"G"`
	Dt          float64          `json:"dt"`
	TMax        float64          `json:"t_max"`
	Integrator  string           `json:"integrator"`
	BodyNames   []string         `json:"body_names"`
	Records     int              `json:"records"`
	Complete    bool             `json:"complete"`
	EnergyDrift Float            `json:"energy_drift"`
	InvalidStep *int             `json:"invalid_step,omitempty"`
	Metrics     map[string]Float `json:"metrics"`
}

// Run is an open run directory. It is a record.Sink writing series.dat;
// Close flushes the series and writes metadata.json.
type Run struct {
	ID   string
	Dir  string
	meta RunMetadata
	file *os.File
	w    *record.Writer
}

// Create makes a fresh run directory for cfg, dumps cfg to params.yaml and
// opens series.dat. The run ID is the config filename plus a Unix timestamp,
// suffixed when a directory of that name already exists.
func (s *Store) Create(cfg *config.Config) (*Run, error) {
	base := cfg.Filename
	if base == "" {
		base = config.DefaultFilename
	}
	now := time.Now()

	runID := fmt.Sprintf("%s_%d", base, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create run dir: %w", err)
		}
		runID = fmt.Sprintf("%s_%d_%d", base, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	f, err := populate(runDir, cfg)
	if err != nil {
		return nil, err
	}

	return &Run{
		ID:  runID,
		Dir: runDir,
		meta: RunMetadata{
			ID:         runID,
			Name:       cfg.Name,
			Timestamp:  now,
			Masses:     cfg.Masses,
			G:          cfg.G,
			Dt:         cfg.Dt,
			TMax:       cfg.TMax,
			Integrator: cfg.Integrator,
			BodyNames:  cfg.Names(),
		},
		file: f,
		w:    record.NewWriter(f),
	}, nil
}

// populate writes params.yaml into a fresh run directory and opens its
// series file. On failure the directory is removed so no run is left
// without metadata.
func populate(runDir string, cfg *config.Config) (*os.File, error) {
	if err := config.Save(filepath.Join(runDir, ParamsFile), cfg); err != nil {
		os.RemoveAll(runDir)
		return nil, fmt.Errorf("write params: %w", err)
	}
	f, err := os.Create(filepath.Join(runDir, SeriesFile))
	if err != nil {
		os.RemoveAll(runDir)
		return nil, fmt.Errorf("create series: %w", err)
	}
	return f, nil
}

func (r *Run) Write(rec record.Record) error {
	return r.w.Write(rec)
}

// Close flushes the series and writes metadata.json. result may be nil or
// partial for a canceled run; the metadata then records complete=false.
func (r *Run) Close(result *sim.Result) error {
	if err := r.w.WriteHeader(); err != nil {
		r.file.Close()
		return err
	}
	if err := r.w.Flush(); err != nil {
		r.file.Close()
		return fmt.Errorf("flush series: %w", err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close series: %w", err)
	}

	r.meta.Records = r.w.Rows()
	r.meta.Metrics = map[string]Float{}
	if result != nil {
		r.meta.Complete = result.Steps == stepsFor(r.meta)
		r.meta.EnergyDrift = Float(result.EnergyDrift)
		for k, v := range result.Metrics {
			r.meta.Metrics[k] = Float(v)
		}
		if result.Invalid != nil {
			step := result.Invalid.Step
			r.meta.InvalidStep = &step
		}
	}

	return writeJSON(filepath.Join(r.Dir, MetadataFile), r.meta)
}

// Metadata returns the metadata as it will be (or was) written by Close.
func (r *Run) Metadata() RunMetadata { return r.meta }

func stepsFor(m RunMetadata) int {
	return dynamo.Config{Dt: m.Dt, Duration: m.TMax}.Steps()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, MetadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata of %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig reads back the parameter dump of a run.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	path := filepath.Join(s.baseDir, runID, ParamsFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return config.Load(path)
}

// LoadRecords decodes every n-th record of a run's series.
func (s *Store) LoadRecords(runID string, every int) ([]record.Record, error) {
	f, err := os.Open(s.SeriesPath(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()

	return record.ReadEvery(f, every)
}

func (s *Store) SeriesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, SeriesFile)
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", fmt.Errorf("%w: store is empty", ErrRunNotFound)
	}
	return runs[len(runs)-1].ID, nil
}

var _ record.Sink = (*Run)(nil)
