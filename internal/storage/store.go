// Package storage persists runs as directories of JSON and CSV files, with a
// SQLite catalog indexing them.
package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/droptower/internal/particles"
	"github.com/san-kum/droptower/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	statusFile    = "status.csv"
	positionsFile = "positions.csv"
	catalogFile   = "catalog.db"
)

// ErrRunNotFound is returned when a run id has no directory.
var ErrRunNotFound = errors.New("storage: run not found")

var (
	statusHeader    = []string{"time", "phase", "g_eff", "chamber_velocity", "kinetic_energy", "mean_height"}
	positionsHeader = []string{"x", "y", "vx", "vy", "radius", "mass"}
)

type Store struct {
	baseDir string
	catalog *Catalog
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Init creates the base directory and opens the catalog. A fresh catalog is
// filled from any run directories already on disk.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	catalog, err := OpenCatalog(ctx, filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return err
	}
	s.catalog = catalog

	n, err := catalog.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.Reindex(ctx)
	}
	return nil
}

func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Close()
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Preset         string             `json:"preset,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
	Seed           uint64             `json:"seed"`
	NumParticles   int                `json:"num_particles"`
	GravityModel   string             `json:"gravity_model"`
	GravityPolicy  string             `json:"gravity_policy"`
	Dt             float64            `json:"dt"`
	SimulationTime float64            `json:"simulation_time"`
	Steps          int                `json:"steps"`
	Metrics        map[string]float64 `json:"metrics"`
	Config         *sim.Config        `json:"config,omitempty"`
}

// Run is everything Save writes for one simulation.
type Run struct {
	Preset string
	Config sim.Config
	Result *sim.Result
	Rows   []Row
}

// Save writes run to a new directory and catalogs it. A failed save removes
// the directory it created.
func (s *Store) Save(ctx context.Context, run Run) (id string, err error) {
	now := time.Now()
	runID, runDir, err := s.makeRunDir(now, run.Result.Seed)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	cfg := run.Config
	meta := RunMetadata{
		ID:             runID,
		Preset:         run.Preset,
		Timestamp:      now,
		Seed:           run.Result.Seed,
		NumParticles:   cfg.NumParticles,
		GravityModel:   cfg.GravityModel,
		GravityPolicy:  string(cfg.GravityPolicy),
		Dt:             cfg.Dt,
		SimulationTime: cfg.SimulationTime,
		Steps:          run.Result.Steps,
		Metrics:        finite(run.Result.Metrics),
		Config:         &cfg,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, statusFile), func(f *os.File) error {
		return WriteStatusCSV(f, run.Rows)
	}); err != nil {
		return "", err
	}
	if err := writeCSVFile(filepath.Join(runDir, positionsFile), func(f *os.File) error {
		return WritePositionsCSV(f, run.Result.Final)
	}); err != nil {
		return "", err
	}

	if s.catalog != nil {
		if err := s.catalog.Put(ctx, &meta); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// makeRunDir creates a fresh directory for a run started at now. Saves of
// the same seed within one millisecond get a numeric suffix.
func (s *Store) makeRunDir(now time.Time, seed uint64) (string, string, error) {
	base := fmt.Sprintf("run_%s_s%d", now.UTC().Format("20060102T150405.000"), seed)
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

// List returns saved runs, newest first. Without an open catalog the run
// directories are scanned instead.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	if s.catalog != nil {
		return s.catalog.List(ctx)
	}
	return s.scan()
}

// Reindex catalogs every run directory under the base dir and drops
// catalog rows whose directory is gone.
func (s *Store) Reindex(ctx context.Context) error {
	if s.catalog == nil {
		return nil
	}
	runs, err := s.scan()
	if err != nil {
		return err
	}
	present := make(map[string]bool, len(runs))
	for i := range runs {
		present[runs[i].ID] = true
		if err := s.catalog.Put(ctx, &runs[i]); err != nil {
			return err
		}
	}

	indexed, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	for _, meta := range indexed {
		if present[meta.ID] {
			continue
		}
		if err := s.catalog.Delete(ctx, meta.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) scan() ([]RunMetadata, error) {
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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrace reads the status rows of a run.
func (s *Store) LoadTrace(runID string) ([]Row, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, statusFile))
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for i, record := range records {
		if len(record) != len(statusHeader) {
			return nil, fmt.Errorf("storage: %s line %d: expected %d fields, got %d",
				statusFile, i+2, len(statusHeader), len(record))
		}
		vals, err := parseFloats(record, 0, 2, 3, 4, 5)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", statusFile, i+2, err)
		}
		rows = append(rows, Row{
			Time:            vals[0],
			Phase:           record[1],
			GEff:            vals[2],
			ChamberVelocity: vals[3],
			KineticEnergy:   vals[4],
			MeanHeight:      vals[5],
		})
	}
	return rows, nil
}

// LoadPositions reads the final particle snapshot of a run.
func (s *Store) LoadPositions(runID string) ([]particles.Particle, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}

	ps := make([]particles.Particle, 0, len(records))
	for i, record := range records {
		vals, err := parseFloats(record, 0, 1, 2, 3, 4, 5)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", positionsFile, i+2, err)
		}
		ps = append(ps, particles.Particle{
			X: vals[0], Y: vals[1], VX: vals[2], VY: vals[3], Radius: vals[4], Mass: vals[5],
		})
	}
	return ps, nil
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

func writeCSVFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readCSV returns the records after the header line.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

// parseFloats parses the listed columns. The result is indexed by column;
// unlisted columns stay zero.
func parseFloats(record []string, cols ...int) ([]float64, error) {
	vals := make([]float64, len(record))
	for _, c := range cols {
		if c >= len(record) {
			return nil, fmt.Errorf("missing column %d", c)
		}
		v, err := strconv.ParseFloat(record[c], 64)
		if err != nil {
			return nil, err
		}
		vals[c] = v
	}
	return vals, nil
}

// finite drops NaN and infinite values, which JSON cannot carry.
func finite(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}
