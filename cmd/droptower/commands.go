package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/droptower/internal/config"
	"github.com/san-kum/droptower/internal/export"
	"github.com/san-kum/droptower/internal/logging"
	"github.com/san-kum/droptower/internal/metrics"
	"github.com/san-kum/droptower/internal/sim"
	"github.com/san-kum/droptower/internal/storage"
	"github.com/san-kum/droptower/internal/sweep"
	"github.com/san-kum/droptower/internal/viz"
)

// resolveConfig layers defaults, preset, config file and changed flags, in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = config.FromSim(p)
		cfg.Seed = config.DefaultSeed
		cfg.LogLevel = config.DefaultLogLevel
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("particles") {
		cfg.Particles.Count = numParticles
	}
	if flags.Changed("dt") {
		cfg.Timing.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Timing.SimulationTime = duration
	}
	if flags.Changed("start") {
		cfg.Timing.StartTime = startTime
	}
	if flags.Changed("model") {
		cfg.Gravity.Model = gravityModel
	}
	if flags.Changed("policy") {
		cfg.Gravity.Policy = policy
	}
	if flags.Changed("pairs") {
		cfg.Collision.PairCollisions = pairs
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if logJSON {
		return logging.NewJSONLogger(cfg.LogLevel, os.Stderr)
	}
	return logging.NewLogger(cfg.LogLevel, os.Stderr)
}

func openStore(cmd *cobra.Command) (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(cmd.Context()); err != nil {
		return nil, err
	}
	return st, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rec := storage.NewRecorder(recordEvery)
	opts := append(metrics.Options(metrics.Default()), sim.WithLogger(logger), sim.WithObserver(rec))
	s, err := sim.Initialize(sc, cfg.Seed, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("running %d particles for %.2fs (%s, %s)...\n",
		sc.NumParticles, sc.SimulationTime, sc.GravityModel, sc.GravityPolicy)
	start := time.Now()

	result, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cmd.Context(), storage.Run{
		Preset: preset,
		Config: sc,
		Result: result,
		Rows:   rec.Rows(),
	})
	if err != nil {
		return err
	}
	logger.Debug("run saved", "id", runID, "dir", dataDir)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSEED\tN\tMODEL\tPOLICY\tSIM TIME\tDT")
	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%.2fs\t%.4fs\n",
			run.ID,
			p,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Seed,
			run.NumParticles,
			run.GravityModel,
			run.GravityPolicy,
			run.SimulationTime,
			run.Dt,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.GravityModel)
	fmt.Printf("samples: %d\n\n", len(trace))

	series := []struct {
		caption string
		value   func(storage.Row) float64
	}{
		{"g_eff (cm/s²)", func(r storage.Row) float64 { return r.GEff }},
		{"chamber velocity (cm/s)", func(r storage.Row) float64 { return r.ChamberVelocity }},
		{"kinetic energy (erg)", func(r storage.Row) float64 { return r.KineticEnergy }},
		{"mean height (cm)", func(r storage.Row) float64 { return r.MeanHeight }},
	}
	for _, s := range series {
		data := make([]float64, len(trace))
		for i, r := range trace {
			data[i] = s.value(r)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportCSV(os.Stdout, args[0])
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	if svgSeries != "" {
		trace, err := st.LoadTrace(runID)
		if err != nil {
			return err
		}
		column := map[string]func(storage.Row) float64{
			"g_eff":            func(r storage.Row) float64 { return r.GEff },
			"chamber_velocity": func(r storage.Row) float64 { return r.ChamberVelocity },
			"kinetic_energy":   func(r storage.Row) float64 { return r.KineticEnergy },
			"mean_height":      func(r storage.Row) float64 { return r.MeanHeight },
		}[svgSeries]
		if column == nil {
			return fmt.Errorf("unknown series: %s", svgSeries)
		}
		xs, ys := make([]float64, len(trace)), make([]float64, len(trace))
		for i, r := range trace {
			xs[i], ys[i] = r.Time, column(r)
		}
		svg := export.SeriesToSVG(xs, ys, 800, 300, "#00ffff")
		if svg == "" {
			return fmt.Errorf("no data to plot")
		}
		_, err = fmt.Println(svg)
		return err
	}

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Config == nil {
		return fmt.Errorf("run %s has no stored config", runID)
	}
	positions, err := st.LoadPositions(runID)
	if err != nil {
		return err
	}
	_, err = fmt.Println(export.SnapshotSVG(meta.Config.Chamber(), positions, svgScale))
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	if len(sweepAxes) == 0 {
		return fmt.Errorf("at least one --param is required (available: %v)", sweep.Params())
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	axes := make([]sweep.Axis, 0, len(sweepAxes))
	for _, a := range sweepAxes {
		axis, err := sweep.ParseAxis(a)
		if err != nil {
			return err
		}
		axes = append(axes, axis)
	}
	g := sweep.NewGridSearch(axes...)
	g.Maximize = maximize
	g.Limit = parallel

	best, all, err := g.Search(cmd.Context(), sc, cfg.Seed, metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, a := range axes {
		fmt.Fprintf(w, "%s\t", a.Name)
	}
	fmt.Fprintln(w, metric)
	for _, p := range all {
		for _, a := range axes {
			fmt.Fprintf(w, "%g\t", p.Params[a.Name])
		}
		fmt.Fprintf(w, "%.6f\n", p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best.Params == nil {
		fmt.Printf("\nno point produced a value for %s\n", metric)
		return nil
	}
	fmt.Printf("\nbest %s = %.6f at %v\n", metric, best.Value, best.Params)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTUBE\tN\tRADIUS\tMODEL\tPOLICY\tPAIRS\tSTART\tSIM TIME\tDT")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%gx%g\t%d\t%g\t%s\t%s\t%t\t%gs\t%gs\t%gs\n",
			name, p.TubeWidth, p.TubeHeight, p.NumParticles, p.ParticleRadius,
			p.GravityModel, p.GravityPolicy, p.PairCollisions, p.StartTime, p.SimulationTime, p.Dt)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	e := sim.NewEnsemble(sc, numRuns, cfg.Seed, sim.WithLogger(newLogger(cfg)))
	e.NewMetrics = metrics.Default
	e.Limit = parallel

	fmt.Printf("running %d seeds from %d...\n", numRuns, cfg.Seed)
	start := time.Now()
	results, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	columns := []string{"mean_kinetic_energy", "energy_loss", "max_g_eff", "mean_height", "wall_contacts", "pair_contacts"}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "SEED\tSTEPS")
	for _, c := range columns {
		fmt.Fprintf(w, "\t%s", c)
	}
	fmt.Fprintln(w)

	sums := make([]float64, len(columns))
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d", r.Seed, r.Steps)
		for i, c := range columns {
			v := r.Metrics[c]
			fmt.Fprintf(w, "\t%.4f", v)
			sums[i] += v
		}
		fmt.Fprintln(w)
	}
	if len(results) > 0 {
		fmt.Fprint(w, "mean\t")
		for _, s := range sums {
			fmt.Fprintf(w, "\t%.4f", s/float64(len(results)))
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		if c := r.Metrics["containment"]; c < 1 || math.IsNaN(c) {
			fmt.Printf("warning: seed %d left the chamber on %.2f%% of steps\n", r.Seed, 100*(1-c))
		}
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Sim()
	if err != nil {
		return err
	}

	title := "drop tower"
	if preset != "" {
		title += " · " + preset
	}
	// the terminal belongs to the view, so only errors are logged
	m, err := viz.NewModel(sc, cfg.Seed, stepsPerFrame, title,
		sim.WithLogger(logging.NewLogger("error", os.Stderr)))
	if err != nil {
		return err
	}
	return viz.Run(m)
}
