package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/droptower/internal/config"
	"github.com/san-kum/droptower/internal/gravity"
)

var (
	dataDir  string
	logLevel string
	logJSON  bool
	// Config file
	configFile string
	// Preset name
	preset string
	seed   uint64
	// Overrides applied on top of the preset and config file
	numParticles int
	dt           float64
	duration     float64
	startTime    float64
	gravityModel string
	policy       string
	pairs        bool
	// Samples kept in status.csv
	recordEvery int
	// Ensemble
	numRuns  int
	parallel int
	// Live view
	stepsPerFrame int
	// SVG export
	svgScale  float64
	svgSeries string
	// Sweep
	sweepAxes []string
	metric    string
	maximize  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "droptower",
		Short:        "drop tower microgravity particle simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and save it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().IntVar(&recordEvery, "record-every", 1, "keep every n-th step in status.csv")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot g_eff, chamber velocity, energy and height over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run status trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independent seeds in parallel and summarise them",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	simFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	simFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 2, "simulation steps per rendered frame")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final snapshot, or a trace series, as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().Float64Var(&svgScale, "scale", 12, "pixels per cm")
	exportSVGCmd.Flags().StringVar(&svgSeries, "series", "", "plot a trace column instead (g_eff, chamber_velocity, kinetic_energy, mean_height)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search parameters for the best metric value",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	simFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepAxes, "param", nil, "axis as name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metric, "metric", "max_g_eff", "metric to optimise")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "pick the largest value instead of the smallest")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd,
		presetsCmd, ensembleCmd, sweepCmd, liveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Uint64Var(&seed, "seed", d.Seed, "random seed")
	cmd.Flags().IntVar(&numParticles, "particles", d.Particles.Count, "number of particles")
	cmd.Flags().Float64Var(&dt, "dt", d.Timing.Dt, "timestep (s)")
	cmd.Flags().Float64Var(&duration, "time", d.Timing.SimulationTime, "simulation time (s)")
	cmd.Flags().Float64Var(&startTime, "start", d.Timing.StartTime, "release time (s)")
	cmd.Flags().StringVar(&gravityModel, "model", d.Gravity.Model, fmt.Sprintf("gravity model %v", gravity.Names()))
	cmd.Flags().StringVar(&policy, "policy", d.Gravity.Policy, "gravity policy (always, loaded_only)")
	cmd.Flags().BoolVar(&pairs, "pairs", d.Collision.PairCollisions, "resolve particle-particle collisions")
}
