package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/kepler/internal/config"
	"github.com/san-kum/kepler/internal/logging"
)

var (
	dataDir    string
	logLevel   string
	noColor    bool
	env        config.Env
	logger     zerolog.Logger
	ecc        float64
	dt         float64
	duration   float64
	workers    int
	configFile string
	preset     string
	bodyName   string
	outPath    string
	svgPath    string
	sweepFrom  float64
	sweepTo    float64
	sweepN     int
	benchN     int
	benchSeed  int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kepler",
		Short:         "kepler equation solver and orbit propagator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			env, err = config.LoadEnv()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("data") {
				dataDir = env.DataDir
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = env.LogLevel
			}
			if !cmd.Flags().Changed("no-color") {
				noColor = env.LogNoColor
			}
			logger, err = logging.Init("kepler", logging.Options{Level: logLevel, NoColor: noColor, Out: os.Stderr})
			return err
		},
	}

	rootCmd.SetFlagErrorFunc(flagError)

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kepler", "data directory (env KEPLER_DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (env KEPLER_LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored logs (env KEPLER_LOG_NOCOLOR)")

	solveCmd := &cobra.Command{
		Use:   "solve [--e E] [--] mean_anomaly...",
		Short: "solve kepler's equation for one eccentricity",
		Long: `Solve E - e·sin(E) = M (e < 1) or e·sinh(H) - H = M (e > 1) for each M.

Negative mean anomalies look like flags; put them after --.`,
		Example: `  kepler solve --e 0.5 1.0 2.5
  kepler solve --e 2 -- -5 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: solve,
	}
	solveCmd.Flags().Float64Var(&ecc, "e", 0.5, "eccentricity (e != 1)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "solve over a mean anomaly grid and plot the result",
		RunE:  sweep,
	}
	sweepCmd.Flags().Float64Var(&ecc, "e", 0.5, "eccentricity (e != 1)")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", -10, "first mean anomaly")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 10, "last mean anomaly")
	sweepCmd.Flags().IntVar(&sweepN, "n", 400, "grid points")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time solves over random mean anomalies",
		RunE:  bench,
	}
	benchCmd.Flags().Float64Var(&ecc, "e", 0.5, "eccentricity (e != 1)")
	benchCmd.Flags().IntVar(&benchN, "n", 1_000_000, "number of solves")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "random seed")

	propagateCmd := &cobra.Command{
		Use:   "propagate",
		Short: "propagate a run file or preset and store the result",
		RunE:  propagate,
	}
	addRunFlags(propagateCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored trajectories",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&bodyName, "body", "", "only plot this body")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the orbits in the x-y plane to this SVG file")

	periodCmd := &cobra.Command{
		Use:   "period [run_id]",
		Short: "estimate orbital periods from stored states",
		Args:  cobra.ExactArgs(1),
		RunE:  estimatePeriods,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare numerical integrators against the analytic orbit",
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().StringVar(&bodyName, "body", "", "body to integrate (default first)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate a run file or preset in the terminal",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	solverCmd := &cobra.Command{
		Use:   "solver",
		Short: "save and load solver configurations",
	}
	solverSaveCmd := &cobra.Command{
		Use:   "save [path]",
		Short: "write a solver configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  saveSolver,
	}
	solverSaveCmd.Flags().Float64Var(&ecc, "e", 0.5, "eccentricity (e != 1)")
	solverLoadCmd := &cobra.Command{
		Use:     "load path [--] [mean_anomaly...]",
		Short:   "load a solver configuration and optionally solve with it",
		Example: "  kepler solver load hyp.yaml -- -3 3",
		Args:    cobra.MinimumNArgs(1),
		RunE:    loadSolver,
	}
	solverCmd.AddCommand(solverSaveCmd, solverLoadCmd)

	rootCmd.AddCommand(solveCmd, sweepCmd, benchCmd, propagateCmd, listCmd, plotCmd, periodCmd, exportJSONCmd, exportCSVCmd, compareCmd, liveCmd, presetsCmd, solverCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// flagError points at -- when pflag mistakes a negative number for a
// shorthand flag, as in "kepler solve -1".
func flagError(cmd *cobra.Command, err error) error {
	msg := err.Error()
	if !strings.HasPrefix(msg, "unknown shorthand flag") {
		return err
	}
	i := strings.LastIndex(msg, " in ")
	if i < 0 {
		return err
	}
	arg := msg[i+len(" in "):]
	if _, perr := strconv.ParseFloat(arg, 64); perr != nil {
		return err
	}
	return fmt.Errorf("%w: negative mean anomalies go after --, e.g. %q", err, cmd.CommandPath()+" -- "+arg)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "run file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset instead of a run file")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per step (0 = GOMAXPROCS, env KEPLER_WORKERS)")
}

// loadRun resolves --preset or --config, lets the environment fill what the
// file left unset, then applies flags, which win over both.
func loadRun(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "" && configFile != "":
		return nil, fmt.Errorf("--preset and --config are mutually exclusive")
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	default:
		return nil, fmt.Errorf("one of --preset or --config is required")
	}

	cfg.ApplyEnv(env)

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
