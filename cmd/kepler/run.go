package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/kepler/internal/analysis"
	"github.com/san-kum/kepler/internal/config"
	"github.com/san-kum/kepler/internal/export"
	"github.com/san-kum/kepler/internal/integrators"
	"github.com/san-kum/kepler/internal/metrics"
	"github.com/san-kum/kepler/internal/orbit"
	"github.com/san-kum/kepler/internal/sim"
	"github.com/san-kum/kepler/internal/storage"
	"github.com/san-kum/kepler/internal/viz"
)

func propagate(cmd *cobra.Command, args []string) error {
	cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}
	bodies, err := cfg.SimBodies()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	simulator := sim.New(sim.WithLogger(logger), sim.WithMetrics(metrics.Default()...))
	simCfg := cfg.SimConfig()

	logger.Info().
		Str("run", cfg.Name).
		Int("bodies", len(bodies)).
		Float64("dt", simCfg.Dt).
		Float64("duration", simCfg.Duration).
		Msg("propagating")

	result, runErr := simulator.Run(ctx, bodies, simCfg)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn().Err(runErr).Int("steps", result.StepsTaken).Msg("run interrupted, saving partial result")
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	runID, err := store.Save(cfg.Name, bodies, simCfg, result)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	fmt.Printf("run saved: %s\n", runID)
	fmt.Printf("steps: %d\n\n", result.StepsTaken)
	printMetrics(os.Stdout, result.Metrics)

	for _, e := range result.Errors {
		logger.Error().Err(e).Msg("propagation error")
	}
	if len(result.Errors) > 0 {
		return errors.Join(result.Errors...)
	}
	return runErr
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", name, m[name])
	}
	w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tBODIES\tSTEPS\tTIMESTAMP")
	for _, run := range runs {
		names := make([]string, len(run.Bodies))
		for i, b := range run.Bodies {
			names[i] = b.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			run.ID, run.Name, strings.Join(names, ","), run.Steps,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	store := storage.New(dataDir)

	meta, err := store.Load(runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	tr, err := store.LoadStates(runID)
	if err != nil {
		return fmt.Errorf("failed to load states: %w", err)
	}
	if len(tr.Times) == 0 {
		return errors.New("run has no states")
	}

	names := tr.Bodies
	if bodyName != "" {
		if tr.Trajectory(bodyName) == nil {
			return fmt.Errorf("unknown body %q (run has %v)", bodyName, tr.Bodies)
		}
		names = []string{bodyName}
	}

	fmt.Printf("run: %s (%s)\n", meta.ID, meta.Name)
	fmt.Printf("steps: %d, dt: %g\n\n", meta.Steps, meta.Dt)

	for _, name := range names {
		traj := tr.Trajectory(name)
		radius := make([]float64, len(traj))
		xs := make([]float64, len(traj))
		for i, x := range traj {
			radius[i] = x.Position().Norm()
			xs[i] = x[0]
		}

		fmt.Println(asciigraph.Plot(radius,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" |r|"),
		))
		fmt.Println()
		fmt.Println(asciigraph.Plot(xs,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" x"),
		))
		fmt.Println()
	}

	if svgPath != "" {
		if err := writeSVG(svgPath, tr, names); err != nil {
			return fmt.Errorf("failed to write svg: %w", err)
		}
		logger.Info().Str("path", svgPath).Msg("svg written")
	}
	return nil
}

func writeSVG(path string, tr *storage.Trajectories, names []string) error {
	paths := make([]export.Path, len(names))
	for i, name := range names {
		traj := tr.Trajectory(name)
		pts := make([][2]float64, len(traj))
		for k, x := range traj {
			pts[k] = [2]float64{x[0], x[1]}
		}
		paths[i] = export.Path{Name: name, Points: pts}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.OrbitSVG(f, paths, 800, 800); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// estimatePeriods recovers each closed orbit's period from the stored radius
// series and compares it with the period implied by its elements.
func estimatePeriods(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	meta, err := store.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	tr, err := store.LoadStates(args[0])
	if err != nil {
		return fmt.Errorf("failed to load states: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY	ANALYTIC	ESTIMATED	REL ERR")
	for _, b := range meta.Bodies {
		if b.Elements.Hyperbolic() {
			fmt.Fprintf(w, "%s\topen\t-\t-\n", b.Name)
			continue
		}
		prop, err := orbit.NewPropagator(b.Elements)
		if err != nil {
			return fmt.Errorf("body %q: %w", b.Name, err)
		}

		traj := tr.Trajectory(b.Name)
		radius := make([]float64, len(traj))
		for i, x := range traj {
			radius[i] = x.Position().Norm()
		}
		est, err := analysis.DominantPeriod(radius, meta.Dt)
		if err != nil {
			logger.Warn().Err(err).Str("body", b.Name).Msg("no period estimate")
			fmt.Fprintf(w, "%s\t%.6g\t-\t-\n", b.Name, prop.Period())
			continue
		}
		rel := math.Abs(est-prop.Period()) / prop.Period()
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.2e\n", b.Name, prop.Period(), est, rel)
	}
	return w.Flush()
}

// openOutput returns stdout when --out is empty.
func openOutput() (io.Writer, func() error, error) {
	if outPath == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportJSON(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	w, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	if err := storage.New(dataDir).ExportCSV(w, args[0]); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}
	bodies, err := cfg.SimBodies()
	if err != nil {
		return err
	}

	body := bodies[0]
	if bodyName != "" {
		found := false
		for _, b := range bodies {
			if b.Name == bodyName {
				body, found = b, true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown body %q", bodyName)
		}
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().Str("body", body.Name).Strs("integrators", names).Msg("comparing integrators")
	results, err := sim.Compare(ctx, body, names, cfg.SimConfig())
	if err != nil && results == nil {
		return err
	}

	fmt.Printf("body: %s, dt: %g, duration: %g\n\n", body.Name, cfg.Dt, cfg.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tPOSITION ERR\tENERGY DRIFT\tTIME")
	for _, c := range results {
		marker := ""
		if c.Integrator == cfg.Integrator {
			marker = " *"
		}
		if c.Err != nil {
			fmt.Fprintf(w, "%s%s\tfailed: %v\t\t\n", c.Integrator, marker, c.Err)
			continue
		}
		fmt.Fprintf(w, "%s%s\t%.3e\t%.3e\t%s\n", c.Integrator, marker, c.PositionError, c.EnergyDrift, c.Elapsed.Round(time.Microsecond))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	best, bestErr := sim.Best(results)
	if bestErr != nil {
		return bestErr
	}
	fmt.Printf("\nbest: %s\n", best.Integrator)
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadRun(cmd)
	if err != nil {
		return err
	}
	bodies, err := cfg.SimBodies()
	if err != nil {
		return err
	}
	return viz.Run(viz.NewModel(cfg.Name, bodies, cfg.Dt, cfg.Duration))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMU\tDT\tDURATION\tBODIES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		bodies := make([]string, len(p.Bodies))
		for i, b := range p.Bodies {
			bodies[i] = fmt.Sprintf("%s(e=%g)", b.Name, b.Eccentricity)
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%s\n", name, p.Mu, p.Dt, p.Duration, strings.Join(bodies, " "))
	}
	return w.Flush()
}
