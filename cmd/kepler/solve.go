package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/kepler/internal/kepler"
	"github.com/san-kum/kepler/internal/storage"
)

func parseAnomalies(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid mean anomaly %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func solve(cmd *cobra.Command, args []string) error {
	solver, err := kepler.New(ecc)
	if err != nil {
		return err
	}
	ms, err := parseAnomalies(args)
	if err != nil {
		return err
	}
	return printSolutions(solver, ms)
}

func printSolutions(solver kepler.Solver, ms []float64) error {
	hyp, isHyperbolic := solver.(*kepler.HyperbolicSolver)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if isHyperbolic {
		fmt.Fprintln(w, "M\tH\tITER\tRESIDUAL\tSTATUS\tREGIME")
	} else {
		fmt.Fprintln(w, "M\tE\tITER\tRESIDUAL\tSTATUS")
	}

	var capped int
	for _, m := range ms {
		r := solver.SolveResult(m)
		if r.Status == kepler.StatusCapped {
			capped++
			logger.Warn().Float64("e", solver.Eccentricity()).Float64("m", m).Err(r.Err()).Msg("solve capped")
		}
		line := fmt.Sprintf("%g\t%.12f\t%d\t%.2e\t%s", m, r.Anomaly, r.Iterations, r.Residual, r.Status)
		if isHyperbolic {
			line += "\t" + hyp.Classify(m).String()
		}
		fmt.Fprintln(w, line)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if capped > 0 {
		return fmt.Errorf("%d of %d solves hit the iteration cap: %w", capped, len(ms), kepler.ErrNonConvergence)
	}
	return nil
}

func sweep(cmd *cobra.Command, args []string) error {
	if sweepN < 2 {
		return errors.New("--n must be at least 2")
	}
	if !(sweepTo > sweepFrom) {
		return errors.New("--to must be greater than --from")
	}
	solver, err := kepler.New(ecc)
	if err != nil {
		return err
	}

	anomalies := make([]float64, sweepN)
	iterations := make([]float64, sweepN)
	var maxIter, capped int
	var maxResidual, totalIter float64
	step := (sweepTo - sweepFrom) / float64(sweepN-1)
	for i := range sweepN {
		m := sweepFrom + float64(i)*step
		r := solver.SolveResult(m)
		anomalies[i] = r.Anomaly
		iterations[i] = float64(r.Iterations)
		maxIter = max(maxIter, r.Iterations)
		maxResidual = max(maxResidual, math.Abs(r.Residual))
		totalIter += float64(r.Iterations)
		if r.Status == kepler.StatusCapped {
			capped++
		}
	}

	fmt.Println(asciigraph.Plot(anomalies,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("anomaly vs M in [%g, %g], e=%g", sweepFrom, sweepTo, ecc)),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(iterations,
		asciigraph.Height(6),
		asciigraph.Width(80),
		asciigraph.Caption("iterations"),
	))
	fmt.Println()
	fmt.Printf("points:          %d\n", sweepN)
	fmt.Printf("mean iterations: %.3f\n", totalIter/float64(sweepN))
	fmt.Printf("max iterations:  %d\n", maxIter)
	fmt.Printf("max |residual|:  %.3e\n", maxResidual)
	fmt.Printf("capped:          %d\n", capped)
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	if benchN <= 0 {
		return errors.New("--n must be positive")
	}
	solver, err := kepler.New(ecc)
	if err != nil {
		return err
	}

	// Elliptic solves span one turn; hyperbolic ones cover both regimes.
	span := 2 * math.Pi
	if hyp, ok := solver.(*kepler.HyperbolicSolver); ok {
		span = 4 * hyp.Threshold()
	}
	rng := rand.New(rand.NewSource(benchSeed))
	ms := make([]float64, benchN)
	for i := range ms {
		ms[i] = (rng.Float64() - 0.5) * span
	}

	var sink float64
	start := time.Now()
	for _, m := range ms {
		sink += solver.Solve(m)
	}
	elapsed := time.Since(start)

	logger.Debug().Float64("checksum", sink).Msg("bench finished")
	fmt.Printf("e:        %g\n", ecc)
	fmt.Printf("solves:   %d\n", benchN)
	fmt.Printf("elapsed:  %s\n", elapsed)
	fmt.Printf("ns/solve: %.1f\n", float64(elapsed.Nanoseconds())/float64(benchN))
	fmt.Printf("solves/s: %.0f\n", float64(benchN)/elapsed.Seconds())
	return nil
}

func saveSolver(cmd *cobra.Command, args []string) error {
	solver, err := kepler.New(ecc)
	if err != nil {
		return err
	}
	if err := storage.SaveSolver(args[0], solver); err != nil {
		return err
	}
	logger.Info().Str("path", args[0]).Float64("e", ecc).Msg("solver saved")
	return nil
}

func loadSolver(cmd *cobra.Command, args []string) error {
	solver, err := storage.LoadSolver(args[0])
	if err != nil {
		return err
	}
	kind := "elliptic"
	if _, ok := solver.(*kepler.HyperbolicSolver); ok {
		kind = "hyperbolic"
	}
	fmt.Printf("%s solver, e=%g\n", kind, solver.Eccentricity())
	if len(args) == 1 {
		return nil
	}

	ms, err := parseAnomalies(args[1:])
	if err != nil {
		return err
	}
	fmt.Println()
	return printSolutions(solver, ms)
}
