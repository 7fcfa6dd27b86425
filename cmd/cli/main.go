package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"sdom/internal/results"
	"sdom/internal/sdom"
	"sdom/internal/solver"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "solve":
		cmdSolve(os.Args[2:])
	case "lp":
		cmdLP(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli solve --case cases/toy --hours 8760 --name toy --out results/ [--resilience] [--solver-config solver.yaml]")
	fmt.Println("  cli lp --case cases/toy --hours 8760 --name toy --out results/")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - solve builds the model, runs the configured MILP solver, and writes the output CSVs")
	fmt.Println("  - lp only assembles the model and writes the LP file for inspection")
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func cmdSolve(args []string) {
	fs := flag.NewFlagSet("solve", flag.ExitOnError)
	caseDir := fs.String("case", "", "Path to the case input directory")
	hours := fs.Int("hours", 8760, "Planning horizon in hours")
	name := fs.String("name", "case", "Case name used in output file names")
	outDir := fs.String("out", "results", "Output directory for solver files and CSVs")
	resilience := fs.Bool("resilience", false, "Run the two-stage resilience workflow")
	solverCfg := fs.String("solver-config", "", "Path to a YAML solver configuration (default: cbc)")
	_ = fs.Parse(args)

	if *caseDir == "" {
		fmt.Println("--case is required")
		os.Exit(2)
	}
	log := newLogger()

	cfg := solver.Default()
	if *solverCfg != "" {
		var err error
		if cfg, err = solver.LoadConfig(*solverCfg); err != nil {
			log.Fatal().Err(err).Msg("load solver config")
		}
	}

	plan, err := sdom.Build(*caseDir, *hours, *resilience, *name, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build model")
	}

	res, err := sdom.Solve(context.Background(), plan, cfg, *outDir)
	if err != nil {
		var infeas *solver.InfeasibleError
		var timeout *solver.TimeoutError
		switch {
		case errors.As(err, &infeas):
			log.Fatal().Err(err).Msg("no solution extracted")
		case errors.As(err, &timeout):
			log.Fatal().Err(err).Msg("solver timed out")
		default:
			log.Fatal().Err(err).Msg("solve failed")
		}
	}

	if err := results.Export(res, *outDir); err != nil {
		log.Fatal().Err(err).Msg("export results")
	}

	fmt.Printf("Total cost $%.2f/yr (%s, %d rows, %d cols)\n",
		res.TotalCost, res.Stats.Status, res.Stats.Constraints, res.Stats.Variables)
	fmt.Printf("Installed: PV %.1f MW, wind %.1f MW\n", res.PVBuiltMW, res.WindBuiltMW)
	for _, s := range res.Storage {
		fmt.Printf("Storage %s: %.1f MW / %.1f MWh\n", s.Technology, s.DischargeMW, s.EnergyMWh)
	}
	fmt.Printf("Wrote output CSVs to %s\n", *outDir)
}

func cmdLP(args []string) {
	fs := flag.NewFlagSet("lp", flag.ExitOnError)
	caseDir := fs.String("case", "", "Path to the case input directory")
	hours := fs.Int("hours", 8760, "Planning horizon in hours")
	name := fs.String("name", "case", "Case name")
	outDir := fs.String("out", "results", "Output directory")
	_ = fs.Parse(args)

	if *caseDir == "" {
		fmt.Println("--case is required")
		os.Exit(2)
	}
	log := newLogger()

	plan, err := sdom.Build(*caseDir, *hours, false, *name, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build model")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("create output directory")
	}
	path := filepath.Join(*outDir, *name+".lp")
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Msg("create lp file")
	}
	defer f.Close()
	if err := plan.Prob.WriteLP(f); err != nil {
		log.Fatal().Err(err).Msg("write lp file")
	}
	fmt.Printf("Wrote %s (%d rows, %d cols, %d binaries)\n",
		path, plan.Prob.NumConstraints(), plan.Prob.NumVars(), plan.Prob.NumBinaries())
}
