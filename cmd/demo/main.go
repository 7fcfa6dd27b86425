// Demo: generate a tiny 24-hour case on disk, assemble the model, and write
// the LP file. Useful for inspecting the formulation without a solver
// binary; point --solver at cbc to solve it too.
package main

import (
	"context"
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
	dir := flag.String("dir", "demo-case", "Directory to generate the case into")
	solverName := flag.String("solver", "", "Solve with this binary (cbc or highs); empty = only write the LP")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := writeCase(*dir); err != nil {
		log.Fatal().Err(err).Msg("generate case")
	}
	fmt.Printf("Generated demo case in %s\n", *dir)

	plan, err := sdom.Build(*dir, 24, false, "demo", log)
	if err != nil {
		log.Fatal().Err(err).Msg("build model")
	}

	outDir := filepath.Join(*dir, "out")
	if *solverName == "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("create output directory")
		}
		path := filepath.Join(outDir, "demo.lp")
		f, err := os.Create(path)
		if err != nil {
			log.Fatal().Err(err).Msg("create lp file")
		}
		defer f.Close()
		if err := plan.Prob.WriteLP(f); err != nil {
			log.Fatal().Err(err).Msg("write lp")
		}
		fmt.Printf("Wrote %s (%d rows, %d cols)\n", path, plan.Prob.NumConstraints(), plan.Prob.NumVars())
		return
	}

	cfg := solver.Config{SolverName: *solverName}
	res, err := sdom.Solve(context.Background(), plan, cfg, outDir)
	if err != nil {
		log.Fatal().Err(err).Msg("solve")
	}
	if err := results.Export(res, outDir); err != nil {
		log.Fatal().Err(err).Msg("export")
	}
	fmt.Printf("Total cost $%.2f/yr, balancing %v\n", res.TotalCost, res.BalancingMW)
}

// writeCase emits a minimal all-balancing system: flat 100 MW demand, one
// zero-output PV plant, one free-CAPEX gas unit at $10/MWh, no clean target.
func writeCase(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]string{
		"Scalars.csv": "name,value\n" +
			"r,0.07\nGenMix_Target,0\nalpha_Nuclear,0\nalpha_Hydro,0\nalpha_OtherRenewables,0\n",
		"Formulations.csv": "component,formulation\n" +
			"hydro,RunOfRiver\nImports,Disabled\nExports,Disabled\n",
		"CapSolar.csv": "plant,capacity_mw,capex_kw,fom_kw_yr,trans_capex,lat,lon\n" +
			"pv1,100,800,10,0,35.0,-110.0\n",
		"CapWind.csv": "plant,capacity_mw,capex_kw,fom_kw_yr,trans_capex,lat,lon\n" +
			"w1,100,1200,20,0,35.0,-110.0\n",
		"StorageData.csv": "parameter,batt\n" +
			"P_Capex,300\nE_Capex,150\nEff,0.9\nMin_Duration,1\nMax_Duration,8\nMax_P,500\nCoupled,1\nFOM,5\nVOM,1\nLifetime,15\nCostRatio,0.5\nMaxCycles,3000\n",
		"Data_BalancingUnits.csv": "parameter,gas\n" +
			"MinCapacity,0\nMaxCapacity,1000\nLifetime,25\nCapex,0\nHeatRate,1\nFuelCost,10\nVOM,0\nFOM,0\n",
	}
	hourly := func(v float64) string {
		s := "hour,mw\n"
		for h := 1; h <= 24; h++ {
			s += fmt.Sprintf("%d,%g\n", h, v)
		}
		return s
	}
	files["Load_hourly.csv"] = hourly(100)
	files["Nucl_hourly.csv"] = hourly(0)
	files["lahy_hourly.csv"] = hourly(0)
	files["otre_hourly.csv"] = hourly(0)

	cf := "hour,pv1\n"
	cfw := "hour,w1\n"
	for h := 1; h <= 24; h++ {
		cf += fmt.Sprintf("%d,0\n", h)
		cfw += fmt.Sprintf("%d,0.3\n", h)
	}
	files["CFSolar.csv"] = cf
	files["CFWind.csv"] = cfw

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
