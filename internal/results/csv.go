package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Export writes the five output files for a case under dir:
// OutputGeneration, OutputStorage, OutputSummary, OutputThermalGeneration,
// and OutputInstalledPowerPlants, each suffixed with the case name.
func Export(res *Results, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	writers := []struct {
		prefix string
		fn     func(*Results, string) error
	}{
		{"OutputGeneration", writeGeneration},
		{"OutputStorage", writeStorage},
		{"OutputSummary", writeSummary},
		{"OutputThermalGeneration", writeThermal},
		{"OutputInstalledPowerPlants", writePlants},
	}
	for _, w := range writers {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", w.prefix, res.CaseName))
		if err := w.fn(res, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func writeRows(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeGeneration(res *Results, path string) error {
	header := []string{
		"hour", "demand_mw", "nuclear_mw", "hydro_mw", "other_renewables_mw",
		"pv_mw", "wind_mw", "pv_curtailed_mw", "wind_curtailed_mw",
		"balancing_mw", "import_mw", "export_mw",
		"storage_charge_mw", "storage_discharge_mw", "storage_net_mw",
	}
	rows := make([][]string, 0, len(res.Dispatch))
	for _, r := range res.Dispatch {
		rows = append(rows, []string{
			strconv.Itoa(r.Hour),
			fmtFloat(r.DemandMW), fmtFloat(r.NuclearMW), fmtFloat(r.HydroMW), fmtFloat(r.OtherRenMW),
			fmtFloat(r.PVMW), fmtFloat(r.WindMW), fmtFloat(r.PVCurtailMW), fmtFloat(r.WindCurtailMW),
			fmtFloat(r.BalancingMW), fmtFloat(r.ImportMW), fmtFloat(r.ExportMW),
			fmtFloat(r.StorageChargeMW), fmtFloat(r.StorageDischgMW), fmtFloat(r.StorageNetMW),
		})
	}
	return writeRows(path, header, rows)
}

func writeStorage(res *Results, path string) error {
	header := []string{"hour", "technology", "charge_mw", "discharge_mw", "soc_mwh"}
	rows := make([][]string, 0, len(res.StorageOp))
	for _, r := range res.StorageOp {
		rows = append(rows, []string{
			strconv.Itoa(r.Hour), r.Technology,
			fmtFloat(r.ChargeMW), fmtFloat(r.DischargeMW), fmtFloat(r.SOCMWh),
		})
	}
	return writeRows(path, header, rows)
}

func writeThermal(res *Results, path string) error {
	header := []string{"hour", "unit", "generation_mw"}
	rows := make([][]string, 0, len(res.Thermal))
	for _, r := range res.Thermal {
		rows = append(rows, []string{strconv.Itoa(r.Hour), r.Unit, fmtFloat(r.MW)})
	}
	return writeRows(path, header, rows)
}

func writePlants(res *Results, path string) error {
	header := []string{"technology", "plant", "build_fraction", "built_mw", "latitude", "longitude"}
	rows := make([][]string, 0, len(res.Plants))
	for _, r := range res.Plants {
		rows = append(rows, []string{
			r.Technology, r.Plant,
			fmtFloat(r.Fraction), fmtFloat(r.BuiltMW),
			fmtFloat(r.Latitude), fmtFloat(r.Longitude),
		})
	}
	return writeRows(path, header, rows)
}

// writeSummary emits metric/technology/value/unit rows: totals, installed
// capacities, annual energies, the cost decomposition, and solve statistics.
func writeSummary(res *Results, path string) error {
	header := []string{"metric", "technology", "value", "unit"}
	var rows [][]string
	add := func(metric, tech string, value float64, unit string) {
		rows = append(rows, []string{metric, tech, fmtFloat(value), unit})
	}

	add("total_cost", "system", res.TotalCost, "$/yr")
	add("installed_capacity", "pv", res.PVBuiltMW, "MW")
	add("installed_capacity", "wind", res.WindBuiltMW, "MW")
	for _, name := range sortedKeys(res.BalancingMW) {
		add("installed_capacity", name, res.BalancingMW[name], "MW")
	}
	for _, s := range res.Storage {
		add("installed_charge_power", s.Technology, s.ChargeMW, "MW")
		add("installed_discharge_power", s.Technology, s.DischargeMW, "MW")
		add("installed_energy", s.Technology, s.EnergyMWh, "MWh")
		add("annual_discharge", s.Technology, s.DischargedMWh, "MWh")
	}
	for _, name := range sortedKeys(res.EnergyMWh) {
		add("annual_energy", name, res.EnergyMWh[name], "MWh")
	}
	for _, name := range sortedKeys(res.CostBreakdown) {
		add("cost", name, res.CostBreakdown[name], "$/yr")
	}
	add("constraints", "solver", float64(res.Stats.Constraints), "count")
	add("variables", "solver", float64(res.Stats.Variables), "count")
	add("binary_variables", "solver", float64(res.Stats.Binaries), "count")
	add("solve_wall_time", "solver", res.Stats.WallTime.Seconds(), "s")

	return writeRows(path, header, rows)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
