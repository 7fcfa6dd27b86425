package results

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() *Results {
	return &Results{
		CaseName:    "toy",
		Hours:       2,
		TotalCost:   24000,
		PVBuiltMW:   50,
		WindBuiltMW: 0,
		BalancingMW: map[string]float64{"gas": 100},
		Storage: []StorageBuild{{
			Technology: "batt", ChargeMW: 20, DischargeMW: 20, EnergyMWh: 80, DischargedMWh: 10,
		}},
		EnergyMWh: map[string]float64{"balancing": 200, "pv": 0},
		Dispatch: []DispatchRow{
			{Hour: 1, DemandMW: 100, BalancingMW: 100},
			{Hour: 2, DemandMW: 100, BalancingMW: 100},
		},
		StorageOp: []StorageRow{
			{Hour: 1, Technology: "batt", SOCMWh: 40},
			{Hour: 2, Technology: "batt", ChargeMW: 10, SOCMWh: 50},
		},
		Thermal: []ThermalRow{
			{Hour: 1, Unit: "gas", MW: 100},
			{Hour: 2, Unit: "gas", MW: 100},
		},
		Plants: []PlantRow{
			{Technology: "solar", Plant: "pv1", Fraction: 0.5, BuiltMW: 50, Latitude: 35, Longitude: -110},
		},
		CostBreakdown: map[string]float64{"balancing_fuel_vom": 24000},
		Stats: Stats{
			Constraints: 12, Variables: 20, Binaries: 2,
			Status: "optimal", Objective: 24000, WallTime: time.Second,
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestExportWritesAllFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(sampleResults(), dir))

	for _, name := range []string{
		"OutputGeneration_toy.csv",
		"OutputStorage_toy.csv",
		"OutputSummary_toy.csv",
		"OutputThermalGeneration_toy.csv",
		"OutputInstalledPowerPlants_toy.csv",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestExportGenerationTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(sampleResults(), dir))

	recs := readCSV(t, filepath.Join(dir, "OutputGeneration_toy.csv"))
	require.Len(t, recs, 3)
	assert.Equal(t, "hour", recs[0][0])
	assert.Equal(t, "demand_mw", recs[0][1])
	assert.Equal(t, "1", recs[1][0])
	assert.Equal(t, "100.000000", recs[1][1])
}

func TestExportStorageTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(sampleResults(), dir))

	recs := readCSV(t, filepath.Join(dir, "OutputStorage_toy.csv"))
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"hour", "technology", "charge_mw", "discharge_mw", "soc_mwh"}, recs[0])
	assert.Equal(t, "batt", recs[1][1])
	assert.Equal(t, "50.000000", recs[2][4])
}

func TestExportSummaryContainsCostsAndStats(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Export(sampleResults(), dir))

	recs := readCSV(t, filepath.Join(dir, "OutputSummary_toy.csv"))
	require.NotEmpty(t, recs)
	assert.Equal(t, []string{"metric", "technology", "value", "unit"}, recs[0])

	byMetric := map[string][]string{}
	for _, rec := range recs[1:] {
		byMetric[rec[0]+"/"+rec[1]] = rec
	}
	assert.Contains(t, byMetric, "total_cost/system")
	assert.Contains(t, byMetric, "installed_capacity/gas")
	assert.Contains(t, byMetric, "installed_energy/batt")
	assert.Contains(t, byMetric, "cost/balancing_fuel_vom")
	assert.Contains(t, byMetric, "constraints/solver")
	assert.Equal(t, "24000.000000", byMetric["total_cost/system"][2])
}
