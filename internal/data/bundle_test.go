package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourlyCSV(hours int, v float64) string {
	s := "hour,mw\n"
	for h := 1; h <= hours; h++ {
		s += fmt.Sprintf("%d,%g\n", h, v)
	}
	return s
}

func cfCSV(hours int, id string, v float64) string {
	s := "hour," + id + "\n"
	for h := 1; h <= hours; h++ {
		s += fmt.Sprintf("%d,%g\n", h, v)
	}
	return s
}

// baseCase is a complete, valid 24-hour case. Tests override or delete
// individual files to probe failure modes.
func baseCase(hours int) map[string]string {
	return map[string]string{
		"Scalars.csv": "name,value\n" +
			"r,0.07\nGenMix_Target,0.5\nalpha_Nuclear,1\nalpha_Hydro,1\nalpha_OtherRenewables,1\n",
		"Formulations.csv":        "component,formulation\nhydro,RunOfRiver\nImports,Disabled\nExports,Disabled\n",
		"Load_hourly.csv":         hourlyCSV(hours, 100),
		"Nucl_hourly.csv":         hourlyCSV(hours, 10),
		"lahy_hourly.csv":         hourlyCSV(hours, 5),
		"otre_hourly.csv":         hourlyCSV(hours, 2),
		"CFSolar.csv":             cfCSV(hours, "pv1", 0.25),
		"CFWind.csv":              cfCSV(hours, "w1", 0.4),
		"CapSolar.csv":            "plant,capacity,capex,fom,trans,lat,lon\npv1,200,800,10,0,35,-110\n",
		"CapWind.csv":             "plant,capacity,capex,fom,trans,lat,lon\nw1,150,1200,20,0,35,-110\n",
		"StorageData.csv": "parameter,batt\n" +
			"P_Capex,300\nE_Capex,150\nEff,0.81\nMin_Duration,1\nMax_Duration,8\nMax_P,500\nCoupled,1\nFOM,5\nVOM,1\nLifetime,15\nCostRatio,0.5\nMaxCycles,3000\n",
		"Data_BalancingUnits.csv": "parameter,gas\n" +
			"MinCapacity,0\nMaxCapacity,1000\nLifetime,25\nCapex,900\nHeatRate,7\nFuelCost,4\nVOM,2\nFOM,11\n",
	}
}

func writeCase(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func loadCase(t *testing.T, files map[string]string, hours int) (*Bundle, error) {
	t.Helper()
	dir := writeCase(t, files)
	return Load(dir, hours, "test", zerolog.Nop())
}

func TestLoadValidCase(t *testing.T) {
	b, err := loadCase(t, baseCase(24), 24)
	require.NoError(t, err)

	assert.Equal(t, 24, b.Hours)
	assert.Equal(t, 0.07, b.Scalars.DiscountRate)
	assert.Equal(t, 0.5, b.Scalars.CleanTarget)
	require.Len(t, b.Solar, 1)
	require.Len(t, b.Wind, 1)
	require.Len(t, b.Storage, 1)
	require.Len(t, b.Balancing, 1)

	assert.Equal(t, HydroRunOfRiver, b.Formulations.Hydro)
	assert.Equal(t, TradeDisabled, b.Formulations.Trade)

	// CRF(0.07, 30) for VRE.
	wantCRF := 0.07 * math.Pow(1.07, 30) / (math.Pow(1.07, 30) - 1)
	assert.InDelta(t, wantCRF, b.VRECRF, 1e-12)
	assert.InDelta(t, CRF(0.07, 15), b.Storage[0].CRF, 1e-12)

	// Peak residual: 100 - 10 - 5 - 2.
	assert.InDelta(t, 83.0, b.PeakResidual, 1e-9)
	assert.InDelta(t, 100.0, b.PeakDemand, 1e-9)

	// Marginal cost: 7*4 + 2.
	assert.InDelta(t, 30.0, b.Balancing[0].MarginalCost(), 1e-12)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	files := baseCase(24)
	delete(files, "Load_hourly.csv")

	_, err := loadCase(t, files, 24)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadUnknownFormulation(t *testing.T) {
	files := baseCase(24)
	files["Formulations.csv"] = "component,formulation\nhydro,WeeklyBudget\n"

	_, err := loadCase(t, files, 24)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "WeeklyBudget")
}

func TestLoadTradeFormulationsMustAgree(t *testing.T) {
	files := baseCase(24)
	files["Formulations.csv"] = "component,formulation\nhydro,RunOfRiver\nImports,PriceNetLoad\nExports,Disabled\n"

	_, err := loadCase(t, files, 24)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadCapacityFactorOutOfRange(t *testing.T) {
	files := baseCase(24)
	files["CFSolar.csv"] = cfCSV(24, "pv1", 1.5)

	_, err := loadCase(t, files, 24)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
}

func TestLoadBadEfficiency(t *testing.T) {
	files := baseCase(24)
	files["StorageData.csv"] = "parameter,batt\n" +
		"P_Capex,300\nE_Capex,150\nEff,1.2\nMin_Duration,1\nMax_Duration,8\nMax_P,500\nCoupled,1\nFOM,5\nVOM,1\nLifetime,15\nCostRatio,0.5\nMaxCycles,3000\n"

	_, err := loadCase(t, files, 24)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, dataErr.Field, "Eff")
}

func TestLoadNegativeDiscountRate(t *testing.T) {
	files := baseCase(24)
	files["Scalars.csv"] = "name,value\nr,-0.01\nGenMix_Target,0.5\n"

	_, err := loadCase(t, files, 24)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
}

func TestLoadDropsMisalignedPlants(t *testing.T) {
	files := baseCase(24)
	// pv2 has a CF column but no capacity row; pv3 has a capacity row but no
	// CF column. Both are dropped, pv1 survives.
	files["CFSolar.csv"] = func() string {
		s := "hour,pv1,pv2\n"
		for h := 1; h <= 24; h++ {
			s += fmt.Sprintf("%d,0.25,0.3\n", h)
		}
		return s
	}()
	files["CapSolar.csv"] = "plant,capacity,capex,fom,trans,lat,lon\n" +
		"pv1,200,800,10,0,35,-110\npv3,100,700,9,0,36,-111\n"

	b, err := loadCase(t, files, 24)
	require.NoError(t, err)
	require.Len(t, b.Solar, 1)
	assert.Equal(t, "pv1", b.Solar[0].ID)
}

func TestLoadMonthlyBudgetSinglePeriod(t *testing.T) {
	files := baseCase(744)
	for _, name := range []string{"Load_hourly.csv", "Nucl_hourly.csv", "otre_hourly.csv"} {
		files[name] = hourlyCSV(744, 100)
	}
	files["lahy_hourly.csv"] = hourlyCSV(744, 5)
	files["CFSolar.csv"] = cfCSV(744, "pv1", 0.25)
	files["CFWind.csv"] = cfCSV(744, "w1", 0.4)
	files["Formulations.csv"] = "component,formulation\nhydro,MonthlyBudget\nImports,Disabled\nExports,Disabled\n"
	files["lahy_max_hourly.csv"] = hourlyCSV(744, 10)
	files["lahy_min_hourly.csv"] = hourlyCSV(744, 0)

	b, err := loadCase(t, files, 744)
	require.NoError(t, err)
	require.Len(t, b.Periods, 1)
	p := b.Periods[0]
	assert.Equal(t, 0, p.Start)
	assert.Equal(t, 744, p.End)
	// alpha_Hydro = 1; budget is the summed historical series.
	assert.InDelta(t, 744*5.0, p.Budget, 1e-6)
}

func TestLoadDailyBudgetPeriods(t *testing.T) {
	files := baseCase(48)
	for _, name := range []string{"Load_hourly.csv", "Nucl_hourly.csv", "otre_hourly.csv"} {
		files[name] = hourlyCSV(48, 100)
	}
	files["lahy_hourly.csv"] = hourlyCSV(48, 5)
	files["CFSolar.csv"] = cfCSV(48, "pv1", 0.25)
	files["CFWind.csv"] = cfCSV(48, "w1", 0.4)
	files["Formulations.csv"] = "component,formulation\nhydro,DailyBudget\nImports,Disabled\nExports,Disabled\n"
	files["lahy_max_hourly.csv"] = hourlyCSV(48, 10)
	files["lahy_min_hourly.csv"] = hourlyCSV(48, 0)

	b, err := loadCase(t, files, 48)
	require.NoError(t, err)
	require.Len(t, b.Periods, 2)
	assert.Equal(t, 24, b.Periods[0].End)
	assert.Equal(t, 24, b.Periods[1].Start)
}

func TestLoadDailyBudgetBadHorizon(t *testing.T) {
	files := baseCase(25)
	for _, name := range []string{"Load_hourly.csv", "Nucl_hourly.csv", "otre_hourly.csv", "lahy_hourly.csv"} {
		files[name] = hourlyCSV(25, 100)
	}
	files["CFSolar.csv"] = cfCSV(25, "pv1", 0.25)
	files["CFWind.csv"] = cfCSV(25, "w1", 0.4)
	files["Formulations.csv"] = "component,formulation\nhydro,DailyBudget\nImports,Disabled\nExports,Disabled\n"
	files["lahy_max_hourly.csv"] = hourlyCSV(25, 10)
	files["lahy_min_hourly.csv"] = hourlyCSV(25, 0)

	_, err := loadCase(t, files, 25)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, dataErr.Message, "multiple")
}

func TestLoadBudgetRequiresBoundFiles(t *testing.T) {
	files := baseCase(24)
	files["Formulations.csv"] = "component,formulation\nhydro,DailyBudget\nImports,Disabled\nExports,Disabled\n"

	_, err := loadCase(t, files, 24)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadTradeSeries(t *testing.T) {
	files := baseCase(24)
	files["Formulations.csv"] = "component,formulation\nhydro,RunOfRiver\nImports,PriceNetLoad\nExports,PriceNetLoad\n"
	files["Import_Cap.csv"] = hourlyCSV(24, 50)
	files["Import_Prices.csv"] = hourlyCSV(24, 40)
	files["Export_Cap.csv"] = hourlyCSV(24, 30)
	files["Export_Prices.csv"] = hourlyCSV(24, 25)

	b, err := loadCase(t, files, 24)
	require.NoError(t, err)
	assert.Equal(t, TradePriceNetLoad, b.Formulations.Trade)
	assert.Equal(t, 50.0, b.ImportCap[0])
	assert.Equal(t, 25.0, b.ExportPrice[23])
}

func TestCriticalLoad(t *testing.T) {
	files := baseCase(24)
	files["Scalars.csv"] = "name,value\n" +
		"r,0.07\nGenMix_Target,0.5\nalpha_Nuclear,1\nalpha_Hydro,1\nalpha_OtherRenewables,1\n" +
		"CriticalLoadFrac,0.4\nmax_backup_power_dur,24\noutage_start_hour,5\nSOC_restore_hours,12\n"

	b, err := loadCase(t, files, 24)
	require.NoError(t, err)
	// No explicit critical_peak_load: derive from the fraction of peak.
	assert.InDelta(t, 40.0, b.CriticalLoad(), 1e-9)

	files["Scalars.csv"] += "critical_peak_load,55\n"
	b, err = loadCase(t, files, 24)
	require.NoError(t, err)
	assert.Equal(t, 55.0, b.CriticalLoad())
}

func TestCRF(t *testing.T) {
	// One-year lifetime annualizes to (1+r).
	assert.InDelta(t, 1.07, CRF(0.07, 1), 1e-12)
	// Long lifetimes approach r.
	assert.InDelta(t, 0.07, CRF(0.07, 1000), 1e-6)
}
