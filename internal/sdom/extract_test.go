package sdom

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdom/internal/solver"
)

// trivialSolution is the known optimum of the trivial 24-hour system.
func trivialSolution(hours int) *solver.Solution {
	values := map[string]float64{"Pbal_gas": 100}
	for h := 1; h <= hours; h++ {
		values[fmt.Sprintf("Gbal_gas_%d", h)] = 100
	}
	return &solver.Solution{
		Status:       solver.StatusOptimal,
		Objective:    24000,
		HasIncumbent: true,
		Values:       values,
		WallTime:     250 * time.Millisecond,
	}
}

func TestExtractTrivialSolution(t *testing.T) {
	const hours = 24
	p := buildTest(t, trivialBundle(hours), false)
	res := p.extract(trivialSolution(hours))

	assert.Equal(t, "trivial", res.CaseName)
	assert.Equal(t, 24000.0, res.TotalCost)
	assert.Equal(t, 100.0, res.BalancingMW["gas"])
	assert.Equal(t, 0.0, res.PVBuiltMW)
	assert.InDelta(t, 2400.0, res.EnergyMWh["balancing"], 1e-9)

	require.Len(t, res.Dispatch, hours)
	assert.Equal(t, 1, res.Dispatch[0].Hour)
	assert.Equal(t, 100.0, res.Dispatch[0].DemandMW)
	assert.Equal(t, 100.0, res.Dispatch[0].BalancingMW)
	assert.Equal(t, 0.0, res.Dispatch[0].StorageNetMW)

	require.Len(t, res.Thermal, hours)
	assert.Equal(t, "gas", res.Thermal[0].Unit)
	require.Len(t, res.StorageOp, hours)
	assert.Equal(t, "batt", res.StorageOp[0].Technology)

	assert.Equal(t, "optimal", res.Stats.Status)
	assert.Equal(t, p.Prob.NumConstraints(), res.Stats.Constraints)
	assert.Equal(t, p.Prob.NumVars(), res.Stats.Variables)
	assert.Equal(t, hours, res.Stats.Binaries)
}

func TestExtractCostBreakdownSumsToTotal(t *testing.T) {
	const hours = 24
	b := trivialBundle(hours)
	// Give every term a bite: CAPEX and FOM on the unit, storage built.
	b.Balancing[0].CapexPerKW = 900
	b.Balancing[0].FOMPerKWYr = 11
	p := buildTest(t, b, false)

	values := map[string]float64{
		"Pbal_gas":  100,
		"Fpv_pv1":   0.5,
		"Pch_batt":  20,
		"Pdis_batt": 20,
		"v_E_batt":  80, // LP-safe name of E_batt
	}
	for h := 1; h <= hours; h++ {
		values[fmt.Sprintf("Gbal_gas_%d", h)] = 100
	}
	values["Ddis_batt_3"] = 10
	values["Dch_batt_2"] = 10

	objective := p.Prob.Objective().Eval(p.Prob, values)
	sol := &solver.Solution{
		Status:    solver.StatusOptimal,
		Objective: objective,
		Values:    values,
	}
	res := p.extract(sol)

	sum := 0.0
	for _, v := range res.CostBreakdown {
		sum += v
	}
	assert.InDelta(t, objective, sum, 1e-6)
	assert.InDelta(t, objective, res.TotalCost, 1e-9)

	assert.Equal(t, 50.0, res.PVBuiltMW)
	require.Len(t, res.Storage, 1)
	assert.Equal(t, 80.0, res.Storage[0].EnergyMWh)
	assert.Equal(t, 10.0, res.Storage[0].DischargedMWh)
	assert.Positive(t, res.CostBreakdown["storage_batt_power_capex"])
	assert.Positive(t, res.CostBreakdown["storage_batt_energy_capex"])
	assert.Positive(t, res.CostBreakdown["balancing_capex"])
	assert.Positive(t, res.CostBreakdown["pv_capex"])
}

func TestExtractTradeCosts(t *testing.T) {
	const hours = 4
	p := buildTest(t, tradeBundle(hours), false)

	values := map[string]float64{
		"Imp_1":   10,
		"v_Exp_2": 5, // LP-safe name of Exp_2
	}
	sol := &solver.Solution{Status: solver.StatusOptimal, Values: values}
	res := p.extract(sol)

	// 10 MWh at $40 import, 5 MWh at $25 export.
	assert.InDelta(t, 400.0, res.CostBreakdown["import_cost"], 1e-9)
	assert.InDelta(t, -125.0, res.CostBreakdown["export_revenue"], 1e-9)
	assert.Equal(t, 10.0, res.Dispatch[0].ImportMW)
	assert.Equal(t, 5.0, res.Dispatch[1].ExportMW)
	assert.InDelta(t, 10.0, res.EnergyMWh["import"], 1e-9)
	assert.InDelta(t, 5.0, res.EnergyMWh["export"], 1e-9)
}
