package sdom

import (
	"fmt"

	"sdom/internal/results"
	"sdom/internal/solver"
)

// extract reads primal values at optimality and packages them as tabular
// views. Cost disaggregation reuses the objective's coefficient helpers, so
// the breakdown sums to the reported total within solver tolerance.
func (p *Plan) extract(sol *solver.Solution) *results.Results {
	r := p.Reg
	b := p.Bundle

	res := &results.Results{
		CaseName:      b.Name,
		Hours:         b.Hours,
		TotalCost:     sol.Objective,
		BalancingMW:   map[string]float64{},
		EnergyMWh:     map[string]float64{},
		CostBreakdown: map[string]float64{},
		Stats: results.Stats{
			Constraints: p.Prob.NumConstraints(),
			Variables:   p.Prob.NumVars(),
			Binaries:    p.Prob.NumBinaries(),
			Status:      sol.Status.String(),
			Objective:   sol.Objective,
			WallTime:    sol.WallTime,
		},
	}

	// Build decisions.
	pvCapex, pvFOM := 0.0, 0.0
	for i, plant := range b.Solar {
		f := sol.Value(p.Prob, r.FPV[i])
		res.PVBuiltMW += f * plant.CapacityMW
		pvCapex += f * vreCapexAnnual(b, plant)
		pvFOM += f * vreFOMAnnual(plant)
		res.Plants = append(res.Plants, results.PlantRow{
			Technology: "solar",
			Plant:      plant.ID,
			Fraction:   f,
			BuiltMW:    f * plant.CapacityMW,
			Latitude:   plant.Latitude,
			Longitude:  plant.Longitude,
		})
	}
	windCapex, windFOM := 0.0, 0.0
	for i, plant := range b.Wind {
		f := sol.Value(p.Prob, r.FWind[i])
		res.WindBuiltMW += f * plant.CapacityMW
		windCapex += f * vreCapexAnnual(b, plant)
		windFOM += f * vreFOMAnnual(plant)
		res.Plants = append(res.Plants, results.PlantRow{
			Technology: "wind",
			Plant:      plant.ID,
			Fraction:   f,
			BuiltMW:    f * plant.CapacityMW,
			Latitude:   plant.Latitude,
			Longitude:  plant.Longitude,
		})
	}
	res.CostBreakdown["pv_capex"] = pvCapex
	res.CostBreakdown["pv_fom"] = pvFOM
	res.CostBreakdown["wind_capex"] = windCapex
	res.CostBreakdown["wind_fom"] = windFOM

	balCapex, balFOM, balFuel := 0.0, 0.0, 0.0
	for k, u := range b.Balancing {
		cap := sol.Value(p.Prob, r.PBal[k])
		res.BalancingMW[u.Name] = cap
		balCapex += cap * balCapexAnnual(u)
		balFOM += cap * balFOMAnnual(u)
		mc := u.MarginalCost()
		for h := 0; h < b.Hours; h++ {
			g := sol.Value(p.Prob, r.GBal[k][h])
			balFuel += g * mc
			res.EnergyMWh["balancing"] += g
		}
	}
	res.CostBreakdown["balancing_capex"] = balCapex
	res.CostBreakdown["balancing_fom"] = balFOM
	res.CostBreakdown["balancing_fuel_vom"] = balFuel

	for j, st := range b.Storage {
		pch := sol.Value(p.Prob, r.PCh[j])
		pdis := sol.Value(p.Prob, r.PDis[j])
		e := sol.Value(p.Prob, r.E[j])
		discharged := 0.0
		for h := 0; h < b.Hours; h++ {
			discharged += sol.Value(p.Prob, r.DDis[j][h])
		}
		res.Storage = append(res.Storage, results.StorageBuild{
			Technology:    st.Name,
			ChargeMW:      pch,
			DischargeMW:   pdis,
			EnergyMWh:     e,
			DischargedMWh: discharged,
		})
		res.CostBreakdown[fmt.Sprintf("storage_%s_power_capex", st.Name)] =
			st.CostRatio*pch*st.PowerCapexPerKW*1000*st.CRF +
				(1-st.CostRatio)*pdis*st.PowerCapexPerKW*1000*st.CRF
		res.CostBreakdown[fmt.Sprintf("storage_%s_energy_capex", st.Name)] = e * storEnergyAnnual(st)
		res.CostBreakdown[fmt.Sprintf("storage_%s_fom", st.Name)] =
			st.CostRatio*pch*st.FOMPerKWYr*1000 + (1-st.CostRatio)*pdis*st.FOMPerKWYr*1000
		res.CostBreakdown[fmt.Sprintf("storage_%s_vom", st.Name)] = discharged * st.VOMPerMWh
	}

	// Hourly tables.
	importCost, exportRevenue := 0.0, 0.0
	for h := 0; h < b.Hours; h++ {
		row := results.DispatchRow{
			Hour:       h + 1,
			DemandMW:   b.Demand[h],
			NuclearMW:  b.Scalars.AlphaNuclear * b.Nuclear[h],
			OtherRenMW: b.Scalars.AlphaOther * b.OtherRen[h],
			HydroMW:    sol.Value(p.Prob, r.GHyd[h]),
			PVMW:       sol.Value(p.Prob, r.GPV[h]),
			WindMW:     sol.Value(p.Prob, r.GWind[h]),
			PVCurtailMW:   sol.Value(p.Prob, r.CPV[h]),
			WindCurtailMW: sol.Value(p.Prob, r.CWind[h]),
		}
		for k := range b.Balancing {
			g := sol.Value(p.Prob, r.GBal[k][h])
			row.BalancingMW += g
			res.Thermal = append(res.Thermal, results.ThermalRow{
				Hour: h + 1, Unit: b.Balancing[k].Name, MW: g,
			})
		}
		for j := range b.Storage {
			ch := sol.Value(p.Prob, r.DCh[j][h])
			dis := sol.Value(p.Prob, r.DDis[j][h])
			row.StorageChargeMW += ch
			row.StorageDischgMW += dis
			res.StorageOp = append(res.StorageOp, results.StorageRow{
				Hour:        h + 1,
				Technology:  b.Storage[j].Name,
				ChargeMW:    ch,
				DischargeMW: dis,
				SOCMWh:      sol.Value(p.Prob, r.S[j][h]),
			})
		}
		row.StorageNetMW = row.StorageDischgMW - row.StorageChargeMW
		if r.Imp != nil {
			row.ImportMW = sol.Value(p.Prob, r.Imp[h])
			row.ExportMW = sol.Value(p.Prob, r.Exp[h])
			importCost += row.ImportMW * b.ImportPrice[h]
			exportRevenue += row.ExportMW * b.ExportPrice[h]
		}
		res.Dispatch = append(res.Dispatch, row)

		res.EnergyMWh["pv"] += row.PVMW
		res.EnergyMWh["wind"] += row.WindMW
		res.EnergyMWh["hydro"] += row.HydroMW
		res.EnergyMWh["nuclear"] += row.NuclearMW
		res.EnergyMWh["other_renewables"] += row.OtherRenMW
		res.EnergyMWh["pv_curtailed"] += row.PVCurtailMW
		res.EnergyMWh["wind_curtailed"] += row.WindCurtailMW
		res.EnergyMWh["storage_charge"] += row.StorageChargeMW
		res.EnergyMWh["storage_discharge"] += row.StorageDischgMW
		res.EnergyMWh["import"] += row.ImportMW
		res.EnergyMWh["export"] += row.ExportMW
	}
	if r.Imp != nil {
		res.CostBreakdown["import_cost"] = importCost
		res.CostBreakdown["export_revenue"] = -exportRevenue
	}

	return res
}
