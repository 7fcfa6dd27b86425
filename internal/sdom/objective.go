package sdom

import (
	"sdom/internal/data"
	"sdom/internal/milp"
)

// Cost coefficients. Input tables carry $/kW and $/kWh; the model operates in
// MW/MWh, hence the factor 1000. These helpers are shared by the objective
// builder and the cost decomposition so the two cannot drift apart.

// vreCapexAnnual is the annualized CAPEX (plant plus transmission) of a VRE
// plant at full build-out, $/yr per unit of F.
func vreCapexAnnual(b *data.Bundle, p data.VREPlant) float64 {
	return (p.CapexPerKW*1000*p.CapacityMW + p.TransCapex) * b.VRECRF
}

// vreFOMAnnual is the fixed O&M of a VRE plant at full build-out, $/yr.
func vreFOMAnnual(p data.VREPlant) float64 {
	return p.FOMPerKWYr * 1000 * p.CapacityMW
}

// balCapexAnnual is the annualized CAPEX of a balancing unit, $/MW-yr.
func balCapexAnnual(u data.BalancingUnit) float64 {
	return u.CapexPerKW * 1000 * u.CRF
}

// balFOMAnnual is the fixed O&M of a balancing unit, $/MW-yr.
func balFOMAnnual(u data.BalancingUnit) float64 {
	return u.FOMPerKWYr * 1000
}

// storPowerChargeAnnual is the charge-side share of annualized power CAPEX
// plus FOM, $/MW-yr. The CostRatio split is economically immaterial for
// coupled technologies but is still written per the formulation.
func storPowerChargeAnnual(st data.StorageTech) float64 {
	return st.CostRatio * (st.PowerCapexPerKW*1000*st.CRF + st.FOMPerKWYr*1000)
}

// storPowerDischargeAnnual is the discharge-side share, $/MW-yr.
func storPowerDischargeAnnual(st data.StorageTech) float64 {
	return (1 - st.CostRatio) * (st.PowerCapexPerKW*1000*st.CRF + st.FOMPerKWYr*1000)
}

// storEnergyAnnual is the annualized energy CAPEX, $/MWh-yr.
func storEnergyAnnual(st data.StorageTech) float64 {
	return st.EnergyCapexKWh * 1000 * st.CRF
}

// buildObjective assembles the annualized system cost
// Z = Zpv + Zwind + Zbal + Zstor; the trade term is contributed by the
// selected trade formulation.
func buildObjective(r *Registry) *milp.Expr {
	b := r.In
	obj := milp.NewExpr()

	for i, p := range b.Solar {
		obj.Add(r.FPV[i], vreCapexAnnual(b, p)+vreFOMAnnual(p))
	}
	for i, w := range b.Wind {
		obj.Add(r.FWind[i], vreCapexAnnual(b, w)+vreFOMAnnual(w))
	}

	for k, u := range b.Balancing {
		obj.Add(r.PBal[k], balCapexAnnual(u)+balFOMAnnual(u))
		mc := u.MarginalCost()
		for h := 0; h < b.Hours; h++ {
			obj.Add(r.GBal[k][h], mc)
		}
	}

	for j, st := range b.Storage {
		obj.Add(r.PCh[j], storPowerChargeAnnual(st))
		obj.Add(r.PDis[j], storPowerDischargeAnnual(st))
		obj.Add(r.E[j], storEnergyAnnual(st))
		// VOM is charged on discharge only.
		for h := 0; h < b.Hours; h++ {
			obj.Add(r.DDis[j][h], st.VOMPerMWh)
		}
	}

	return obj
}
