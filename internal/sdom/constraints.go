package sdom

import (
	"fmt"

	"sdom/internal/milp"
)

// emitDefault writes the full-year constraint set in deterministic order:
// VRE balances, supply balance, clean-energy cap, balancing dispatch,
// storage envelope and dynamics, the fleet cap (single-stage only), then the
// hydro and trade sub-formulation rows.
func (p *Plan) emitDefault(fleetCap bool) {
	r := p.Reg
	emitVREBalance(r)
	emitSupplyBalance(r)
	emitCleanCap(r)
	emitBalancingDispatch(r)
	emitStorage(r)
	if fleetCap {
		emitFleetCap(r)
	}
	p.hydro.EmitConstraints(r)
	p.trade.EmitConstraints(r)
}

// emitVREBalance ties available VRE to delivery plus curtailment per
// technology: Σ_p σ_ph·cap_p·F_p = Gpv_h + Cpv_h, and the wind analogue.
// Curtailed energy never reaches the supply balance and is therefore free.
func emitVREBalance(r *Registry) {
	for h := 0; h < r.In.Hours; h++ {
		e := r.availPV(h).Add(r.GPV[h], -1).Add(r.CPV[h], -1)
		r.Prob.AddConstraint(fmt.Sprintf("pv_balance_%d", h+1), e, milp.Equal, 0)
	}
	for h := 0; h < r.In.Hours; h++ {
		e := r.availWind(h).Add(r.GWind[h], -1).Add(r.CWind[h], -1)
		r.Prob.AddConstraint(fmt.Sprintf("wind_balance_%d", h+1), e, milp.Equal, 0)
	}
}

// emitSupplyBalance writes the hourly supply/demand equality. Imports and
// exports appear only when the trade formulation declared them.
func emitSupplyBalance(r *Registry) {
	for h := 0; h < r.In.Hours; h++ {
		e := milp.NewExpr().
			Add(r.GPV[h], 1).
			Add(r.GWind[h], 1).
			Add(r.GHyd[h], 1)
		for k := range r.In.Balancing {
			e.Add(r.GBal[k][h], 1)
		}
		for j := range r.In.Storage {
			e.Add(r.DDis[j][h], 1)
			e.Add(r.DCh[j][h], -1)
		}
		if r.Imp != nil {
			e.Add(r.Imp[h], 1)
			e.Add(r.Exp[h], -1)
		}
		rhs := r.In.Demand[h] - r.fixedClean(h)
		r.Prob.AddConstraint(fmt.Sprintf("balance_%d", h+1), e, milp.Equal, rhs)
	}
}

// emitCleanCap bounds annual balancing-unit energy by (1−τ) of the
// net-load-adjusted demand Σ_h(d_h + Σ_j Dch_jh − Σ_j Ddis_jh).
func emitCleanCap(r *Registry) {
	tau := r.In.Scalars.CleanTarget
	e := milp.NewExpr()
	for k := range r.In.Balancing {
		for h := 0; h < r.In.Hours; h++ {
			e.Add(r.GBal[k][h], 1)
		}
	}
	demandSum := 0.0
	for h := 0; h < r.In.Hours; h++ {
		demandSum += r.In.Demand[h]
		for j := range r.In.Storage {
			e.Add(r.DCh[j][h], -(1 - tau))
			e.Add(r.DDis[j][h], 1-tau)
		}
	}
	r.Prob.AddConstraint("clean_energy_cap", e, milp.LessEq, (1-tau)*demandSum)
}

// emitBalancingDispatch limits each unit's hourly output to its built
// capacity.
func emitBalancingDispatch(r *Registry) {
	for k := range r.In.Balancing {
		for h := 0; h < r.In.Hours; h++ {
			e := milp.Term(r.GBal[k][h], 1).Add(r.PBal[k], -1)
			r.Prob.AddConstraint(fmt.Sprintf("bal_dispatch_%s_%d", r.In.Balancing[k].Name, h+1), e, milp.LessEq, 0)
		}
	}
}

// emitStorage writes the storage operating envelope: power and energy
// bounds, charge-xor-discharge with the per-technology tight big-M, the
// cyclic SOC recursion, the duration window, the annualized cycle cap, and
// the coupled charge/discharge equality.
func emitStorage(r *Registry) {
	for j, st := range r.In.Storage {
		name := st.Name
		rootEff := r.sqrtEff(j)
		for h := 0; h < r.In.Hours; h++ {
			e := milp.Term(r.DCh[j][h], 1).Add(r.PCh[j], -1)
			r.Prob.AddConstraint(fmt.Sprintf("charge_power_%s_%d", name, h+1), e, milp.LessEq, 0)

			e = milp.Term(r.DDis[j][h], 1).Add(r.PDis[j], -1)
			r.Prob.AddConstraint(fmt.Sprintf("discharge_power_%s_%d", name, h+1), e, milp.LessEq, 0)

			e = milp.Term(r.S[j][h], 1).Add(r.E[j], -1)
			r.Prob.AddConstraint(fmt.Sprintf("soc_cap_%s_%d", name, h+1), e, milp.LessEq, 0)

			// Charge xor discharge; M = p̄_j is tight per technology.
			e = milp.Term(r.DCh[j][h], 1).Add(r.U[j][h], -st.MaxPowerMW)
			r.Prob.AddConstraint(fmt.Sprintf("charge_ind_%s_%d", name, h+1), e, milp.LessEq, 0)
			e = milp.Term(r.DDis[j][h], 1).Add(r.U[j][h], st.MaxPowerMW)
			r.Prob.AddConstraint(fmt.Sprintf("discharge_ind_%s_%d", name, h+1), e, milp.LessEq, st.MaxPowerMW)

			// Cyclic SOC recursion; the wrap at h=1 is the ordinary row with
			// prev(1) = N_H, not a special case.
			e = milp.Term(r.S[j][h], 1).
				Add(r.S[j][r.prev(h)], -1).
				Add(r.DCh[j][h], -rootEff).
				Add(r.DDis[j][h], 1/rootEff)
			r.Prob.AddConstraint(fmt.Sprintf("soc_%s_%d", name, h+1), e, milp.Equal, 0)
		}

		// Duration window relative to discharge power, corrected by 1/√η.
		e := milp.Term(r.E[j], 1).Add(r.PDis[j], -st.MinDurationH/rootEff)
		r.Prob.AddConstraint(fmt.Sprintf("duration_min_%s", name), e, milp.GreaterEq, 0)
		e = milp.Term(r.E[j], 1).Add(r.PDis[j], -st.MaxDurationH/rootEff)
		r.Prob.AddConstraint(fmt.Sprintf("duration_max_%s", name), e, milp.LessEq, 0)

		// Annualized cycle cap on discharged energy.
		if st.MaxCycles > 0 {
			e = milp.NewExpr()
			for h := 0; h < r.In.Hours; h++ {
				e.Add(r.DDis[j][h], 1)
			}
			e.Add(r.E[j], -st.MaxCycles/st.LifetimeYr)
			r.Prob.AddConstraint(fmt.Sprintf("cycle_cap_%s", name), e, milp.LessEq, 0)
		}

		if st.Coupled {
			e = milp.Term(r.PCh[j], 1).Add(r.PDis[j], -1)
			r.Prob.AddConstraint(fmt.Sprintf("coupled_%s", name), e, milp.Equal, 0)
		}
	}
}

// emitFleetCap bounds total balancing capacity by the peak residual demand
// after fixed clean sources. Applied in the single-stage solve only.
func emitFleetCap(r *Registry) {
	if len(r.PBal) == 0 {
		return
	}
	e := milp.NewExpr()
	for k := range r.PBal {
		e.Add(r.PBal[k], 1)
	}
	r.Prob.AddConstraint("bal_fleet_cap", e, milp.LessEq, r.In.PeakResidual)
}
