// Package sdom assembles and solves the storage deployment optimization
// model: a least-cost portfolio and hourly dispatch of VRE, balancing units,
// and storage technologies meeting a demand profile under a clean-energy
// share target. The model is built as plain data (internal/milp) from an
// input bundle (internal/data) plus pluggable hydro/trade sub-formulations,
// then handed to a solver binary (internal/solver).
package sdom

import (
	"fmt"
	"math"

	"sdom/internal/data"
	"sdom/internal/milp"
)

// Registry declares every set-indexed variable of the model and provides
// name-indexed lookup for the objective and constraint builders. Builders
// read from the registry only; they never reach back into raw input tables.
//
// Hour slices are 0-indexed internally; emitted variable names use the
// 1-indexed hour convention of the input files.
type Registry struct {
	In   *data.Bundle
	Prob *milp.Problem

	// Investment decisions.
	FPV   []milp.Var // build fraction per PV plant, [0,1]
	FWind []milp.Var // build fraction per wind plant, [0,1]
	PBal  []milp.Var // MW per balancing unit
	PCh   []milp.Var // charge power MW per storage tech
	PDis  []milp.Var // discharge power MW per storage tech
	E     []milp.Var // energy capacity MWh per storage tech

	// Hourly dispatch.
	GPV   []milp.Var   // delivered PV MW
	GWind []milp.Var   // delivered wind MW
	CPV   []milp.Var   // curtailed PV MW
	CWind []milp.Var   // curtailed wind MW
	GHyd  []milp.Var   // hydro MW; bounds set by the hydro sub-formulation
	GBal  [][]milp.Var // [unit][hour] MW
	DCh   [][]milp.Var // [tech][hour] charge MW
	DDis  [][]milp.Var // [tech][hour] discharge MW
	S     [][]milp.Var // [tech][hour] state of charge MWh
	U     [][]milp.Var // [tech][hour] charge indicator, binary

	// Trade; nil unless the PriceNetLoad formulation declares them.
	Imp []milp.Var // import MW
	Exp []milp.Var // export MW
	V   []milp.Var // net-load sign indicator, binary
}

func posInf() float64 { return math.Inf(1) }

// newRegistry declares the common variable set with the bounds of §3 of the
// model description. Sub-formulation variables (trade) and bound adjustments
// (hydro) are layered on afterwards.
func newRegistry(b *data.Bundle, prob *milp.Problem) *Registry {
	r := &Registry{In: b, Prob: prob}
	nH := b.Hours

	for _, p := range b.Solar {
		r.FPV = append(r.FPV, prob.NewVar("Fpv_"+p.ID, 0, 1, milp.Continuous))
	}
	for _, w := range b.Wind {
		r.FWind = append(r.FWind, prob.NewVar("Fwind_"+w.ID, 0, 1, milp.Continuous))
	}
	for _, u := range b.Balancing {
		r.PBal = append(r.PBal, prob.NewVar("Pbal_"+u.Name, u.MinCapMW, u.MaxCapMW, milp.Continuous))
	}
	for _, st := range b.Storage {
		r.PCh = append(r.PCh, prob.NewVar("Pch_"+st.Name, 0, st.MaxPowerMW, milp.Continuous))
		r.PDis = append(r.PDis, prob.NewVar("Pdis_"+st.Name, 0, st.MaxPowerMW, milp.Continuous))
		r.E = append(r.E, prob.NewVar("E_"+st.Name, 0, posInf(), milp.Continuous))
	}

	hourVars := func(name string) []milp.Var {
		vs := make([]milp.Var, nH)
		for h := 0; h < nH; h++ {
			vs[h] = prob.NewVar(fmt.Sprintf("%s_%d", name, h+1), 0, posInf(), milp.Continuous)
		}
		return vs
	}
	r.GPV = hourVars("Gpv")
	r.GWind = hourVars("Gwind")
	r.CPV = hourVars("Cpv")
	r.CWind = hourVars("Cwind")
	r.GHyd = hourVars("Ghyd")

	for _, u := range b.Balancing {
		r.GBal = append(r.GBal, hourVars("Gbal_"+u.Name))
	}
	for _, st := range b.Storage {
		r.DCh = append(r.DCh, hourVars("Dch_"+st.Name))
		r.DDis = append(r.DDis, hourVars("Ddis_"+st.Name))
		r.S = append(r.S, hourVars("S_"+st.Name))
		us := make([]milp.Var, nH)
		for h := 0; h < nH; h++ {
			us[h] = prob.NewVar(fmt.Sprintf("U_%s_%d", st.Name, h+1), 0, 1, milp.Binary)
		}
		r.U = append(r.U, us)
	}
	return r
}

// prev is the cyclically preceding hour: prev(0) = N_H-1.
func (r *Registry) prev(h int) int {
	if h == 0 {
		return r.In.Hours - 1
	}
	return h - 1
}

// wrap maps an arbitrary non-negative hour offset back into the horizon.
func (r *Registry) wrap(h int) int { return h % r.In.Hours }

// sqrtEff is the one-way efficiency of storage tech j: the round-trip
// efficiency split evenly between charge and discharge.
func (r *Registry) sqrtEff(j int) float64 {
	return math.Sqrt(r.In.Storage[j].Eff)
}

// availPV builds the hour-h available PV expression Σ_p σ_ph·cap_p·F_p.
func (r *Registry) availPV(h int) *milp.Expr {
	e := milp.NewExpr()
	for i, p := range r.In.Solar {
		e.Add(r.FPV[i], p.CF[h]*p.CapacityMW)
	}
	return e
}

// availWind builds the hour-h available wind expression Σ_w ζ_wh·cap_w·F_w.
func (r *Registry) availWind(h int) *milp.Expr {
	e := milp.NewExpr()
	for i, w := range r.In.Wind {
		e.Add(r.FWind[i], w.CF[h]*w.CapacityMW)
	}
	return e
}

// fixedClean is the hour-h activated non-dispatchable clean supply
// α_nuc·ν_h + α_oth·ω_h (hydro enters through its own variable).
func (r *Registry) fixedClean(h int) float64 {
	s := r.In.Scalars
	return s.AlphaNuclear*r.In.Nuclear[h] + s.AlphaOther*r.In.OtherRen[h]
}
