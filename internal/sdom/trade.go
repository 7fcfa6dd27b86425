package sdom

import (
	"fmt"

	"sdom/internal/data"
	"sdom/internal/milp"
)

// tradeDisabled contributes nothing: no import/export variables exist and the
// supply balance simply omits them.
type tradeDisabled struct{}

func (tradeDisabled) Name() string { return data.TradeDisabled }

func (tradeDisabled) DeclareVariables(*Registry) {}

func (tradeDisabled) EmitConstraints(*Registry) {}

func (tradeDisabled) ObjectiveTerms(*Registry, *milp.Expr) {}

// signEps breaks the sign degeneracy of the net-load indicator at Λ_h = 0.
const signEps = 1e-3

// priceNetLoad models price-driven trade tied to the sign of the net load
// Λ_h = d_h − fixed clean − available VRE. Imports are allowed only in
// net-deficit hours (V_h = 1), exports only in net-surplus hours (V_h = 0).
type priceNetLoad struct{}

func (priceNetLoad) Name() string { return data.TradePriceNetLoad }

func (priceNetLoad) DeclareVariables(r *Registry) {
	for h := 0; h < r.In.Hours; h++ {
		r.Imp = append(r.Imp, r.Prob.NewVar(fmt.Sprintf("Imp_%d", h+1), 0, r.In.ImportCap[h], milp.Continuous))
		r.Exp = append(r.Exp, r.Prob.NewVar(fmt.Sprintf("Exp_%d", h+1), 0, r.In.ExportCap[h], milp.Continuous))
		r.V = append(r.V, r.Prob.NewVar(fmt.Sprintf("V_%d", h+1), 0, 1, milp.Binary))
	}
}

func (priceNetLoad) EmitConstraints(r *Registry) {
	b := r.In
	bigM := b.TradeBigM
	expCapMax := 0.0
	for _, c := range b.ExportCap {
		if c > expCapMax {
			expCapMax = c
		}
	}

	for h := 0; h < b.Hours; h++ {
		// Λ_h as an expression: constant demand-minus-fixed-clean part plus
		// the negated available-VRE terms in F.
		netLoad := func() *milp.Expr {
			e := milp.NewExpr()
			e.AddConst(b.Demand[h] - r.fixedClean(h) - b.Scalars.AlphaHydro*b.Hydro[h])
			e.AddExpr(r.availPV(h), -1)
			e.AddExpr(r.availWind(h), -1)
			return e
		}

		// Λ_h <= M·V_h
		e := netLoad().Add(r.V[h], -bigM)
		r.Prob.AddConstraint(fmt.Sprintf("netload_pos_%d", h+1), e, milp.LessEq, 0)

		// −Λ_h + ε <= M·(1−V_h)  ⇔  −Λ_h + M·V_h <= M − ε
		e = milp.NewExpr().AddExpr(netLoad(), -1).Add(r.V[h], bigM)
		r.Prob.AddConstraint(fmt.Sprintf("netload_neg_%d", h+1), e, milp.LessEq, bigM-signEps)

		// Imports only in deficit hours.
		e = milp.Term(r.Imp[h], 1).Add(r.V[h], -b.Demand[h])
		r.Prob.AddConstraint(fmt.Sprintf("import_sign_%d", h+1), e, milp.LessEq, 0)

		// Exports only in surplus hours.
		e = milp.Term(r.Exp[h], 1).Add(r.V[h], expCapMax)
		r.Prob.AddConstraint(fmt.Sprintf("export_sign_%d", h+1), e, milp.LessEq, expCapMax)
	}
}

func (priceNetLoad) ObjectiveTerms(r *Registry, obj *milp.Expr) {
	for h := 0; h < r.In.Hours; h++ {
		obj.Add(r.Imp[h], r.In.ImportPrice[h])
		obj.Add(r.Exp[h], -r.In.ExportPrice[h])
	}
}
