package sdom

import (
	"fmt"

	"sdom/internal/data"
	"sdom/internal/milp"
)

// runOfRiver pins hourly hydro to the activated historical series: Ghyd_h is
// a fixed-bound variable at α_hyd·ρ_h, so the supply balance reads hydro
// uniformly across variants. No budget constraints.
type runOfRiver struct{}

func (runOfRiver) Name() string { return data.HydroRunOfRiver }

func (runOfRiver) DeclareVariables(r *Registry) {
	alpha := r.In.Scalars.AlphaHydro
	for h := 0; h < r.In.Hours; h++ {
		r.Prob.Fix(r.GHyd[h], alpha*r.In.Hydro[h])
	}
}

func (runOfRiver) EmitConstraints(*Registry) {}

func (runOfRiver) ObjectiveTerms(*Registry, *milp.Expr) {}

// hydroBudget dispatches hydro freely within hourly bounds subject to a
// per-period energy budget. The monthly and daily variants differ only in
// how the bundle partitioned the horizon.
type hydroBudget struct {
	name string
}

func (f hydroBudget) Name() string { return f.name }

func (f hydroBudget) DeclareVariables(r *Registry) {
	alpha := r.In.Scalars.AlphaHydro
	for h := 0; h < r.In.Hours; h++ {
		r.Prob.SetBounds(r.GHyd[h], alpha*r.In.HydroMin[h], alpha*r.In.HydroMax[h])
	}
}

func (f hydroBudget) EmitConstraints(r *Registry) {
	for i, per := range r.In.Periods {
		e := milp.NewExpr()
		for h := per.Start; h < per.End; h++ {
			e.Add(r.GHyd[h], 1)
		}
		r.Prob.AddConstraint(fmt.Sprintf("hydro_budget_%d", i+1), e, milp.Equal, per.Budget)
	}
}

func (f hydroBudget) ObjectiveTerms(*Registry, *milp.Expr) {}
