package sdom

import (
	"context"

	"github.com/rs/zerolog"

	"sdom/internal/data"
	"sdom/internal/milp"
	"sdom/internal/results"
	"sdom/internal/solver"
)

// Plan is one built model instance. It owns its problem and registry for the
// whole solve; the two-stage resilience workflow re-bounds the same
// variables and re-emits constraint rows, never recreating variables.
type Plan struct {
	Bundle *data.Bundle
	Prob   *milp.Problem
	Reg    *Registry

	hydro Formulation
	trade Formulation

	Resilience bool

	log zerolog.Logger
}

// Build loads the case directory and assembles a model instance. Component
// order is fixed: load and validate input, declare the symbol registry,
// layer on the sub-formulation variables, assemble the objective, then emit
// the constraint rows (deferred to solve time in resilience mode, which
// emits per stage).
func Build(dir string, hours int, resilience bool, name string, log zerolog.Logger) (*Plan, error) {
	b, err := data.Load(dir, hours, name, log)
	if err != nil {
		return nil, err
	}
	return buildFromBundle(b, resilience, name, log)
}

func buildFromBundle(b *data.Bundle, resilience bool, name string, log zerolog.Logger) (*Plan, error) {
	hydro, err := hydroByName(b.Formulations.Hydro)
	if err != nil {
		return nil, &data.ConfigError{Message: err.Error()}
	}
	trade, err := tradeByName(b.Formulations.Trade)
	if err != nil {
		return nil, &data.ConfigError{Message: err.Error()}
	}

	prob := milp.NewProblem(name)
	reg := newRegistry(b, prob)
	hydro.DeclareVariables(reg)
	trade.DeclareVariables(reg)

	obj := buildObjective(reg)
	hydro.ObjectiveTerms(reg, obj)
	trade.ObjectiveTerms(reg, obj)
	prob.SetObjective(obj)

	p := &Plan{
		Bundle:     b,
		Prob:       prob,
		Reg:        reg,
		hydro:      hydro,
		trade:      trade,
		Resilience: resilience,
		log:        log.With().Str("component", "sdom").Str("case", name).Logger(),
	}
	if !resilience {
		p.emitDefault(true)
		p.log.Info().
			Int("rows", prob.NumConstraints()).
			Int("cols", prob.NumVars()).
			Msg("model assembled")
	}
	return p, nil
}

// Solve runs the plan to completion: one solver invocation, or the design
// and operation stages of the resilience workflow. It blocks until the
// solver returns; the only cancellation levers are ctx and the configured
// time limit.
func Solve(ctx context.Context, p *Plan, cfg solver.Config, workDir string) (*results.Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p.Resilience {
		return p.solveTwoStage(ctx, cfg, workDir)
	}
	sol, err := solver.Solve(ctx, p.Prob, cfg, workDir, p.log)
	if err != nil {
		return nil, err
	}
	return p.extract(sol), nil
}
