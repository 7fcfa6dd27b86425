package sdom

import (
	"context"
	"fmt"
	"path/filepath"

	"sdom/internal/milp"
	"sdom/internal/results"
	"sdom/internal/solver"
)

// The two-stage resilience workflow. Stage A ("design") sizes storage to
// ride through a hypothetical outage of the critical load; stage B
// ("operation") re-solves the full year with the stage-A sizings carried as
// lower bounds, so the year-round problem may still build more.

func (p *Plan) solveTwoStage(ctx context.Context, cfg solver.Config, workDir string) (*results.Results, error) {
	lcrit := p.Bundle.CriticalLoad()
	window := p.outageWindow()
	if lcrit <= 0 || len(window) == 0 {
		return nil, fmt.Errorf("resilience solve needs a positive critical load and outage duration")
	}
	p.log.Info().
		Float64("critical_load_mw", lcrit).
		Int("outage_start", window[0]+1).
		Int("outage_hours", len(window)).
		Msg("stage A: resilience design")

	p.prepareStageA(lcrit, window)
	solA, err := solver.Solve(ctx, p.Prob, cfg, filepath.Join(workDir, "stage_a"), p.log)
	if err != nil {
		return nil, err
	}

	p.transition(solA, window)
	p.log.Info().Msg("stage B: full-year operation")
	solB, err := solver.Solve(ctx, p.Prob, cfg, filepath.Join(workDir, "stage_b"), p.log)
	if err != nil {
		return nil, err
	}
	return p.extract(solB), nil
}

// outageWindow is the cyclic hour range [outage_start, outage_start +
// backup duration), 0-indexed.
func (p *Plan) outageWindow() []int {
	s := p.Bundle.Scalars
	if s.BackupHours <= 0 {
		return nil
	}
	window := make([]int, 0, s.BackupHours)
	start := s.OutageStartHour - 1
	if start < 0 {
		start = 0
	}
	for i := 0; i < s.BackupHours && i < p.Bundle.Hours; i++ {
		window = append(window, p.Reg.wrap(start+i))
	}
	return window
}

// prepareStageA re-bounds the existing variables for the design stage and
// emits the stage-A constraint set: balancing generation, fixed clean
// sources, VRE investment and trade are all switched off, the clean-energy
// target drops to zero, and storage alone must carry the critical load
// through the outage window.
func (p *Plan) prepareStageA(lcrit float64, window []int) {
	r := p.Reg

	for _, v := range r.FPV {
		p.Prob.Fix(v, 0)
	}
	for _, v := range r.FWind {
		p.Prob.Fix(v, 0)
	}
	for _, v := range r.PBal {
		p.Prob.Fix(v, 0)
	}
	for k := range r.GBal {
		for h := 0; h < p.Bundle.Hours; h++ {
			p.Prob.Fix(r.GBal[k][h], 0)
		}
	}
	// Fixed clean sources disabled: hydro dispatch collapses to zero.
	for h := 0; h < p.Bundle.Hours; h++ {
		p.Prob.Fix(r.GHyd[h], 0)
	}
	for h := range r.Imp {
		p.Prob.Fix(r.Imp[h], 0)
		p.Prob.Fix(r.Exp[h], 0)
		p.Prob.Fix(r.V[h], 0)
	}

	p.Prob.ResetConstraints()
	emitStorage(r)

	// Outage balance: storage discharge net of charge serves the constant
	// critical peak load in every outage hour.
	for _, h := range window {
		e := milp.NewExpr()
		for j := range p.Bundle.Storage {
			e.Add(r.DDis[j][h], 1)
			e.Add(r.DCh[j][h], -1)
		}
		p.Prob.AddConstraint(fmt.Sprintf("outage_balance_%d", h+1), e, milp.Equal, lcrit)
	}

	// Backup energy: discharge-adjusted stored energy covers the cumulative
	// critical load of the remaining outage window.
	for i, h := range window {
		e := milp.NewExpr()
		for j := range p.Bundle.Storage {
			e.Add(r.S[j][h], r.sqrtEff(j))
		}
		remaining := float64(len(window) - i)
		p.Prob.AddConstraint(fmt.Sprintf("backup_energy_%d", h+1), e, milp.GreaterEq, lcrit*remaining)
	}

	// Fleet-level sizing floors.
	e := milp.NewExpr()
	for j := range p.Bundle.Storage {
		e.Add(r.PDis[j], 1)
	}
	p.Prob.AddConstraint("backup_power", e, milp.GreaterEq, lcrit)

	e = milp.NewExpr()
	for j := range p.Bundle.Storage {
		e.Add(r.E[j], r.sqrtEff(j))
	}
	p.Prob.AddConstraint("backup_capacity", e, milp.GreaterEq, float64(len(window))*lcrit)
}

// transition carries stage-A sizings into stage B as lower bounds (not
// equalities: the year-round problem may build more), restores the full-year
// bounds, forbids balancing generation during the outage window, and
// re-emits the operational constraint set plus the outage SOC reserve.
func (p *Plan) transition(solA *solver.Solution, window []int) {
	r := p.Reg
	b := p.Bundle

	for j := range b.Storage {
		p.Prob.SetLower(r.PCh[j], solA.Value(p.Prob, r.PCh[j]))
		p.Prob.SetLower(r.PDis[j], solA.Value(p.Prob, r.PDis[j]))
		p.Prob.SetLower(r.E[j], solA.Value(p.Prob, r.E[j]))
	}

	for _, v := range r.FPV {
		p.Prob.SetBounds(v, 0, 1)
	}
	for _, v := range r.FWind {
		p.Prob.SetBounds(v, 0, 1)
	}
	for k, u := range b.Balancing {
		p.Prob.SetBounds(r.PBal[k], u.MinCapMW, u.MaxCapMW)
		for h := 0; h < b.Hours; h++ {
			p.Prob.SetBounds(r.GBal[k][h], 0, posInf())
		}
	}
	// Hydro bounds are variant-specific; re-running the declaration restores
	// them on the existing variables.
	p.hydro.DeclareVariables(r)
	for h := range r.Imp {
		p.Prob.SetBounds(r.Imp[h], 0, b.ImportCap[h])
		p.Prob.SetBounds(r.Exp[h], 0, b.ExportCap[h])
		p.Prob.SetBounds(r.V[h], 0, 1)
	}

	// No balancing generation while the outage is in effect.
	for k := range r.GBal {
		for _, h := range window {
			p.Prob.Fix(r.GBal[k][h], 0)
		}
	}

	p.Prob.ResetConstraints()
	p.emitDefault(false)
	p.emitOutageReserve(window)
}

// emitOutageReserve writes the stage-B rolling reserve: outside the outage
// window (and outside the SOC restore period that follows it), stored energy
// must cover the next backup-duration hours of residual load net of
// available VRE. Indices wrap cyclically.
func (p *Plan) emitOutageReserve(window []int) {
	r := p.Reg
	b := p.Bundle
	tb := b.Scalars.BackupHours

	exempt := make(map[int]bool, len(window)+b.Scalars.SOCRestoreHours)
	for _, h := range window {
		exempt[h] = true
	}
	if len(window) > 0 {
		after := window[len(window)-1] + 1
		for i := 0; i < b.Scalars.SOCRestoreHours; i++ {
			exempt[r.wrap(after+i)] = true
		}
	}

	for h := 0; h < b.Hours; h++ {
		if exempt[h] {
			continue
		}
		e := milp.NewExpr()
		for j := range b.Storage {
			e.Add(r.S[j][h], r.sqrtEff(j))
		}
		demand := 0.0
		for i := 0; i < tb; i++ {
			hh := r.wrap(h + i)
			demand += b.Demand[hh]
			// Available VRE is delivery plus curtailment.
			e.Add(r.GPV[hh], 1).Add(r.CPV[hh], 1)
			e.Add(r.GWind[hh], 1).Add(r.CWind[hh], 1)
		}
		p.Prob.AddConstraint(fmt.Sprintf("outage_reserve_%d", h+1), e, milp.GreaterEq, demand)
	}
}
