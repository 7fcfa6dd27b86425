// Package solver writes a milp.Problem to an LP file, drives an external
// MILP solver binary over it, and reads the primal solution back. Supported
// binaries: CBC and HiGHS. A solve is atomic from the caller's point of
// view; cancellation is limited to the wall-clock limit forwarded to the
// binary and the passed context.
package solver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"sdom/internal/milp"
)

// Status is the mapped solver termination condition.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusTimeLimit:
		return "time limit"
	default:
		return "unknown"
	}
}

// Solution holds the primal point of a finished solve, keyed by variable
// name. Values absent from the solver's output are zero.
type Solution struct {
	Status       Status
	Objective    float64
	HasIncumbent bool
	Values       map[string]float64
	WallTime     time.Duration
}

// Value looks up a variable of prob in the solution.
func (s *Solution) Value(prob *milp.Problem, v milp.Var) float64 {
	return s.Values[prob.VarName(v)]
}

// InfeasibleError reports an infeasible or unbounded model. There is no
// relaxation fallback; the condition is surfaced verbatim.
type InfeasibleError struct {
	Status Status
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("model is %s; no solution extracted", e.Status)
}

// TimeoutError reports that the solver hit its wall-clock limit.
// HasIncumbent tells whether a feasible incumbent existed at the cutoff.
type TimeoutError struct {
	HasIncumbent bool
}

func (e *TimeoutError) Error() string {
	if e.HasIncumbent {
		return "solver hit the time limit with a feasible incumbent"
	}
	return "solver hit the time limit without a feasible solution"
}

// SolverError wraps process-level failures: missing binary, crash, or
// unreadable output.
type SolverError struct {
	Solver string
	Err    error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver %s: %v", e.Solver, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Solve serializes prob under workDir, runs the configured binary, and
// returns the parsed solution. Working files are left in place for
// inspection. The returned error is one of InfeasibleError, TimeoutError,
// or SolverError; on StatusOptimal the error is nil.
func Solve(ctx context.Context, prob *milp.Problem, cfg Config, workDir string, log zerolog.Logger) (*Solution, error) {
	log = log.With().Str("component", "solver").Str("problem", prob.Name()).Logger()

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, &SolverError{Solver: cfg.SolverName, Err: err}
	}
	lpPath := filepath.Join(workDir, prob.Name()+".lp")
	solPath := filepath.Join(workDir, prob.Name()+".sol")

	f, err := os.Create(lpPath)
	if err != nil {
		return nil, &SolverError{Solver: cfg.SolverName, Err: err}
	}
	if err := prob.WriteLP(f); err != nil {
		f.Close()
		return nil, &SolverError{Solver: cfg.SolverName, Err: fmt.Errorf("write lp: %w", err)}
	}
	if err := f.Close(); err != nil {
		return nil, &SolverError{Solver: cfg.SolverName, Err: err}
	}

	log.Info().
		Int("rows", prob.NumConstraints()).
		Int("cols", prob.NumVars()).
		Int("binaries", prob.NumBinaries()).
		Str("lp", lpPath).
		Msg("invoking solver")

	start := time.Now()
	var sol *Solution
	switch cfg.SolverName {
	case "", "cbc":
		sol, err = solveCBC(ctx, cfg, lpPath, solPath)
	case "highs":
		sol, err = solveHiGHS(ctx, cfg, lpPath, solPath)
	default:
		return nil, &SolverError{Solver: cfg.SolverName, Err: fmt.Errorf("unsupported solver")}
	}
	if err != nil {
		return nil, err
	}
	sol.WallTime = time.Since(start)

	log.Info().
		Stringer("status", sol.Status).
		Float64("objective", sol.Objective).
		Dur("wall_time", sol.WallTime).
		Msg("solver finished")

	switch sol.Status {
	case StatusOptimal:
		return sol, nil
	case StatusInfeasible, StatusUnbounded:
		return sol, &InfeasibleError{Status: sol.Status}
	case StatusTimeLimit:
		return sol, &TimeoutError{HasIncumbent: sol.HasIncumbent}
	default:
		return sol, &SolverError{Solver: cfg.SolverName, Err: fmt.Errorf("unrecognized termination condition")}
	}
}
