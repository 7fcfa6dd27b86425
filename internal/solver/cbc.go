package solver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// solveCBC runs the COIN-OR CBC command-line binary:
//
//	cbc model.lp -sec 600 -threads 4 solve solution model.sol
//
// Options are forwarded as -name value pairs before the solve command, in
// sorted key order so invocations are reproducible.
func solveCBC(ctx context.Context, cfg Config, lpPath, solPath string) (*Solution, error) {
	bin := cfg.ExecutablePath
	if bin == "" {
		bin = "cbc"
	}

	args := []string{lpPath}
	if tl := cfg.TimeLimitSeconds(); tl > 0 {
		args = append(args, "-sec", strconv.FormatFloat(tl, 'f', -1, 64))
	}
	if th := cfg.Threads(); th > 0 {
		args = append(args, "-threads", strconv.Itoa(th))
	}
	for _, k := range sortedKeys(cfg.Options) {
		args = append(args, "-"+k, cfg.Options[k])
	}
	args = append(args, "solve", "solution", solPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &SolverError{Solver: "cbc", Err: fmt.Errorf("%w: %s", err, lastLine(out))}
	}

	return parseCBCSolution(solPath)
}

// parseCBCSolution reads CBC's text solution file. The first line carries the
// termination condition, e.g.
//
//	Optimal - objective value 24000.00000000
//	Infeasible - objective value 0.00000000
//	Stopped on time limit - objective value 123.45
//
// followed by "index name value reducedCost" rows.
func parseCBCSolution(solPath string) (*Solution, error) {
	f, err := os.Open(solPath)
	if err != nil {
		return nil, &SolverError{Solver: "cbc", Err: fmt.Errorf("read solution file: %w", err)}
	}
	defer f.Close()

	sol := &Solution{Values: map[string]float64{}}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	if !sc.Scan() {
		return nil, &SolverError{Solver: "cbc", Err: fmt.Errorf("empty solution file %s", solPath)}
	}
	header := strings.TrimSpace(sc.Text())
	sol.Status, sol.HasIncumbent = cbcStatus(header)
	if i := strings.Index(header, "objective value"); i >= 0 {
		raw := strings.TrimSpace(header[i+len("objective value"):])
		if v, err := strconv.ParseFloat(strings.Fields(raw)[0], 64); err == nil {
			sol.Objective = v
		}
	}

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		// fields: index, name, value, [reduced cost]
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			continue
		}
		sol.Values[fields[1]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, &SolverError{Solver: "cbc", Err: err}
	}
	return sol, nil
}

func cbcStatus(header string) (Status, bool) {
	lower := strings.ToLower(header)
	switch {
	case strings.HasPrefix(lower, "optimal"):
		return StatusOptimal, true
	case strings.HasPrefix(lower, "infeasible"):
		return StatusInfeasible, false
	case strings.HasPrefix(lower, "unbounded"):
		return StatusUnbounded, false
	case strings.Contains(lower, "time"):
		// "Stopped on time limit"; an objective row means an incumbent exists.
		return StatusTimeLimit, strings.Contains(lower, "objective value")
	default:
		return StatusUnknown, false
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}
