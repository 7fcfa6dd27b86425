package solver

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// solveHiGHS runs the HiGHS command-line binary:
//
//	highs --solution_file model.sol --time_limit 600 model.lp
//
// Options are forwarded as --name value pairs.
func solveHiGHS(ctx context.Context, cfg Config, lpPath, solPath string) (*Solution, error) {
	bin := cfg.ExecutablePath
	if bin == "" {
		bin = "highs"
	}

	args := []string{"--solution_file", solPath}
	if tl := cfg.TimeLimitSeconds(); tl > 0 {
		args = append(args, "--time_limit", strconv.FormatFloat(tl, 'f', -1, 64))
	}
	if th := cfg.Threads(); th > 0 {
		args = append(args, "--parallel", "on", "--threads", strconv.Itoa(th))
	}
	for _, k := range sortedKeys(cfg.Options) {
		args = append(args, "--"+k, cfg.Options[k])
	}
	args = append(args, lpPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, &SolverError{Solver: "highs", Err: fmt.Errorf("%w: %s", err, lastLine(out))}
	}

	return parseHiGHSSolution(solPath)
}

// parseHiGHSSolution reads the HiGHS "pretty" solution file:
//
//	Model status
//	Optimal
//
//	# Primal solution values
//	Feasible
//	Objective 24000
//	# Columns 3
//	x1 100
//	...
//	# Rows 2
func parseHiGHSSolution(solPath string) (*Solution, error) {
	f, err := os.Open(solPath)
	if err != nil {
		return nil, &SolverError{Solver: "highs", Err: fmt.Errorf("read solution file: %w", err)}
	}
	defer f.Close()

	sol := &Solution{Values: map[string]float64{}}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	var inColumns, statusNext bool
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "Model status":
			statusNext = true
		case statusNext && line != "":
			sol.Status = highsStatus(line)
			statusNext = false
		case strings.HasPrefix(line, "Objective"):
			fields := strings.Fields(line)
			if len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
					sol.Objective = v
					sol.HasIncumbent = true
				}
			}
		case strings.HasPrefix(line, "# Columns"):
			inColumns = true
		case strings.HasPrefix(line, "# Rows"):
			inColumns = false
		case inColumns && line != "":
			fields := strings.Fields(line)
			if len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
					sol.Values[fields[0]] = v
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &SolverError{Solver: "highs", Err: err}
	}
	if sol.Status == StatusTimeLimit && !sol.HasIncumbent {
		sol.Values = map[string]float64{}
	}
	return sol, nil
}

func highsStatus(line string) Status {
	switch strings.ToLower(line) {
	case "optimal":
		return StatusOptimal
	case "infeasible":
		return StatusInfeasible
	case "unbounded":
		return StatusUnbounded
	case "time limit reached":
		return StatusTimeLimit
	default:
		return StatusUnknown
	}
}
