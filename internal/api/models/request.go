package models

// SolveRequest is the body of POST /api/v1/solve. The case directory must be
// readable by the server process; results are written under the output
// directory and summarized in the response.
type SolveRequest struct {
	CaseDir    string       `json:"case_dir" binding:"required"`
	Hours      int          `json:"hours" binding:"required"`
	Name       string       `json:"name" binding:"required"`
	OutDir     string       `json:"out_dir,omitempty"` // default: results/<name>
	Resilience bool         `json:"resilience,omitempty"`
	Solver     SolverConfig `json:"solver,omitempty"`
}

// SolverConfig mirrors the YAML solver configuration for API callers.
type SolverConfig struct {
	SolverName     string            `json:"solver_name,omitempty"`
	ExecutablePath string            `json:"executable_path,omitempty"`
	Options        map[string]string `json:"options,omitempty"`
	SolveKeywords  map[string]any    `json:"solve_keywords,omitempty"`
}
