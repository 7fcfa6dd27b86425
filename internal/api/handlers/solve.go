package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sdom/internal/api/models"
	"sdom/internal/data"
	"sdom/internal/results"
	"sdom/internal/sdom"
	"sdom/internal/solver"
)

// SolveHandler exposes model build + solve + export as a request/response
// endpoint. Solves run synchronously; the handler blocks for the duration of
// the solver invocation.
type SolveHandler struct {
	log zerolog.Logger
}

func NewSolveHandler(log zerolog.Logger) *SolveHandler {
	return &SolveHandler{log: log.With().Str("component", "api").Logger()}
}

// Solve handles POST /api/v1/solve.
func (h *SolveHandler) Solve(c *gin.Context) {
	var req models.SolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	cfg := solver.Config{
		SolverName:     req.Solver.SolverName,
		ExecutablePath: req.Solver.ExecutablePath,
		Options:        req.Solver.Options,
		SolveKeywords:  req.Solver.SolveKeywords,
	}
	if err := cfg.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_SOLVER", err.Error())
		return
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = filepath.Join("results", req.Name)
	}

	plan, err := sdom.Build(req.CaseDir, req.Hours, req.Resilience, req.Name, h.log)
	if err != nil {
		writeError(c, http.StatusBadRequest, buildErrorCode(err), err.Error())
		return
	}

	res, err := sdom.Solve(c.Request.Context(), plan, cfg, outDir)
	if err != nil {
		code, status := solveErrorCode(err)
		writeError(c, status, code, err.Error())
		return
	}

	if err := results.Export(res, outDir); err != nil {
		writeError(c, http.StatusInternalServerError, "EXPORT_ERROR", err.Error())
		return
	}

	resp := models.SolveResponse{
		Status:        res.Stats.Status,
		TotalCost:     res.TotalCost,
		PVBuiltMW:     res.PVBuiltMW,
		WindBuiltMW:   res.WindBuiltMW,
		BalancingMW:   res.BalancingMW,
		EnergyMWh:     res.EnergyMWh,
		CostBreakdown: res.CostBreakdown,
		OutDir:        outDir,
		Stats: models.SolveStats{
			Constraints:     res.Stats.Constraints,
			Variables:       res.Stats.Variables,
			BinaryVariables: res.Stats.Binaries,
			WallTimeSeconds: res.Stats.WallTime.Seconds(),
		},
	}
	for _, s := range res.Storage {
		resp.Storage = append(resp.Storage, models.StorageSummary{
			Technology:    s.Technology,
			ChargeMW:      s.ChargeMW,
			DischargeMW:   s.DischargeMW,
			EnergyMWh:     s.EnergyMWh,
			DischargedMWh: s.DischargedMWh,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func buildErrorCode(err error) string {
	var cfgErr *data.ConfigError
	var dataErr *data.DataError
	switch {
	case errors.As(err, &cfgErr):
		return "CONFIG_ERROR"
	case errors.As(err, &dataErr):
		return "DATA_ERROR"
	default:
		return "BUILD_ERROR"
	}
}

func solveErrorCode(err error) (code string, httpStatus int) {
	var infeas *solver.InfeasibleError
	var timeout *solver.TimeoutError
	var solvErr *solver.SolverError
	switch {
	case errors.As(err, &infeas):
		return "INFEASIBLE", http.StatusUnprocessableEntity
	case errors.As(err, &timeout):
		return "TIME_LIMIT", http.StatusGatewayTimeout
	case errors.As(err, &solvErr):
		return "SOLVER_ERROR", http.StatusBadGateway
	default:
		return "SOLVE_ERROR", http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}
