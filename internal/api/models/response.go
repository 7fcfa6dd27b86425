package models

// SolveResponse summarizes a finished solve. The full hourly tables are in
// the exported CSVs; the response carries the aggregates.
type SolveResponse struct {
	Status        string             `json:"status"`
	TotalCost     float64            `json:"total_cost"`
	PVBuiltMW     float64            `json:"pv_built_mw"`
	WindBuiltMW   float64            `json:"wind_built_mw"`
	BalancingMW   map[string]float64 `json:"balancing_mw"`
	Storage       []StorageSummary   `json:"storage"`
	EnergyMWh     map[string]float64 `json:"energy_mwh"`
	CostBreakdown map[string]float64 `json:"cost_breakdown"`
	Stats         SolveStats         `json:"stats"`
	OutDir        string             `json:"out_dir"`
}

// StorageSummary is the sizing decision for one storage technology.
type StorageSummary struct {
	Technology    string  `json:"technology"`
	ChargeMW      float64 `json:"charge_mw"`
	DischargeMW   float64 `json:"discharge_mw"`
	EnergyMWh     float64 `json:"energy_mwh"`
	DischargedMWh float64 `json:"discharged_mwh"`
}

// SolveStats carries problem and solve statistics.
type SolveStats struct {
	Constraints     int     `json:"constraints"`
	Variables       int     `json:"variables"`
	BinaryVariables int     `json:"binary_variables"`
	WallTimeSeconds float64 `json:"wall_time_seconds"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
