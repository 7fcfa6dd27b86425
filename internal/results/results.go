// Package results packages the primal values of a solved model as tabular
// views and writes them as comma-separated files. It knows nothing about how
// the model was assembled; the extractor in internal/sdom populates it.
package results

import "time"

// DispatchRow is one hour of system dispatch, MW.
type DispatchRow struct {
	Hour             int // 1-indexed
	DemandMW         float64
	NuclearMW        float64
	HydroMW          float64
	OtherRenMW       float64
	PVMW             float64
	WindMW           float64
	PVCurtailMW      float64
	WindCurtailMW    float64
	BalancingMW      float64
	ImportMW         float64
	ExportMW         float64
	StorageChargeMW  float64
	StorageDischgMW  float64
	StorageNetMW     float64 // discharge minus charge
}

// StorageRow is one (hour, technology) of storage operation.
type StorageRow struct {
	Hour        int
	Technology  string
	ChargeMW    float64
	DischargeMW float64
	SOCMWh      float64
}

// ThermalRow is one (hour, unit) of balancing dispatch.
type ThermalRow struct {
	Hour   int
	Unit   string
	MW     float64
}

// PlantRow is one VRE plant build decision.
type PlantRow struct {
	Technology string // "solar" or "wind"
	Plant      string
	Fraction   float64
	BuiltMW    float64
	Latitude   float64
	Longitude  float64
}

// StorageBuild is the sizing decision for one storage technology.
type StorageBuild struct {
	Technology    string
	ChargeMW      float64
	DischargeMW   float64
	EnergyMWh     float64
	DischargedMWh float64 // annual
}

// Stats carries the problem and solve statistics.
type Stats struct {
	Constraints int
	Variables   int
	Binaries    int
	Status      string
	Objective   float64
	WallTime    time.Duration
}

// Results is the full extraction of one solved case.
type Results struct {
	CaseName string
	Hours    int

	TotalCost float64

	PVBuiltMW     float64
	WindBuiltMW   float64
	BalancingMW   map[string]float64
	Storage       []StorageBuild

	// Annual energy by source, MWh.
	EnergyMWh map[string]float64

	Dispatch []DispatchRow
	StorageOp []StorageRow
	Thermal  []ThermalRow
	Plants   []PlantRow

	// CostBreakdown entries sum to TotalCost within solver tolerance.
	// Export revenue appears as a negative entry.
	CostBreakdown map[string]float64

	Stats Stats
}
