// Package data loads a case directory into an immutable input bundle: system
// scalars, hourly series, VRE plant tables, storage and balancing-unit
// tables, hydro budget bounds, and the formulation selection map. All
// validation of loader invariants happens here; downstream model assembly
// reads the bundle and never re-checks raw input.
package data

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

// Formulation variant names, one axis per map key in the Formulations file.
const (
	HydroRunOfRiver    = "RunOfRiver"
	HydroMonthlyBudget = "MonthlyBudget"
	HydroDailyBudget   = "DailyBudget"
	TradeDisabled      = "Disabled"
	TradePriceNetLoad  = "PriceNetLoad"
)

// Scalars holds the system-wide values of the Scalars file plus defaults.
type Scalars struct {
	DiscountRate float64 // r, must be > 0
	CleanTarget  float64 // GenMix_Target, fraction in [0,1]
	AlphaNuclear float64
	AlphaHydro   float64
	AlphaOther   float64
	VRELifetime  float64 // years, shared by PV and wind

	// Resilience scalars; meaningful only when the resilience solve is on.
	CriticalLoadFrac float64
	BackupHours      int // max_backup_power_dur
	OutageStartHour  int // 1-indexed hour the outage begins
	SOCRestoreHours  int
	CriticalPeakLoad float64 // MW; 0 means derive from CriticalLoadFrac
}

// VREPlant is one PV or wind plant: capacity factor series plus the
// capacity/cost attributes from the capacity table.
type VREPlant struct {
	ID         string
	CapacityMW float64
	CapexPerKW float64 // $/kW
	FOMPerKWYr float64 // $/kW-yr
	TransCapex float64 // $, lump sum
	Latitude   float64
	Longitude  float64
	CF         []float64 // [0,1], one entry per hour
}

// StorageTech is one storage technology column of the StorageData table.
type StorageTech struct {
	Name            string
	PowerCapexPerKW float64 // $/kW
	EnergyCapexKWh  float64 // $/kWh
	Eff             float64 // round-trip, (0,1]
	MinDurationH    float64
	MaxDurationH    float64
	MaxPowerMW      float64
	Coupled         bool
	FOMPerKWYr      float64
	VOMPerMWh       float64
	LifetimeYr      float64
	CostRatio       float64 // charge share of power CAPEX, [0,1]
	MaxCycles       float64 // lifetime cycle budget; 0 disables the cap
	CRF             float64
}

// BalancingUnit is one dispatchable unit column of Data_BalancingUnits.
type BalancingUnit struct {
	Name       string
	MinCapMW   float64
	MaxCapMW   float64
	LifetimeYr float64
	CapexPerKW float64
	HeatRate   float64 // MMBtu/MWh
	FuelCost   float64 // $/MMBtu
	VOMPerMWh  float64
	FOMPerKWYr float64
	CRF        float64
}

// MarginalCost is the $/MWh dispatch cost: heat rate times fuel price plus VOM.
func (u BalancingUnit) MarginalCost() float64 {
	return u.HeatRate*u.FuelCost + u.VOMPerMWh
}

// BudgetPeriod is one contiguous hydro budget period, hours [Start,End)
// 0-indexed, with its energy budget in MWh.
type BudgetPeriod struct {
	Start  int
	End    int
	Budget float64
}

// Formulations is the variant selection parsed from the Formulations file.
type Formulations struct {
	Hydro string
	Trade string
}

// Bundle is the immutable input to model assembly.
type Bundle struct {
	Name  string
	Hours int

	Scalars      Scalars
	Formulations Formulations

	Demand   []float64
	Nuclear  []float64
	Hydro    []float64
	OtherRen []float64

	HydroMax []float64 // nil unless a budget hydro variant is selected
	HydroMin []float64
	Periods  []BudgetPeriod

	Solar []VREPlant
	Wind  []VREPlant

	Storage   []StorageTech
	Balancing []BalancingUnit

	ImportCap   []float64 // nil unless trade is enabled
	ImportPrice []float64
	ExportCap   []float64
	ExportPrice []float64

	VRECRF float64

	// Derived at load time.
	PeakDemand   float64
	PeakResidual float64 // max over hours of demand net of fixed clean sources
	TradeBigM    float64 // max(peak demand, peak VRE availability)
}

// CRF is the capital recovery factor r(1+r)^l / ((1+r)^l - 1) annualizing a
// lump-sum cost over lifetime years.
func CRF(rate, lifetimeYears float64) float64 {
	g := math.Pow(1+rate, lifetimeYears)
	return rate * g / (g - 1)
}

// Load reads and validates a case directory for the given horizon.
func Load(dir string, hours int, name string, log zerolog.Logger) (*Bundle, error) {
	log = log.With().Str("component", "data").Str("case", name).Logger()

	if hours <= 0 {
		return nil, &ConfigError{Message: fmt.Sprintf("horizon must be positive, got %d", hours)}
	}
	files, err := resolveFiles(dir)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Name: name, Hours: hours}

	if err := b.loadScalars(files); err != nil {
		return nil, err
	}
	if err := b.loadFormulations(files); err != nil {
		return nil, err
	}
	if err := b.loadSeries(files); err != nil {
		return nil, err
	}
	if err := b.loadVRE(files, log); err != nil {
		return nil, err
	}
	if err := b.loadStorage(files); err != nil {
		return nil, err
	}
	if err := b.loadBalancing(files); err != nil {
		return nil, err
	}
	if err := b.loadHydroBudget(files); err != nil {
		return nil, err
	}
	if err := b.loadTrade(files); err != nil {
		return nil, err
	}
	b.derive()

	log.Info().
		Int("hours", hours).
		Int("solar_plants", len(b.Solar)).
		Int("wind_plants", len(b.Wind)).
		Int("storage_techs", len(b.Storage)).
		Int("balancing_units", len(b.Balancing)).
		Str("hydro", b.Formulations.Hydro).
		Str("trade", b.Formulations.Trade).
		Msg("case loaded")
	return b, nil
}

func (b *Bundle) loadScalars(files map[string]string) error {
	path, err := lookup(files, FileScalars, true)
	if err != nil {
		return err
	}
	kv, err := readKeyValue(path)
	if err != nil {
		return err
	}
	get := func(name string, def float64) float64 {
		if v, ok := kv[normalizeName(name)]; ok {
			return v
		}
		return def
	}
	s := Scalars{
		DiscountRate:     get("r", 0),
		CleanTarget:      get("GenMix_Target", 0),
		AlphaNuclear:     get("alpha_Nuclear", 0),
		AlphaHydro:       get("alpha_Hydro", 0),
		AlphaOther:       get("alpha_OtherRenewables", 0),
		VRELifetime:      get("VRE_Lifetime", 30),
		CriticalLoadFrac: get("CriticalLoadFrac", 0),
		BackupHours:      int(get("max_backup_power_dur", 0)),
		OutageStartHour:  int(get("outage_start_hour", 0)),
		SOCRestoreHours:  int(get("SOC_restore_hours", 0)),
		CriticalPeakLoad: get("critical_peak_load", 0),
	}
	if s.DiscountRate <= 0 {
		return &DataError{File: path, Field: "r", Message: "discount rate must be > 0"}
	}
	if s.CleanTarget < 0 || s.CleanTarget > 1 {
		return &DataError{File: path, Field: "GenMix_Target", Message: "clean-energy target must be in [0,1]"}
	}
	for _, a := range []struct {
		name string
		v    float64
	}{
		{"alpha_Nuclear", s.AlphaNuclear},
		{"alpha_Hydro", s.AlphaHydro},
		{"alpha_OtherRenewables", s.AlphaOther},
	} {
		if a.v < 0 || a.v > 1 {
			return &DataError{File: path, Field: a.name, Message: "activation fraction must be in [0,1]"}
		}
	}
	if s.VRELifetime <= 0 {
		return &DataError{File: path, Field: "VRE_Lifetime", Message: "lifetime must be positive"}
	}
	b.Scalars = s
	return nil
}

func (b *Bundle) loadFormulations(files map[string]string) error {
	path, err := lookup(files, FileFormulations, true)
	if err != nil {
		return err
	}
	recs, err := readCSV(path)
	if err != nil {
		return err
	}
	f := Formulations{Hydro: HydroRunOfRiver, Trade: TradeDisabled}
	imports, exports := "", ""
	for _, rec := range recs {
		if len(rec) < 2 {
			continue
		}
		switch normalizeName(rec[0]) {
		case "component": // header
		case "hydro":
			f.Hydro = rec[1]
		case "imports":
			imports = rec[1]
		case "exports":
			exports = rec[1]
		default:
			return &ConfigError{File: path, Message: fmt.Sprintf("unknown component %q", rec[0])}
		}
	}
	switch normalizeName(f.Hydro) {
	case normalizeName(HydroRunOfRiver):
		f.Hydro = HydroRunOfRiver
	case normalizeName(HydroMonthlyBudget):
		f.Hydro = HydroMonthlyBudget
	case normalizeName(HydroDailyBudget):
		f.Hydro = HydroDailyBudget
	default:
		return &ConfigError{File: path, Message: fmt.Sprintf("unknown hydro formulation %q", f.Hydro)}
	}
	canonTrade := func(s string) (string, bool) {
		switch normalizeName(s) {
		case "", normalizeName(TradeDisabled):
			return TradeDisabled, true
		case normalizeName(TradePriceNetLoad):
			return TradePriceNetLoad, true
		}
		return "", false
	}
	ci, ok := canonTrade(imports)
	if !ok {
		return &ConfigError{File: path, Message: fmt.Sprintf("unknown Imports formulation %q", imports)}
	}
	ce, ok := canonTrade(exports)
	if !ok {
		return &ConfigError{File: path, Message: fmt.Sprintf("unknown Exports formulation %q", exports)}
	}
	if ci != ce {
		return &ConfigError{File: path, Message: fmt.Sprintf("Imports (%s) and Exports (%s) formulations must agree", ci, ce)}
	}
	f.Trade = ci
	b.Formulations = f
	return nil
}

func (b *Bundle) loadSeries(files map[string]string) error {
	series := []struct {
		logical string
		dst     *[]float64
	}{
		{FileLoad, &b.Demand},
		{FileNuclear, &b.Nuclear},
		{FileHydro, &b.Hydro},
		{FileOtherRen, &b.OtherRen},
	}
	for _, s := range series {
		path, err := lookup(files, s.logical, true)
		if err != nil {
			return err
		}
		vals, err := readSeries(path, b.Hours)
		if err != nil {
			return err
		}
		for h, v := range vals {
			if v < 0 {
				return &DataError{File: path, Field: fmt.Sprintf("hour %d", h+1), Message: "series values must be non-negative"}
			}
		}
		*s.dst = vals
	}
	return nil
}

func (b *Bundle) loadVRE(files map[string]string, log zerolog.Logger) error {
	load := func(cfLogical, capLogical string) ([]VREPlant, error) {
		cfPath, err := lookup(files, cfLogical, true)
		if err != nil {
			return nil, err
		}
		capPath, err := lookup(files, capLogical, true)
		if err != nil {
			return nil, err
		}
		ids, cols, err := readMatrix(cfPath, b.Hours)
		if err != nil {
			return nil, err
		}
		recs, err := readPlantTable(capPath)
		if err != nil {
			return nil, err
		}
		byID := make(map[string]PlantRecord, len(recs))
		for _, r := range recs {
			byID[r.ID] = r
		}

		var plants []VREPlant
		seen := map[string]bool{}
		for _, id := range ids {
			rec, ok := byID[id]
			if !ok {
				// Recovery, not failure: the plant has a CF column but no
				// capacity/cost row, so it cannot be indexed.
				log.Warn().Str("plant", id).Str("file", capPath).Msg("dropping plant without capacity data")
				continue
			}
			seen[id] = true
			cf := cols[id]
			for h, v := range cf {
				if v < 0 || v > 1 {
					return nil, &DataError{File: cfPath, Field: fmt.Sprintf("%s hour %d", id, h+1), Message: "capacity factor must be in [0,1]"}
				}
			}
			if rec.CapacityMW < 0 || rec.CapexPerKW < 0 || rec.FOMPerKWYr < 0 || rec.TransCapex < 0 {
				return nil, &DataError{File: capPath, Field: id, Message: "capacity and cost attributes must be non-negative"}
			}
			plants = append(plants, VREPlant{
				ID:         id,
				CapacityMW: rec.CapacityMW,
				CapexPerKW: rec.CapexPerKW,
				FOMPerKWYr: rec.FOMPerKWYr,
				TransCapex: rec.TransCapex,
				Latitude:   rec.Latitude,
				Longitude:  rec.Longitude,
				CF:         cf,
			})
		}
		for _, r := range recs {
			if !seen[r.ID] {
				log.Warn().Str("plant", r.ID).Str("file", cfPath).Msg("dropping plant without capacity factor data")
			}
		}
		return plants, nil
	}

	var err error
	if b.Solar, err = load(FileCFSolar, FileCapSolar); err != nil {
		return err
	}
	if b.Wind, err = load(FileCFWind, FileCapWind); err != nil {
		return err
	}
	return nil
}

func (b *Bundle) loadStorage(files map[string]string) error {
	path, err := lookup(files, FileStorageData, true)
	if err != nil {
		return err
	}
	techs, params, err := readParamTable(path)
	if err != nil {
		return err
	}
	rows := map[string]map[string]float64{}
	for _, name := range []string{"P_Capex", "E_Capex", "Eff", "Min_Duration", "Max_Duration", "Max_P", "Coupled", "FOM", "VOM", "Lifetime", "CostRatio", "MaxCycles"} {
		row, err := paramRow(path, params, name)
		if err != nil {
			return err
		}
		rows[name] = row
	}
	for _, tech := range techs {
		st := StorageTech{
			Name:            tech,
			PowerCapexPerKW: rows["P_Capex"][tech],
			EnergyCapexKWh:  rows["E_Capex"][tech],
			Eff:             rows["Eff"][tech],
			MinDurationH:    rows["Min_Duration"][tech],
			MaxDurationH:    rows["Max_Duration"][tech],
			MaxPowerMW:      rows["Max_P"][tech],
			Coupled:         rows["Coupled"][tech] != 0,
			FOMPerKWYr:      rows["FOM"][tech],
			VOMPerMWh:       rows["VOM"][tech],
			LifetimeYr:      rows["Lifetime"][tech],
			CostRatio:       rows["CostRatio"][tech],
			MaxCycles:       rows["MaxCycles"][tech],
		}
		if st.Eff <= 0 || st.Eff > 1 {
			return &DataError{File: path, Field: tech + "/Eff", Message: "efficiency must be in (0,1]"}
		}
		if st.MinDurationH < 0 || st.MaxDurationH < st.MinDurationH {
			return &DataError{File: path, Field: tech + "/Duration", Message: "need 0 <= Min_Duration <= Max_Duration"}
		}
		if st.CostRatio < 0 || st.CostRatio > 1 {
			return &DataError{File: path, Field: tech + "/CostRatio", Message: "cost ratio must be in [0,1]"}
		}
		if st.LifetimeYr <= 0 {
			return &DataError{File: path, Field: tech + "/Lifetime", Message: "lifetime must be positive"}
		}
		if st.PowerCapexPerKW < 0 || st.EnergyCapexKWh < 0 || st.FOMPerKWYr < 0 || st.VOMPerMWh < 0 || st.MaxPowerMW < 0 || st.MaxCycles < 0 {
			return &DataError{File: path, Field: tech, Message: "monetary and capacity attributes must be non-negative"}
		}
		st.CRF = CRF(b.Scalars.DiscountRate, st.LifetimeYr)
		b.Storage = append(b.Storage, st)
	}
	if len(b.Storage) == 0 {
		return &ConfigError{File: path, Message: "no storage technologies defined"}
	}
	return nil
}

func (b *Bundle) loadBalancing(files map[string]string) error {
	path, err := lookup(files, FileBalancingUnits, true)
	if err != nil {
		return err
	}
	units, params, err := readParamTable(path)
	if err != nil {
		return err
	}
	rows := map[string]map[string]float64{}
	for _, name := range []string{"MinCapacity", "MaxCapacity", "Lifetime", "Capex", "HeatRate", "FuelCost", "VOM", "FOM"} {
		row, err := paramRow(path, params, name)
		if err != nil {
			return err
		}
		rows[name] = row
	}
	for _, unit := range units {
		u := BalancingUnit{
			Name:       unit,
			MinCapMW:   rows["MinCapacity"][unit],
			MaxCapMW:   rows["MaxCapacity"][unit],
			LifetimeYr: rows["Lifetime"][unit],
			CapexPerKW: rows["Capex"][unit],
			HeatRate:   rows["HeatRate"][unit],
			FuelCost:   rows["FuelCost"][unit],
			VOMPerMWh:  rows["VOM"][unit],
			FOMPerKWYr: rows["FOM"][unit],
		}
		if u.MinCapMW < 0 || u.MaxCapMW < u.MinCapMW {
			return &DataError{File: path, Field: unit + "/Capacity", Message: "need 0 <= MinCapacity <= MaxCapacity"}
		}
		if u.LifetimeYr <= 0 {
			return &DataError{File: path, Field: unit + "/Lifetime", Message: "lifetime must be positive"}
		}
		if u.CapexPerKW < 0 || u.HeatRate < 0 || u.FuelCost < 0 || u.VOMPerMWh < 0 || u.FOMPerKWYr < 0 {
			return &DataError{File: path, Field: unit, Message: "cost attributes must be non-negative"}
		}
		u.CRF = CRF(b.Scalars.DiscountRate, u.LifetimeYr)
		b.Balancing = append(b.Balancing, u)
	}
	return nil
}

// loadHydroBudget loads the hourly hydro bounds and builds the budget
// periodization for the MonthlyBudget and DailyBudget variants. The period
// energy budget is the activated historical hydro generation summed over the
// period, which by construction lies inside the summed hourly bounds when the
// bounds bracket the series.
func (b *Bundle) loadHydroBudget(files map[string]string) error {
	if b.Formulations.Hydro == HydroRunOfRiver {
		return nil
	}
	maxPath, err := lookup(files, FileHydroMax, true)
	if err != nil {
		return err
	}
	minPath, err := lookup(files, FileHydroMin, true)
	if err != nil {
		return err
	}
	if b.HydroMax, err = readSeries(maxPath, b.Hours); err != nil {
		return err
	}
	if b.HydroMin, err = readSeries(minPath, b.Hours); err != nil {
		return err
	}
	for h := 0; h < b.Hours; h++ {
		if b.HydroMin[h] < 0 || b.HydroMax[h] < b.HydroMin[h] {
			return &DataError{File: maxPath, Field: fmt.Sprintf("hour %d", h+1), Message: "need 0 <= min <= max hydro bound"}
		}
	}

	periodLen, err := b.budgetPeriodLength()
	if err != nil {
		return err
	}
	alpha := b.Scalars.AlphaHydro
	for start := 0; start < b.Hours; start += periodLen {
		end := start + periodLen
		budget := alpha * floats.Sum(b.Hydro[start:end])
		lo := alpha * floats.Sum(b.HydroMin[start:end])
		hi := alpha * floats.Sum(b.HydroMax[start:end])
		if budget < lo-1e-6 || budget > hi+1e-6 {
			return &DataError{
				File:    minPath,
				Field:   fmt.Sprintf("period starting hour %d", start+1),
				Message: fmt.Sprintf("energy budget %.3f outside feasible range [%.3f, %.3f]", budget, lo, hi),
			}
		}
		b.Periods = append(b.Periods, BudgetPeriod{Start: start, End: end, Budget: budget})
	}
	return nil
}

// budgetPeriodLength picks the partition width. Months are modeled as fixed
// 730-hour blocks; a horizon of at most 744 hours (one calendar month) that
// is not a multiple of 730 becomes a single period so that single-month
// studies remain expressible. Any other horizon is rejected.
func (b *Bundle) budgetPeriodLength() (int, error) {
	switch b.Formulations.Hydro {
	case HydroDailyBudget:
		if b.Hours%24 != 0 {
			return 0, &DataError{Message: fmt.Sprintf("horizon %d is not a multiple of the daily budget period (24 h)", b.Hours)}
		}
		return 24, nil
	case HydroMonthlyBudget:
		if b.Hours%730 == 0 {
			return 730, nil
		}
		if b.Hours <= 744 {
			return b.Hours, nil
		}
		return 0, &DataError{Message: fmt.Sprintf("horizon %d is not a multiple of the monthly budget period (730 h)", b.Hours)}
	default:
		return 0, &ConfigError{Message: fmt.Sprintf("hydro formulation %q has no budget periods", b.Formulations.Hydro)}
	}
}

func (b *Bundle) loadTrade(files map[string]string) error {
	if b.Formulations.Trade == TradeDisabled {
		return nil
	}
	series := []struct {
		logical string
		dst     *[]float64
	}{
		{FileImportCap, &b.ImportCap},
		{FileImportPrices, &b.ImportPrice},
		{FileExportCap, &b.ExportCap},
		{FileExportPrices, &b.ExportPrice},
	}
	for _, s := range series {
		path, err := lookup(files, s.logical, true)
		if err != nil {
			return err
		}
		vals, err := readSeries(path, b.Hours)
		if err != nil {
			return err
		}
		*s.dst = vals
	}
	for h := 0; h < b.Hours; h++ {
		if b.ImportCap[h] < 0 || b.ExportCap[h] < 0 {
			return &DataError{Field: fmt.Sprintf("hour %d", h+1), Message: "trade caps must be non-negative"}
		}
	}
	return nil
}

// derive precomputes the aggregates the orchestrator and the trade
// formulation need: peak demand, peak residual demand after fixed clean
// sources, and the net-load indicator big-M.
func (b *Bundle) derive() {
	s := b.Scalars
	b.VRECRF = CRF(s.DiscountRate, s.VRELifetime)
	residual := make([]float64, b.Hours)
	for h := 0; h < b.Hours; h++ {
		residual[h] = b.Demand[h] - s.AlphaNuclear*b.Nuclear[h] - s.AlphaHydro*b.Hydro[h] - s.AlphaOther*b.OtherRen[h]
	}
	b.PeakDemand = floats.Max(b.Demand)
	b.PeakResidual = floats.Max(residual)

	peakVRE := 0.0
	for h := 0; h < b.Hours; h++ {
		if avail := b.AvailableVRE(h); avail > peakVRE {
			peakVRE = avail
		}
	}
	b.TradeBigM = math.Max(b.PeakDemand, peakVRE)
}

// CriticalLoad resolves the stage-A critical peak load in MW.
func (b *Bundle) CriticalLoad() float64 {
	if b.Scalars.CriticalPeakLoad > 0 {
		return b.Scalars.CriticalPeakLoad
	}
	return b.Scalars.CriticalLoadFrac * b.PeakDemand
}

// AvailableVRE is the hour-h VRE availability at full build-out, used for
// the trade big-M.
func (b *Bundle) AvailableVRE(h int) float64 {
	avail := 0.0
	for _, p := range b.Solar {
		avail += p.CF[h] * p.CapacityMW
	}
	for _, w := range b.Wind {
		avail += w.CF[h] * w.CapacityMW
	}
	return avail
}
