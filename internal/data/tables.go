package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// readCSV loads all records of a comma-separated file, trimming surrounding
// whitespace on every field.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{File: path, Message: err.Error()}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		return nil, &ConfigError{File: path, Message: fmt.Sprintf("parse csv: %v", err)}
	}
	for _, rec := range recs {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
	}
	return recs, nil
}

func parseFloat(path, field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &DataError{File: path, Field: field, Message: fmt.Sprintf("not a number: %q", raw)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &DataError{File: path, Field: field, Message: "non-finite value"}
	}
	return v, nil
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// readSeries reads an (hour, value) file, returning the first hours values in
// hour order. Hours are 1-indexed in the file. A header row is skipped when
// its value column is not numeric.
func readSeries(path string, hours int) ([]float64, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, hours)
	for i, rec := range recs {
		if len(rec) < 2 {
			continue
		}
		if i == 0 && !isNumeric(rec[1]) {
			continue
		}
		v, err := parseFloat(path, rec[0], rec[1])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		if len(out) == hours {
			break
		}
	}
	if len(out) < hours {
		return nil, &DataError{File: path, Message: fmt.Sprintf("series has %d rows, horizon needs %d", len(out), hours)}
	}
	return out, nil
}

// readKeyValue reads a two-column (name, value) file into a map keyed by
// normalized name.
func readKeyValue(path string) (map[string]float64, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	out := map[string]float64{}
	for i, rec := range recs {
		if len(rec) < 2 {
			continue
		}
		if i == 0 && !isNumeric(rec[1]) {
			continue
		}
		v, err := parseFloat(path, rec[0], rec[1])
		if err != nil {
			return nil, err
		}
		out[normalizeName(rec[0])] = v
	}
	return out, nil
}

// readMatrix reads an hour x column matrix: header row names the columns,
// each body row starts with the hour index. Returns column ids in header
// order and the per-column series truncated to the horizon.
func readMatrix(path string, hours int) (ids []string, cols map[string][]float64, err error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if len(recs) < 2 {
		return nil, nil, &ConfigError{File: path, Message: "matrix file needs a header row and data rows"}
	}
	header := recs[0]
	if len(header) < 2 {
		return nil, nil, &ConfigError{File: path, Message: "matrix header needs an hour column plus at least one id column"}
	}
	ids = make([]string, 0, len(header)-1)
	for _, h := range header[1:] {
		ids = append(ids, h)
	}
	cols = make(map[string][]float64, len(ids))
	for _, id := range ids {
		cols[id] = make([]float64, 0, hours)
	}
	for _, rec := range recs[1:] {
		if len(rec) < len(header) {
			return nil, nil, &ConfigError{File: path, Message: fmt.Sprintf("row has %d fields, header has %d", len(rec), len(header))}
		}
		done := true
		for i, id := range ids {
			if len(cols[id]) == hours {
				continue
			}
			done = false
			v, err := parseFloat(path, id, rec[i+1])
			if err != nil {
				return nil, nil, err
			}
			cols[id] = append(cols[id], v)
		}
		if done {
			break
		}
	}
	for _, id := range ids {
		if len(cols[id]) < hours {
			return nil, nil, &DataError{File: path, Field: id, Message: fmt.Sprintf("column has %d rows, horizon needs %d", len(cols[id]), hours)}
		}
	}
	return ids, cols, nil
}

// readParamTable reads a parameter x technology table: header row names the
// technologies, each body row starts with the parameter name. Returns
// technology ids in header order and params[normalized param][tech id].
func readParamTable(path string) (techs []string, params map[string]map[string]float64, err error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}
	if len(recs) < 2 {
		return nil, nil, &ConfigError{File: path, Message: "parameter table needs a header row and data rows"}
	}
	header := recs[0]
	if len(header) < 2 {
		return nil, nil, &ConfigError{File: path, Message: "parameter table header needs at least one technology column"}
	}
	techs = append(techs, header[1:]...)
	params = map[string]map[string]float64{}
	for _, rec := range recs[1:] {
		if len(rec) < len(header) {
			return nil, nil, &ConfigError{File: path, Message: fmt.Sprintf("row %q has %d fields, header has %d", rec[0], len(rec), len(header))}
		}
		row := make(map[string]float64, len(techs))
		for i, tech := range techs {
			v, err := parseFloat(path, rec[0], rec[i+1])
			if err != nil {
				return nil, nil, err
			}
			row[tech] = v
		}
		params[normalizeName(rec[0])] = row
	}
	return techs, params, nil
}

// paramRow fetches one parameter row from a parameter table, as a ConfigError
// when absent (schema mismatch, not a bad value).
func paramRow(path string, params map[string]map[string]float64, name string) (map[string]float64, error) {
	row, ok := params[normalizeName(name)]
	if !ok {
		return nil, &ConfigError{File: path, Message: fmt.Sprintf("missing parameter row %q", name)}
	}
	return row, nil
}

// readPlantTable reads a per-plant attribute table. Columns are positional:
// id, capacity MW, CAPEX $/kW, FOM $/kW-yr, transmission capital cost $,
// latitude, longitude. Latitude/longitude are optional.
func readPlantTable(path string) ([]PlantRecord, error) {
	recs, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	var out []PlantRecord
	for i, rec := range recs {
		if len(rec) < 5 {
			if i == 0 {
				continue
			}
			return nil, &ConfigError{File: path, Message: fmt.Sprintf("plant row has %d fields, need at least 5", len(rec))}
		}
		if i == 0 && !isNumeric(rec[1]) {
			continue
		}
		p := PlantRecord{ID: rec[0]}
		fields := []struct {
			dst  *float64
			name string
			idx  int
		}{
			{&p.CapacityMW, "capacity", 1},
			{&p.CapexPerKW, "capex", 2},
			{&p.FOMPerKWYr, "fom", 3},
			{&p.TransCapex, "transmission capex", 4},
		}
		for _, f := range fields {
			v, err := parseFloat(path, p.ID+"/"+f.name, rec[f.idx])
			if err != nil {
				return nil, err
			}
			*f.dst = v
		}
		if len(rec) >= 7 && rec[5] != "" && rec[6] != "" {
			if p.Latitude, err = parseFloat(path, p.ID+"/latitude", rec[5]); err != nil {
				return nil, err
			}
			if p.Longitude, err = parseFloat(path, p.ID+"/longitude", rec[6]); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// PlantRecord is one row of a CapSolar/CapWind table before the capacity
// factor series is attached.
type PlantRecord struct {
	ID         string
	CapacityMW float64
	CapexPerKW float64
	FOMPerKWYr float64
	TransCapex float64
	Latitude   float64
	Longitude  float64
}
