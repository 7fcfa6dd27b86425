package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"StorageData", "storagedata"},
		{"storage_data", "storagedata"},
		{"Storage-Data", "storagedata"},
		{"Storage Data", "storagedata"},
		{"lahy_max_hourly", "lahymaxhourly"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeName(tt.in), tt.in)
	}
}

func TestResolveFilesLooseMatching(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Storage Data.CSV", "x")
	writeFile(t, dir, "load-hourly.csv", "x")

	files, err := resolveFiles(dir)
	require.NoError(t, err)

	p, err := lookup(files, FileStorageData, true)
	require.NoError(t, err)
	assert.Contains(t, p, "Storage Data.CSV")

	_, err = lookup(files, FileLoad, true)
	assert.NoError(t, err)

	_, err = lookup(files, FileCFWind, true)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestReadSeries(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "load.csv", "hour,mw\n1,100\n2,110\n3,120\n")

	vals, err := readSeries(path, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110, 120}, vals)
}

func TestReadSeriesTooShort(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "load.csv", "hour,mw\n1,100\n")

	_, err := readSeries(path, 3)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
}

func TestReadSeriesNonFinite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "load.csv", "hour,mw\n1,100\n2,NaN\n")

	_, err := readSeries(path, 2)
	var dataErr *DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, dataErr.Message, "non-finite")
}

func TestReadKeyValue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scalars.csv", "name,value\nr,0.07\nGenMix_Target,0.8\n")

	kv, err := readKeyValue(path)
	require.NoError(t, err)
	assert.Equal(t, 0.07, kv["r"])
	assert.Equal(t, 0.8, kv[normalizeName("GenMix_Target")])
}

func TestReadMatrix(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cf.csv", "hour,pv1,pv2\n1,0.1,0.2\n2,0.3,0.4\n")

	ids, cols, err := readMatrix(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"pv1", "pv2"}, ids)
	assert.Equal(t, []float64{0.1, 0.3}, cols["pv1"])
	assert.Equal(t, []float64{0.2, 0.4}, cols["pv2"])
}

func TestReadMatrixRaggedRow(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cf.csv", "hour,pv1,pv2\n1,0.1\n")

	_, _, err := readMatrix(path, 1)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestReadParamTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "storage.csv", "parameter,batt,h2\nEff,0.9,0.5\nP_Capex,300,1500\n")

	techs, params, err := readParamTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"batt", "h2"}, techs)

	row, err := paramRow(path, params, "Eff")
	require.NoError(t, err)
	assert.Equal(t, 0.9, row["batt"])
	assert.Equal(t, 0.5, row["h2"])

	_, err = paramRow(path, params, "MaxCycles")
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestReadPlantTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cap.csv",
		"plant,capacity,capex,fom,trans,lat,lon\npv1,250,800,12,1e6,35.1,-110.4\n")

	plants, err := readPlantTable(path)
	require.NoError(t, err)
	require.Len(t, plants, 1)
	p := plants[0]
	assert.Equal(t, "pv1", p.ID)
	assert.Equal(t, 250.0, p.CapacityMW)
	assert.Equal(t, 800.0, p.CapexPerKW)
	assert.Equal(t, 12.0, p.FOMPerKWYr)
	assert.Equal(t, 1e6, p.TransCapex)
	assert.Equal(t, 35.1, p.Latitude)
	assert.Equal(t, -110.4, p.Longitude)
}
