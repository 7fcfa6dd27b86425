package data

import (
	"os"
	"path/filepath"
	"strings"
)

// Logical input file names. Matching against files on disk is
// case-insensitive and ignores spaces, hyphens and underscores, so
// "storage_data.csv", "StorageData.csv" and "Storage Data.CSV" all resolve
// to FileStorageData.
const (
	FileScalars        = "scalars"
	FileFormulations   = "formulations"
	FileLoad           = "loadhourly"
	FileNuclear        = "nuclhourly"
	FileHydro          = "lahyhourly"
	FileOtherRen       = "otrehourly"
	FileHydroMax       = "lahymaxhourly"
	FileHydroMin       = "lahyminhourly"
	FileCFSolar        = "cfsolar"
	FileCFWind         = "cfwind"
	FileCapSolar       = "capsolar"
	FileCapWind        = "capwind"
	FileStorageData    = "storagedata"
	FileBalancingUnits = "databalancingunits"
	FileImportCap      = "importcap"
	FileImportPrices   = "importprices"
	FileExportCap      = "exportcap"
	FileExportPrices   = "exportprices"
)

// normalizeName lowercases and strips separators so logical names match
// loosely against on-disk names.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '-', '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resolveFiles indexes the case directory by normalized logical name.
// Subdirectories are ignored; later duplicates do not shadow earlier ones.
func resolveFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &ConfigError{File: dir, Message: err.Error()}
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		base := e.Name()
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		key := normalizeName(stem)
		if _, ok := files[key]; !ok {
			files[key] = filepath.Join(dir, base)
		}
	}
	return files, nil
}

// lookup returns the resolved path for a logical name, or a ConfigError when
// the file is required and absent.
func lookup(files map[string]string, logical string, required bool) (string, error) {
	if p, ok := files[logical]; ok {
		return p, nil
	}
	if required {
		return "", &ConfigError{File: logical, Message: "required input file not found in case directory"}
	}
	return "", nil
}
