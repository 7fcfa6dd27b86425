package data

import "fmt"

// ConfigError reports a problem with the shape of the case directory itself:
// a required file is missing, a column is absent, or a formulation name is
// unknown. These fail before any model is built.
type ConfigError struct {
	File    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.File, e.Message)
}

// DataError reports a value that violates a loader invariant: non-finite,
// negative where forbidden, out of range, or misaligned series lengths.
type DataError struct {
	File    string
	Field   string
	Message string
}

func (e *DataError) Error() string {
	switch {
	case e.File == "" && e.Field == "":
		return fmt.Sprintf("data error: %s", e.Message)
	case e.Field == "":
		return fmt.Sprintf("data error in %s: %s", e.File, e.Message)
	default:
		return fmt.Sprintf("data error in %s, field %q: %s", e.File, e.Field, e.Message)
	}
}
