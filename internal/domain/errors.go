package domain

import "fmt"

// ConfigurationError signals an option outside its valid range. It is fatal
// and raised before any extraction or matching work starts.
type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%s (%s)", e.Field, e.Value, e.Reason)
}

// ExtractionError signals that a required column held no usable rows.
type ExtractionError struct {
	Sheet    string
	Column   string
	StartRow int
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no populated rows in column %s of sheet %q at or after row %d", e.Column, e.Sheet, e.StartRow)
}
