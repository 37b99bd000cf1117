package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when the input path does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat is returned for anything but .csv and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format, use .csv or .xlsx")
	ErrMissingColumn     = errors.New("missing required column")
	ErrInvalidRow        = errors.New("invalid row")
)

// RowError describes a cell that could not be cast
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Column, e.Message)
}

// LoadError collects the row errors of a table that failed to load.
// Samples is capped at LoadOptions.MaxErrors while Errors keeps counting.
type LoadError struct {
	Errors  int        `json:"errors"`
	Samples []RowError `json:"error_samples,omitempty"`
}

func (e *LoadError) Error() string {
	if len(e.Samples) == 0 {
		return fmt.Sprintf("%d invalid rows", e.Errors)
	}
	return fmt.Sprintf("%d invalid rows, first: %s", e.Errors, e.Samples[0])
}

func (e *LoadError) Unwrap() error { return ErrInvalidRow }

func (e *LoadError) add(re RowError, max int) {
	e.Errors++
	if len(e.Samples) < max {
		e.Samples = append(e.Samples, re)
	}
}

// HeaderError lists the required columns absent from the header row
type HeaderError struct {
	Missing []string `json:"missing"`
}

func (e *HeaderError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

func (e *HeaderError) Unwrap() error { return ErrMissingColumn }
