package core

import (
	"fmt"
	"time"
)

// ConversionEvent reports the outcome of one Convert call.
type ConversionEvent struct {
	Source    string
	Outputs   []string
	Rows      int
	Err       error
	Timestamp time.Time
}

// Failed reports whether the conversion returned an error.
func (e ConversionEvent) Failed() bool {
	return e.Err != nil
}

func (e ConversionEvent) String() string {
	if e.Err != nil {
		return fmt.Sprintf("convert %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("convert %s: %d rows -> %d files", e.Source, e.Rows, len(e.Outputs))
}
