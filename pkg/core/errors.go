package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrUnterminatedHeader  = errors.New("header terminator not found before end of input")
	ErrUnknownColumnFormat = errors.New("unknown column name input format")
	ErrUnsupportedKind     = errors.New("column kind not supported by exporter")
)

// HeaderFormatError reports a header line that matches no known shape.
type HeaderFormatError struct {
	Line int
	Text string
}

func (e *HeaderFormatError) Error() string {
	return fmt.Sprintf("line %d: can't understand header line %q", e.Line, e.Text)
}

// ColumnCountMismatchError reports explicit column names that disagree with the parameter count.
type ColumnCountMismatchError struct {
	Parameters int
	Names      int
}

func (e *ColumnCountMismatchError) Error() string {
	return fmt.Sprintf("got %d column names for %d parameters", e.Names, e.Parameters)
}

// RowWidthMismatchError reports a data row whose token count differs from the column count.
type RowWidthMismatchError struct {
	Row     int
	Columns int
	Tokens  int
}

func (e *RowWidthMismatchError) Error() string {
	return fmt.Sprintf("data row %d: got %d values for %d columns", e.Row, e.Tokens, e.Columns)
}

// DuplicateColumnError reports two columns sharing a name.
type DuplicateColumnError struct {
	Name string
	// First and Second are the positions of the clashing parameters.
	First, Second int
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column name %q (parameters %d and %d)", e.Name, e.First, e.Second)
}

// UnknownTypeCodeError reports a parameter type code absent from the type map.
type UnknownTypeCodeError struct {
	Column string
	Code   string
}

func (e *UnknownTypeCodeError) Error() string {
	return fmt.Sprintf("unknown data format: %s(%s)", e.Column, e.Code)
}

// ValueConversionError reports a data token that could not be converted to its column kind.
type ValueConversionError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("data row %d, column %s: cannot convert %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ValueConversionError) Unwrap() error {
	return e.Err
}
