package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic scalar type of a table column.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
	KindTime
)

var kindNames = map[Kind]string{
	KindString: "string",
	KindFloat:  "float",
	KindInt:    "int",
	KindTime:   "time",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind name as used in conversion profiles.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "string", "str", "text":
		return KindString, nil
	case "float", "double", "float64":
		return KindFloat, nil
	case "int", "integer", "int64":
		return KindInt, nil
	case "time", "datetime":
		return KindTime, nil
	}
	return 0, fmt.Errorf("unknown column kind %q", name)
}

// TypeMap maps ODF format codes (the TYPE field) to column kinds.
type TypeMap map[string]Kind

// DefaultTypeMap returns the ODF format codes understood out of the box.
func DefaultTypeMap() TypeMap {
	return TypeMap{
		"DOUB": KindFloat,
		"SING": KindFloat,
		"INTE": KindInt,
		"SYTM": KindTime,
	}
}

// Lookup returns the kind registered for code.
func (m TypeMap) Lookup(code string) (Kind, bool) {
	k, ok := m[strings.TrimSpace(code)]
	return k, ok
}

// timeLayouts are the accepted renderings of ODF SYTM values.
var timeLayouts = [...]string{
	"02-Jan-2006 15:04:05.00",
	"02-Jan-2006 15:04:05",
	"02-Jan-2006",
}

// ParseTime parses an SYTM value in UTC.
func ParseTime(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, v, time.UTC)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseFloat(v string) (float64, error) {
	// Fortran style exponents show up in older files.
	v = strings.Map(func(r rune) rune {
		if r == 'D' || r == 'd' {
			return 'E'
		}
		return r
	}, v)
	f, err := strconv.ParseFloat(v, 64)
	if errors.Is(err, strconv.ErrRange) {
		// Out of range magnitudes become ±Inf.
		return f, nil
	}
	return f, err
}

func parseInt(v string) (int64, error) {
	return strconv.ParseInt(v, 10, 64)
}
