package core

import (
	"strings"
	"time"
	"unicode"
)

// Defaults for locating column definitions in the header.
const (
	DefaultParameterSection = "PARAMETER_HEADER"
	DefaultNameField        = "CODE"
	DefaultTypeField        = "TYPE"
)

// TableOptions controls how the data block is turned into a Table.
// Zero values select the defaults.
type TableOptions struct {
	ParameterSection string
	NameField        string
	TypeField        string
	TypeMap          TypeMap
	// ColumnNames overrides the names taken from the parameter records.
	ColumnNames []string
}

// DefaultTableOptions returns the options used for standard ODF files.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		ParameterSection: DefaultParameterSection,
		NameField:        DefaultNameField,
		TypeField:        DefaultTypeField,
		TypeMap:          DefaultTypeMap(),
	}
}

func (o TableOptions) withDefaults() TableOptions {
	d := DefaultTableOptions()
	if o.ParameterSection == "" {
		o.ParameterSection = d.ParameterSection
	}
	if o.NameField == "" {
		o.NameField = d.NameField
	}
	if o.TypeField == "" {
		o.TypeField = d.TypeField
	}
	if o.TypeMap == nil {
		o.TypeMap = d.TypeMap
	}
	return o
}

// Column is one typed column of a Table. Only the slice matching Kind is populated.
type Column struct {
	Name string
	Kind Kind
	// Code is the ODF format code the kind was derived from.
	Code string
	// Attributes is the parameter definition the column was built from.
	Attributes AttributeRecord

	Floats  []float64
	Ints    []int64
	Times   []time.Time
	Strings []string
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindFloat:
		return len(c.Floats)
	case KindInt:
		return len(c.Ints)
	case KindTime:
		return len(c.Times)
	default:
		return len(c.Strings)
	}
}

// Value returns the value at row i boxed as any.
func (c *Column) Value(i int) any {
	switch c.Kind {
	case KindFloat:
		return c.Floats[i]
	case KindInt:
		return c.Ints[i]
	case KindTime:
		return c.Times[i]
	default:
		return c.Strings[i]
	}
}

func (c *Column) append(row int, token string) error {
	switch c.Kind {
	case KindFloat:
		v, err := parseFloat(token)
		if err != nil {
			return &ValueConversionError{Column: c.Name, Row: row, Value: token, Err: err}
		}
		c.Floats = append(c.Floats, v)
	case KindInt:
		v, err := parseInt(token)
		if err != nil {
			return &ValueConversionError{Column: c.Name, Row: row, Value: token, Err: err}
		}
		c.Ints = append(c.Ints, v)
	case KindTime:
		v, err := ParseTime(token)
		if err != nil {
			return &ValueConversionError{Column: c.Name, Row: row, Value: token, Err: err}
		}
		c.Times = append(c.Times, v)
	default:
		c.Strings = append(c.Strings, token)
	}
	return nil
}

// Table is the typed data block. All columns have Rows values.
type Table struct {
	Columns []*Column
	Rows    int
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// BuildTable converts the raw data lines into a Table whose columns are named
// and typed by the parameter records of tree. Column names must be unique.
// Whitespace-only data lines are skipped; row indices in errors count only
// the non-blank rows.
func BuildTable(tree *MetadataTree, lines []string, opts TableOptions) (*Table, error) {
	opts = opts.withDefaults()

	params := tree.Records(opts.ParameterSection)
	names, err := columnNames(params, opts)
	if err != nil {
		return nil, err
	}

	table := &Table{Columns: make([]*Column, len(params))}
	for i, p := range params {
		code := p[opts.TypeField]
		kind, ok := opts.TypeMap.Lookup(code)
		if !ok {
			return nil, &UnknownTypeCodeError{Column: names[i], Code: code}
		}
		table.Columns[i] = &Column{Name: names[i], Kind: kind, Code: code, Attributes: p}
	}

	row := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tokens := splitFields(line)
		if len(tokens) != len(table.Columns) {
			return nil, &RowWidthMismatchError{Row: row, Columns: len(table.Columns), Tokens: len(tokens)}
		}
		for i, tok := range tokens {
			if err := table.Columns[i].append(row, tok); err != nil {
				return nil, err
			}
		}
		row++
	}
	table.Rows = row
	return table, nil
}

func columnNames(params []AttributeRecord, opts TableOptions) ([]string, error) {
	if opts.ColumnNames != nil {
		if len(opts.ColumnNames) != len(params) {
			return nil, &ColumnCountMismatchError{Parameters: len(params), Names: len(opts.ColumnNames)}
		}
		return opts.ColumnNames, checkUnique(opts.ColumnNames)
	}
	if len(params) == 0 {
		return nil, ErrUnknownColumnFormat
	}
	names := make([]string, len(params))
	for i, p := range params {
		name, ok := p[opts.NameField]
		if !ok {
			return nil, ErrUnknownColumnFormat
		}
		names[i] = name
	}
	return names, checkUnique(names)
}

func checkUnique(names []string) error {
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if j, ok := seen[n]; ok {
			return &DuplicateColumnError{Name: n, First: j, Second: i}
		}
		seen[n] = i
	}
	return nil
}

// splitFields splits a data line on runs of whitespace. A single-quoted token
// is kept whole, without its quotes.
func splitFields(line string) []string {
	if !strings.ContainsRune(line, '\'') {
		return strings.Fields(line)
	}
	var (
		fields  []string
		cur     strings.Builder
		inQuote bool
		inField bool
	)
	for _, r := range line {
		switch {
		case r == '\'':
			inQuote = !inQuote
			inField = true
		case unicode.IsSpace(r) && !inQuote:
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	if inField {
		fields = append(fields, cur.String())
	}
	return fields
}
