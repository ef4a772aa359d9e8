package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// maxLineSize bounds a single ODF line.
const maxLineSize = 1 << 20

// headerState is the accumulator folded over the header lines.
type headerState struct {
	tree    *MetadataTree
	entries map[string][]Entry
	current string
	// record indexes, per section, the most recently opened AttributeRecord.
	record map[string]int
}

func newHeaderState() *headerState {
	return &headerState{
		tree:    NewMetadataTree(),
		entries: make(map[string][]Entry),
		record:  make(map[string]int),
	}
}

// ParseHeader reads an ODF document from r. It returns the header metadata and
// every line after the header terminator, verbatim and in order.
// An empty marker selects DefaultHeaderMarker.
func ParseHeader(r io.Reader, marker string) (*MetadataTree, []string, error) {
	if marker == "" {
		marker = DefaultHeaderMarker
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	state := newHeaderState()
	lineNo := 0
	terminated := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if isTerminator(line, marker) {
			terminated = true
			break
		}
		if err := state.consume(lineNo, line); err != nil {
			return nil, nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !terminated {
		return nil, nil, ErrUnterminatedHeader
	}

	var data []string
	for scanner.Scan() {
		data = append(data, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read data: %w", err)
	}

	return state.finish(), data, nil
}

func isTerminator(line, marker string) bool {
	if strings.HasPrefix(line, marker) {
		return true
	}
	trimmed := strings.TrimSpace(marker)
	return trimmed != "" && strings.TrimSpace(line) == trimmed
}

// consume classifies one header line and applies it to the state.
func (s *headerState) consume(lineNo int, line string) error {
	line = strings.TrimSuffix(line, ",")
	if line == "" {
		return &HeaderFormatError{Line: lineNo, Text: line}
	}

	first := []rune(line)[0]
	if isWordRune(first) {
		s.openSection(strings.TrimRightFunc(strings.ReplaceAll(line, ",", ""), unicode.IsSpace))
		return nil
	}
	if !unicode.IsSpace(first) {
		return &HeaderFormatError{Line: lineNo, Text: line}
	}

	if s.current == "" {
		return &HeaderFormatError{Line: lineNo, Text: line}
	}
	body := strings.TrimLeftFunc(line, unicode.IsSpace)

	key, value, ok := strings.Cut(body, "=")
	if !ok {
		s.entries[s.current] = append(s.entries[s.current], Entry{Raw: RawLine(line)})
		return nil
	}
	key = strings.TrimSpace(key)
	value = unquote(strings.TrimSpace(value))
	s.entries[s.current][s.record[s.current]].Record[key] = value
	return nil
}

func (s *headerState) openSection(name string) {
	s.entries[name] = append(s.entries[name], Entry{Record: make(AttributeRecord)})
	s.record[name] = len(s.entries[name]) - 1
	s.current = name
	if _, ok := s.tree.Get(name); !ok {
		s.tree.Set(name, SectionValue{Kind: SectionMany})
	}
}

// finish collapses singleton record sections and returns the tree.
func (s *headerState) finish() *MetadataTree {
	for _, name := range s.tree.Names() {
		entries := s.entries[name]
		if len(entries) == 1 && !entries[0].IsRaw() {
			s.tree.Set(name, SectionValue{Kind: SectionSingle, Single: entries[0].Record})
			continue
		}
		s.tree.Set(name, SectionValue{Kind: SectionMany, Many: entries})
	}
	return s.tree
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// unquote removes one pair of surrounding single quotes.
func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
		return v[1 : len(v)-1]
	}
	return v
}
