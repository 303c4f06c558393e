package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/inodb/vibe-tgv/internal/export"
)

// ErrInvalidCommand is returned for input Parse cannot interpret.
var ErrInvalidCommand = errors.New("invalid command")

// Parse interprets one line of command-mode input.
//
//	q                          quit
//	clear | default            restore default display options
//	paired                     view reads as pairs
//	mod | modifications        show base modifications
//	export <html|svg|text> <path>
//	FILTER|WHERE BASE[(n)] = A|T|C|G|N|SOFTCLIP
//	SORT|ORDER BY <key> [ASC|DESC] [, <key> [ASC|DESC]]...
//	<n> | <contig>:<n> | <gene>
func Parse(input string) ([]Message, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidCommand)
	}

	switch input {
	case "q":
		return []Message{Quit{}}, nil
	case "h":
		return nil, fmt.Errorf("%w: help is not available", ErrInvalidCommand)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "clear", "default":
		return []Message{SetAlignmentOptions{}}, nil
	case "paired":
		return []Message{SetAlignmentOptions{Options: []DisplayOption{ViewAsPairs{}}}}, nil
	case "mod", "modifications":
		return []Message{SetAlignmentOptions{Options: []DisplayOption{ShowBaseModifications{}}}}, nil
	}

	if msgs, ok, err := parseExport(input); ok {
		return msgs, err
	}

	if opts, ok := parseDisplayOptions(input); ok {
		return []Message{SetAlignmentOptions{Options: opts}}, nil
	}

	parts := strings.Split(input, ":")
	switch len(parts) {
	case 1:
		if n, err := strconv.ParseUint(parts[0], 10, 64); err == nil {
			return []Message{Move{Movement: Position(n)}}, nil
		}
		return []Message{Move{Movement: Gene(parts[0])}}, nil
	case 2:
		n, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, input)
		}
		return []Message{Move{Movement: ContigPosition{Contig: parts[0], Pos: n}}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, input)
}

// parseExport handles "export <format> <path>". ok is false when input is
// not an export command at all.
func parseExport(input string) (msgs []Message, ok bool, err error) {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < len("export") || !strings.EqualFold(trimmed[:len("export")], "export") {
		return nil, false, nil
	}
	rest := strings.TrimSpace(trimmed[len("export"):])
	name, path := rest, ""
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		name, path = rest[:i], strings.TrimSpace(rest[i:])
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v (use html, svg or text)", ErrInvalidCommand, err)
	}
	if path == "" {
		return nil, true, fmt.Errorf("%w: usage: export <format> <path>", ErrInvalidCommand)
	}
	return []Message{Export{Format: format, Path: path}}, true, nil
}

// parseDisplayOptions parses a sequence of FILTER and SORT clauses that
// must consume the whole input.
func parseDisplayOptions(input string) ([]DisplayOption, bool) {
	s := &scanner{src: input}
	var opts []DisplayOption
	for {
		s.skipSpace()
		if s.done() {
			return opts, true
		}
		switch {
		case s.keyword("FILTER"), s.keyword("WHERE"):
			f, ok := s.filter()
			if !ok {
				return nil, false
			}
			opts = append(opts, f)
		case s.keyword("SORT"), s.keyword("ORDER BY"):
			opts = append(opts, SortOption{Sort: s.sortExpression()})
		default:
			return nil, false
		}
	}
}

var sortKeywords = []struct {
	word  string
	field SortField
}{
	{"START", SortStart},
	{"MAPQ", SortMappingQuality},
	{"SAMPLE", SortSample},
	{"READGROUP", SortReadGroup},
	{"READORDER", SortReadOrder},
	{"READNAME", SortReadName},
	{"LENGTH", SortLength},
	{"INSERTSIZE", SortInsertSize},
	{"MATECONTIG", SortMateContig},
	{"TAG", SortTag},
}

// scanner is a cursor over command text. Keywords match
// case-insensitively as prefixes of the remaining input.
type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool   { return s.pos >= len(s.src) }
func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) skipSpace() {
	for !s.done() && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *scanner) keyword(word string) bool {
	r := s.rest()
	if len(r) < len(word) || !strings.EqualFold(r[:len(word)], word) {
		return false
	}
	s.pos += len(word)
	return true
}

func (s *scanner) literal(c byte) bool {
	if !s.done() && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

// number reads an unsigned decimal; ok is false if no digit is present.
func (s *scanner) number() (uint64, bool) {
	start := s.pos
	for !s.done() && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	n, err := strconv.ParseUint(s.src[start:s.pos], 10, 64)
	if err != nil {
		s.pos = start
		return 0, false
	}
	return n, true
}

// position reads an optional "(n)" or "()" suffix; 0 means none given.
func (s *scanner) position() uint64 {
	save := s.pos
	if !s.literal('(') {
		return 0
	}
	n, _ := s.number()
	if !s.literal(')') {
		s.pos = save
		return 0
	}
	return n
}

func (s *scanner) filter() (Filter, bool) {
	s.skipSpace()
	if !s.keyword("BASE") {
		return Filter{}, false
	}
	f := Filter{Position: s.position()}
	s.skipSpace()
	if !s.literal('=') {
		return Filter{}, false
	}
	s.skipSpace()
	if s.keyword("SOFTCLIP") {
		f.SoftClip = true
	} else {
		for _, b := range []string{"A", "T", "C", "G", "N"} {
			if s.keyword(b) {
				f.Base = b[0]
				break
			}
		}
		if f.Base == 0 {
			return Filter{}, false
		}
	}
	s.skipSpace()
	return f, true
}

// sortExpression reads a comma-separated list of sort terms. An empty
// list yields SortDefault; unconsumed text is left for the caller.
func (s *scanner) sortExpression() Sort {
	s.skipSpace()
	result, ok := s.sortTerm()
	if !ok {
		return SortDefault
	}
	for {
		save := s.pos
		s.skipSpace()
		if !s.literal(',') {
			s.pos = save
			break
		}
		s.skipSpace()
		next, ok := s.sortTerm()
		if !ok {
			s.pos = save
			break
		}
		result = ThenBy(result, next)
	}
	s.skipSpace()
	return result
}

func (s *scanner) sortTerm() (Sort, bool) {
	var term Sort
	switch {
	case s.keyword("BASE"):
		term = BaseAt{Position: s.position()}
	case s.keyword("STRAND"):
		term = StrandAt{Position: s.position()}
	default:
		for _, k := range sortKeywords {
			if s.keyword(k.word) {
				term = k.field
				break
			}
		}
	}
	if term == nil {
		return nil, false
	}

	save := s.pos
	s.skipSpace()
	switch {
	case s.keyword("DESC"):
		term = Reverse(term)
	case s.keyword("ASC"):
	default:
		s.pos = save
	}
	return term, true
}
