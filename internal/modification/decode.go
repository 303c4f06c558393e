package modification

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// Decode parses an MM tag string with its parallel ML probabilities into a
// Map keyed by 1-based reference position.
//
// seq must be the uppercase read sequence including soft-clipped bases,
// cigar the read's CIGAR and start its 1-based alignment start. Malformed
// sections are abandoned in place; calls decoded before them are kept.
//
// Every delta token advances the ML cursor by exactly one, including
// tokens in reverse-strand or unknown-code sections and tokens that
// overshoot the candidate base list, so later sections stay aligned with
// their probabilities.
func Decode(mm string, ml []byte, seq []byte, cigar sam.Cigar, start uint64) Map {
	result := make(Map)
	if mm == "" {
		return result
	}

	refAt := queryToReference(cigar, start, len(seq))
	basePositions := indexBases(seq)

	mlCursor := 0
	for _, section := range strings.Split(strings.TrimRight(mm, ";"), ";") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		header, deltas, _ := strings.Cut(section, ",")
		var tokens []string
		if deltas != "" {
			tokens = strings.Split(deltas, ",")
		}

		// {base}{strand}{code}; only forward-strand single-letter codes are decoded.
		if len(header) < 3 || header[1] != '+' {
			mlCursor += len(tokens)
			continue
		}
		modType, ok := TypeFromCode(header[2])
		if !ok {
			mlCursor += len(tokens)
			continue
		}
		positions := basePositions[upper(header[0])]

		cursor := 0
		for _, tok := range tokens {
			delta, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 64)
			if errors.Is(err, strconv.ErrRange) {
				delta, err = math.MaxUint64, nil
			}
			if err != nil {
				break
			}
			if delta >= uint64(len(positions)-cursor) {
				cursor = len(positions)
				mlCursor++
				continue
			}
			cursor += int(delta)

			queryPos := positions[cursor]
			cursor++

			prob := uint8(DefaultProbability)
			if mlCursor < len(ml) {
				prob = ml[mlCursor]
			}
			mlCursor++

			if ref := refAt[queryPos]; ref != 0 {
				result[ref] = append(result[ref], BaseModification{Type: modType, Probability: prob})
			}
		}
	}

	return result
}

// queryToReference maps each 0-based query offset to its 1-based reference
// position. Offsets not covered by a match-class operation map to 0.
func queryToReference(cigar sam.Cigar, start uint64, n int) []uint64 {
	refAt := make([]uint64, n)
	q, r := 0, start
	for _, op := range cigar {
		l := op.Len()
		switch op.Type() {
		case sam.CigarSoftClipped, sam.CigarInsertion:
			q += l
		case sam.CigarDeletion, sam.CigarSkipped:
			r += uint64(l)
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < l; i++ {
				if q+i < n {
					refAt[q+i] = r + uint64(i)
				}
			}
			q += l
			r += uint64(l)
		}
	}
	return refAt
}

// indexBases lists query offsets per uppercase base, left to right.
func indexBases(seq []byte) map[byte][]int {
	idx := make(map[byte][]int, 4)
	for i, b := range seq {
		b = upper(b)
		idx[b] = append(idx[b], i)
	}
	return idx
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
