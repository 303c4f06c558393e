// Package modification decodes per-base modification calls from the MM/ML
// auxiliary tags of aligned reads.
//
// Tag format reference: https://samtools.github.io/hts-specs/SAMtags.pdf
package modification

import "sort"

// Type is the chemical modification reported by a call.
type Type int

const (
	// FiveMC is 5-methylcytosine, encoded as C+m.
	FiveMC Type = iota
	// FiveHMC is 5-hydroxymethylcytosine, encoded as C+h.
	FiveHMC
	// SixMA is N6-methyladenine, encoded as A+a.
	SixMA
)

// Probability thresholds on the 0-255 ML scale.
const (
	HighThreshold = 179 // >70%
	LowThreshold  = 77  // <30%

	// DefaultProbability is used when the ML stream is shorter than the calls.
	DefaultProbability = 255
)

// TypeFromCode maps a single-letter MM modification code to a Type.
func TypeFromCode(code byte) (Type, bool) {
	switch code {
	case 'm':
		return FiveMC, true
	case 'h':
		return FiveHMC, true
	case 'a':
		return SixMA, true
	}
	return 0, false
}

// Code returns the single-letter MM code for the type.
func (t Type) Code() byte {
	switch t {
	case FiveMC:
		return 'm'
	case FiveHMC:
		return 'h'
	case SixMA:
		return 'a'
	}
	return '?'
}

// String returns the conventional abbreviation (5mC, 5hmC, 6mA).
func (t Type) String() string {
	switch t {
	case FiveMC:
		return "5mC"
	case FiveHMC:
		return "5hmC"
	case SixMA:
		return "6mA"
	}
	return "unknown"
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, bool) {
	for _, t := range []Type{FiveMC, FiveHMC, SixMA} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// BaseModification is one decoded call at a reference position.
type BaseModification struct {
	Type        Type
	Probability uint8 // 0 = unmodified, 255 = fully modified
}

// IsHigh reports whether the call has probability >= 179/255.
func (m BaseModification) IsHigh() bool {
	return m.Probability >= HighThreshold
}

// IsLow reports whether the call has probability < 77/255.
func (m BaseModification) IsLow() bool {
	return m.Probability < LowThreshold
}

// Level classifies the call as "high", "low" or "mid".
func (m BaseModification) Level() string {
	switch {
	case m.IsHigh():
		return "high"
	case m.IsLow():
		return "low"
	}
	return "mid"
}

// Map holds decoded calls keyed by 1-based reference position. Calls at a
// position keep their decode order. A missing key means no call was made,
// not that the base is unmodified.
type Map map[uint64][]BaseModification

// Positions returns the reference positions carrying calls, ascending.
func (m Map) Positions() []uint64 {
	pos := make([]uint64, 0, len(m))
	for p := range m {
		pos = append(pos, p)
	}
	sort.Slice(pos, func(i, j int) bool { return pos[i] < pos[j] })
	return pos
}

// Preferred returns the call used for display at pos: 5mC first, then
// 5hmC, then whichever call was decoded first.
func (m Map) Preferred(pos uint64) (BaseModification, bool) {
	calls := m[pos]
	if len(calls) == 0 {
		return BaseModification{}, false
	}
	for _, want := range []Type{FiveMC, FiveHMC} {
		for _, c := range calls {
			if c.Type == want {
				return c, true
			}
		}
	}
	return calls[0], true
}

// Count returns the total number of calls in the map.
func (m Map) Count() int {
	n := 0
	for _, calls := range m {
		n += len(calls)
	}
	return n
}

// Call is one decoded call attributed to a read.
type Call struct {
	Read  string
	Chrom string
	Pos   uint64
	// Mate is 1 or 2 for the first or last segment of a template, 0 for
	// unpaired reads. Mates share a read name.
	Mate    uint8
	Reverse bool
	BaseModification
}

// Calls flattens m into calls for one read, ordered by position and then
// decode order.
func (m Map) Calls(read, chrom string, mate uint8, reverse bool) []Call {
	calls := make([]Call, 0, m.Count())
	for _, pos := range m.Positions() {
		for _, bm := range m[pos] {
			calls = append(calls, Call{Read: read, Chrom: chrom, Pos: pos, Mate: mate, Reverse: reverse, BaseModification: bm})
		}
	}
	return calls
}
