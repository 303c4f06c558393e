// Package alignment holds aligned reads, the rendering contexts derived from
// them, pairing, and row placement.
package alignment

// Kind is the visual segment type of a RenderingContext.
type Kind int

const (
	KindMatch Kind = iota
	KindDeletion
	KindSoftClip
	KindPairGap
	KindPairOverlap
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindDeletion:
		return "deletion"
	case KindSoftClip:
		return "softclip"
	case KindPairGap:
		return "pairgap"
	case KindPairOverlap:
		return "pairoverlap"
	}
	return "unknown"
}

// RenderingContext is one contiguous visual segment of a read, spanning the
// inclusive 1-based reference interval [Start, End]. Start <= End always;
// point events are carried as Modifiers.
type RenderingContext struct {
	Kind       Kind
	Base       byte // clipped base for KindSoftClip
	Start, End uint64
	Modifiers  []Modifier
}

// Modifier is a point annotation drawn over a context. The set of
// implementations is closed: Forward, Reverse, Insertion, Mismatch and
// PairConflict.
type Modifier interface {
	isModifier()
}

// Forward marks the end edge of a forward-strand read.
type Forward struct{}

// Reverse marks the start edge of a reverse-strand read.
type Reverse struct{}

// Insertion marks an insertion of Length bases before the context start.
type Insertion struct {
	Length int
}

// Mismatch marks a read base that differs from the reference at Pos.
type Mismatch struct {
	Pos  uint64
	Base byte
}

// PairConflict marks a position where overlapping mates disagree.
type PairConflict struct {
	Pos uint64
}

func (Forward) isModifier()      {}
func (Reverse) isModifier()      {}
func (Insertion) isModifier()    {}
func (Mismatch) isModifier()     {}
func (PairConflict) isModifier() {}

// Contains reports whether pos lies in the context's interval.
func (c RenderingContext) Contains(pos uint64) bool {
	return c.Start <= pos && pos <= c.End
}

// Clip restricts the context to [lo, hi]. Edge modifiers survive only while
// their edge does, and point modifiers only while their position does.
func (c RenderingContext) Clip(lo, hi uint64) (RenderingContext, bool) {
	start, end := max(c.Start, lo), min(c.End, hi)
	if start > end {
		return RenderingContext{}, false
	}
	out := RenderingContext{Kind: c.Kind, Base: c.Base, Start: start, End: end}
	for _, m := range c.Modifiers {
		switch m := m.(type) {
		case Forward:
			if end == c.End {
				out.Modifiers = append(out.Modifiers, m)
			}
		case Reverse, Insertion:
			if start == c.Start {
				out.Modifiers = append(out.Modifiers, m)
			}
		case Mismatch:
			if out.Contains(m.Pos) {
				out.Modifiers = append(out.Modifiers, m)
			}
		case PairConflict:
			if out.Contains(m.Pos) {
				out.Modifiers = append(out.Modifiers, m)
			}
		}
	}
	return out, true
}
