package alignment

import (
	"bytes"
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/inodb/vibe-tgv/internal/modification"
)

// Reference provides reference bases by 1-based position.
type Reference interface {
	Base(pos uint64) (byte, bool)
}

// Read is an aligned read prepared for display.
type Read struct {
	Name       string
	Chrom      string
	Start, End uint64 // 1-based inclusive aligned span
	Flags      sam.Flags
	Seq        []byte // uppercase, includes soft-clipped bases
	Cigar      sam.Cigar

	// MM/ML tag payload; ModTag is empty when the record has none.
	ModTag   string
	ModProbs []byte

	RenderingContexts []RenderingContext
	BaseModifications modification.Map
}

// IsReverse reports whether the read maps to the reverse strand.
func (r *Read) IsReverse() bool { return r.Flags&sam.Reverse != 0 }

// IsPaired reports whether the read is one mate of a template.
func (r *Read) IsPaired() bool { return r.Flags&sam.Paired != 0 }

// Mate returns 1 or 2 for the first or last segment of a paired template,
// and 0 otherwise.
func (r *Read) Mate() uint8 {
	switch {
	case !r.IsPaired():
		return 0
	case r.Flags&sam.Read1 != 0:
		return 1
	case r.Flags&sam.Read2 != 0:
		return 2
	}
	return 0
}

// DisplaySpan returns the reference interval covered by the read's
// contexts, which includes soft clips.
func (r *Read) DisplaySpan() (start, end uint64) {
	start, end = r.Start, r.End
	for _, c := range r.RenderingContexts {
		start = min(start, c.Start)
		end = max(end, c.End)
	}
	return start, end
}

// FromRecord converts a mapped record into a Read and derives its rendering
// contexts. ref may be nil, in which case only CIGAR X operations produce
// mismatches. Modifications are not decoded here; see
// Alignment.DecodeModifications.
func FromRecord(rec *sam.Record, ref Reference) (Read, error) {
	if rec.Flags&sam.Unmapped != 0 || rec.Pos < 0 || rec.Ref == nil {
		return Read{}, fmt.Errorf("record %s: unmapped", rec.Name)
	}
	if len(rec.Cigar) == 0 {
		return Read{}, fmt.Errorf("record %s: missing CIGAR", rec.Name)
	}

	r := Read{
		Name:  rec.Name,
		Chrom: rec.Ref.Name(),
		Start: uint64(rec.Pos) + 1,
		Flags: rec.Flags,
		Seq:   bytes.ToUpper(rec.Seq.Expand()),
		Cigar: rec.Cigar,
	}
	if mm, ml, ok := modification.Tags(rec); ok {
		r.ModTag, r.ModProbs = mm, ml
	}

	r.RenderingContexts, r.End = BuildContexts(r.Seq, r.Cigar, r.Start, r.IsReverse(), ref)
	return r, nil
}

// ModificationInput returns the decoder input for the read's MM/ML payload.
func (r *Read) ModificationInput() modification.Input {
	return modification.Input{MM: r.ModTag, ML: r.ModProbs, Seq: r.Seq, Cigar: r.Cigar, Start: r.Start}
}

// BuildContexts walks a CIGAR and returns the read's rendering contexts
// along with the last aligned reference position.
func BuildContexts(seq []byte, cigar sam.Cigar, start uint64, reverse bool, ref Reference) ([]RenderingContext, uint64) {
	var (
		contexts   []RenderingContext
		q          int
		r          = start
		pendingIns int
		aligned    bool
	)

	push := func(c RenderingContext) {
		if pendingIns > 0 {
			c.Modifiers = append([]Modifier{Insertion{Length: pendingIns}}, c.Modifiers...)
			pendingIns = 0
		}
		contexts = append(contexts, c)
	}
	baseAt := func(i int) byte {
		if i < len(seq) {
			return seq[i]
		}
		return 'N'
	}

	for _, op := range cigar {
		l := op.Len()
		switch op.Type() {
		case sam.CigarSoftClipped:
			for i := 0; i < l; i++ {
				var pos uint64
				if aligned {
					pos = r + uint64(i)
				} else {
					back := uint64(l - i)
					if back >= start {
						continue
					}
					pos = start - back
				}
				push(RenderingContext{Kind: KindSoftClip, Base: baseAt(q + i), Start: pos, End: pos})
			}
			q += l
		case sam.CigarInsertion:
			pendingIns += l
			q += l
		case sam.CigarDeletion, sam.CigarSkipped:
			if l > 0 {
				push(RenderingContext{Kind: KindDeletion, Start: r, End: r + uint64(l) - 1})
			}
			r += uint64(l)
			aligned = true
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			if l == 0 {
				continue
			}
			c := RenderingContext{Kind: KindMatch, Start: r, End: r + uint64(l) - 1}
			for i := 0; i < l; i++ {
				b := baseAt(q + i)
				pos := r + uint64(i)
				if isMismatch(op.Type(), b, pos, ref) {
					c.Modifiers = append(c.Modifiers, Mismatch{Pos: pos, Base: b})
				}
			}
			push(c)
			q += l
			r += uint64(l)
			aligned = true
		}
	}

	addStrand(contexts, reverse)
	return contexts, r - 1
}

func isMismatch(t sam.CigarOpType, b byte, pos uint64, ref Reference) bool {
	if t == sam.CigarEqual {
		return false
	}
	if ref != nil {
		rb, ok := ref.Base(pos)
		if !ok || rb == 'N' || b == 'N' {
			return false
		}
		return rb != b
	}
	return t == sam.CigarMismatch
}

// addStrand puts the direction arrow on the outermost match context.
func addStrand(contexts []RenderingContext, reverse bool) {
	if reverse {
		for i := range contexts {
			if contexts[i].Kind == KindMatch {
				contexts[i].Modifiers = append(contexts[i].Modifiers, Reverse{})
				return
			}
		}
		return
	}
	for i := len(contexts) - 1; i >= 0; i-- {
		if contexts[i].Kind == KindMatch {
			contexts[i].Modifiers = append(contexts[i].Modifiers, Forward{})
			return
		}
	}
}
