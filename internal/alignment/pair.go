package alignment

import "github.com/biogo/hts/sam"

// ReadPair is one template drawn on a single row. Read2Index is -1 for
// reads without a mate in the loaded set.
type ReadPair struct {
	Read1Index        int
	Read2Index        int
	Start, End        uint64
	RenderingContexts []RenderingContext
}

// BuildPairs groups paired reads by name in order of first appearance.
// Unpaired reads, and mates whose partner was not loaded, become
// single-read pairs.
func BuildPairs(reads []Read) []ReadPair {
	byName := make(map[string]int)
	var groups [][]int
	for i := range reads {
		r := &reads[i]
		if r.IsPaired() {
			if g, ok := byName[r.Name]; ok && len(groups[g]) == 1 {
				groups[g] = append(groups[g], i)
				continue
			}
			byName[r.Name] = len(groups)
		}
		groups = append(groups, []int{i})
	}

	pairs := make([]ReadPair, 0, len(groups))
	for _, g := range groups {
		if len(g) == 1 {
			pairs = append(pairs, single(reads, g[0]))
			continue
		}
		a, b := g[0], g[1]
		if reads[b].Start < reads[a].Start {
			a, b = b, a
		}
		pairs = append(pairs, mate(reads, a, b))
	}
	return pairs
}

func single(reads []Read, i int) ReadPair {
	start, end := reads[i].DisplaySpan()
	return ReadPair{
		Read1Index:        i,
		Read2Index:        -1,
		Start:             start,
		End:               end,
		RenderingContexts: append([]RenderingContext(nil), reads[i].RenderingContexts...),
	}
}

// mate joins two reads with r1.Start <= r2.Start. A gap between them becomes
// a PairGap context; an overlap is drawn once as a PairOverlap context
// carrying PairConflict markers where the mates' bases disagree and the
// mismatches both mates agree on.
func mate(reads []Read, i1, i2 int) ReadPair {
	r1, r2 := &reads[i1], &reads[i2]
	s1, e1 := r1.DisplaySpan()
	s2, e2 := r2.DisplaySpan()
	p := ReadPair{Read1Index: i1, Read2Index: i2, Start: min(s1, s2), End: max(e1, e2)}

	if r2.Start > r1.End {
		p.RenderingContexts = append(p.RenderingContexts, r1.RenderingContexts...)
		if r2.Start > r1.End+1 {
			p.RenderingContexts = append(p.RenderingContexts, RenderingContext{
				Kind: KindPairGap, Start: r1.End + 1, End: r2.Start - 1,
			})
		}
		p.RenderingContexts = append(p.RenderingContexts, r2.RenderingContexts...)
		return p
	}

	lo, hi := r2.Start, min(r1.End, r2.End)
	for _, c := range r1.RenderingContexts {
		if c.Start < lo {
			if cc, ok := c.Clip(c.Start, lo-1); ok {
				p.RenderingContexts = append(p.RenderingContexts, cc)
			}
		}
	}
	p.RenderingContexts = append(p.RenderingContexts, overlap(r1, r2, lo, hi))
	for _, src := range []*Read{r1, r2} {
		for _, c := range src.RenderingContexts {
			if c.End > hi {
				if cc, ok := c.Clip(hi+1, c.End); ok {
					p.RenderingContexts = append(p.RenderingContexts, cc)
				}
			}
		}
	}
	return p
}

func overlap(r1, r2 *Read, lo, hi uint64) RenderingContext {
	c := RenderingContext{Kind: KindPairOverlap, Start: lo, End: hi}
	b1, b2 := r1.alignedBases(lo, hi), r2.alignedBases(lo, hi)
	mm1, mm2 := r1.mismatches(), r2.mismatches()
	for pos := lo; pos <= hi; pos++ {
		x, y := b1[pos], b2[pos]
		switch {
		case x != y:
			c.Modifiers = append(c.Modifiers, PairConflict{Pos: pos})
		case mm1[pos] && mm2[pos]:
			c.Modifiers = append(c.Modifiers, Mismatch{Pos: pos, Base: x})
		}
	}
	return c
}

// alignedBases returns the read base at each reference position in
// [lo, hi]; deleted positions map to '-'.
func (r *Read) alignedBases(lo, hi uint64) map[uint64]byte {
	out := make(map[uint64]byte)
	q, ref := 0, r.Start
	for _, op := range r.Cigar {
		l := op.Len()
		switch op.Type() {
		case sam.CigarSoftClipped, sam.CigarInsertion:
			q += l
		case sam.CigarDeletion, sam.CigarSkipped:
			for i := 0; i < l; i++ {
				if pos := ref + uint64(i); pos >= lo && pos <= hi {
					out[pos] = '-'
				}
			}
			ref += uint64(l)
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			for i := 0; i < l; i++ {
				if pos := ref + uint64(i); pos >= lo && pos <= hi && q+i < len(r.Seq) {
					out[pos] = r.Seq[q+i]
				}
			}
			q += l
			ref += uint64(l)
		}
	}
	return out
}

func (r *Read) mismatches() map[uint64]bool {
	out := make(map[uint64]bool)
	for _, c := range r.RenderingContexts {
		for _, m := range c.Modifiers {
			if mm, ok := m.(Mismatch); ok {
				out[mm.Pos] = true
			}
		}
	}
	return out
}
