package alignment

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(t sam.CigarOpType, n int) sam.CigarOp { return sam.NewCigarOp(t, n) }

type mapRef map[uint64]byte

func (m mapRef) Base(pos uint64) (byte, bool) {
	b, ok := m[pos]
	return b, ok
}

func TestBuildContexts_Segments(t *testing.T) {
	seq := []byte("GGACGTTTACGT")
	cigar := sam.Cigar{
		op(sam.CigarSoftClipped, 2),
		op(sam.CigarMatch, 4),
		op(sam.CigarInsertion, 2),
		op(sam.CigarDeletion, 3),
		op(sam.CigarMatch, 3),
		op(sam.CigarSoftClipped, 1),
	}

	contexts, end := BuildContexts(seq, cigar, 10, false, nil)

	assert.Equal(t, uint64(19), end)
	assert.Equal(t, []RenderingContext{
		{Kind: KindSoftClip, Base: 'G', Start: 8, End: 8},
		{Kind: KindSoftClip, Base: 'G', Start: 9, End: 9},
		{Kind: KindMatch, Start: 10, End: 13},
		{Kind: KindDeletion, Start: 14, End: 16, Modifiers: []Modifier{Insertion{Length: 2}}},
		{Kind: KindMatch, Start: 17, End: 19, Modifiers: []Modifier{Forward{}}},
		{Kind: KindSoftClip, Base: 'T', Start: 20, End: 20},
	}, contexts)
}

func TestBuildContexts_ReverseStrand(t *testing.T) {
	cigar := sam.Cigar{op(sam.CigarMatch, 2), op(sam.CigarSkipped, 100), op(sam.CigarMatch, 2)}

	contexts, end := BuildContexts([]byte("ACGT"), cigar, 1, true, nil)

	require.Len(t, contexts, 3)
	assert.Equal(t, []Modifier{Reverse{}}, contexts[0].Modifiers)
	assert.Empty(t, contexts[2].Modifiers)
	assert.Equal(t, RenderingContext{Kind: KindDeletion, Start: 3, End: 102}, contexts[1])
	assert.Equal(t, uint64(104), end)
}

func TestBuildContexts_Mismatches(t *testing.T) {
	ref := mapRef{1: 'A', 2: 'C', 3: 'N', 4: 'T'}
	contexts, _ := BuildContexts([]byte("AGGG"), sam.Cigar{op(sam.CigarMatch, 4)}, 1, false, ref)

	require.Len(t, contexts, 1)
	assert.Equal(t, []Modifier{
		Mismatch{Pos: 2, Base: 'G'},
		Mismatch{Pos: 4, Base: 'G'},
		Forward{},
	}, contexts[0].Modifiers)
}

func TestBuildContexts_MismatchOpWithoutReference(t *testing.T) {
	cigar := sam.Cigar{op(sam.CigarEqual, 2), op(sam.CigarMismatch, 1), op(sam.CigarEqual, 1)}
	contexts, _ := BuildContexts([]byte("ACTT"), cigar, 5, true, nil)

	require.Len(t, contexts, 3)
	assert.Equal(t, []Modifier{Mismatch{Pos: 7, Base: 'T'}}, contexts[1].Modifiers)
}

func TestBuildContexts_LeadingClipAtContigStart(t *testing.T) {
	contexts, _ := BuildContexts([]byte("TTAC"), sam.Cigar{op(sam.CigarSoftClipped, 2), op(sam.CigarMatch, 2)}, 2, false, nil)

	// Only one clipped base fits before position 2.
	require.Len(t, contexts, 2)
	assert.Equal(t, RenderingContext{Kind: KindSoftClip, Base: 'T', Start: 1, End: 1}, contexts[0])
}

func TestContextsStartBeforeEnd(t *testing.T) {
	cigar := sam.Cigar{
		op(sam.CigarHardClipped, 3), op(sam.CigarSoftClipped, 1), op(sam.CigarMatch, 1),
		op(sam.CigarInsertion, 1), op(sam.CigarDeletion, 1), op(sam.CigarMatch, 5), op(sam.CigarPadded, 2),
	}
	contexts, _ := BuildContexts([]byte("AAAAAAAA"), cigar, 50, false, nil)
	for _, c := range contexts {
		assert.LessOrEqual(t, c.Start, c.End)
	}
}

func TestClip(t *testing.T) {
	c := RenderingContext{Kind: KindMatch, Start: 10, End: 20, Modifiers: []Modifier{
		Insertion{Length: 1}, Reverse{}, Forward{}, Mismatch{Pos: 12, Base: 'A'}, Mismatch{Pos: 18, Base: 'C'}, PairConflict{Pos: 19},
	}}

	left, ok := c.Clip(0, 15)
	require.True(t, ok)
	assert.Equal(t, RenderingContext{Kind: KindMatch, Start: 10, End: 15, Modifiers: []Modifier{
		Insertion{Length: 1}, Reverse{}, Mismatch{Pos: 12, Base: 'A'},
	}}, left)

	right, ok := c.Clip(16, 30)
	require.True(t, ok)
	assert.Equal(t, RenderingContext{Kind: KindMatch, Start: 16, End: 20, Modifiers: []Modifier{
		Forward{}, Mismatch{Pos: 18, Base: 'C'}, PairConflict{Pos: 19},
	}}, right)

	_, ok = c.Clip(21, 30)
	assert.False(t, ok)
}

func TestDisplaySpan(t *testing.T) {
	r := Read{Start: 10, End: 20, RenderingContexts: []RenderingContext{
		{Kind: KindSoftClip, Start: 8, End: 8},
		{Kind: KindMatch, Start: 10, End: 20},
		{Kind: KindSoftClip, Start: 21, End: 21},
	}}
	s, e := r.DisplaySpan()
	assert.Equal(t, uint64(8), s)
	assert.Equal(t, uint64(21), e)
}
