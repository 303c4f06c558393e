package modification

import (
	"testing"

	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func match(n int) sam.CigarOp    { return sam.NewCigarOp(sam.CigarMatch, n) }
func softclip(n int) sam.CigarOp { return sam.NewCigarOp(sam.CigarSoftClipped, n) }
func deletion(n int) sam.CigarOp { return sam.NewCigarOp(sam.CigarDeletion, n) }

func TestDecode_FiveMCBasic(t *testing.T) {
	// C offsets: 1, 3, 5, 7. delta 0 -> C[0]=q1 -> r2; delta 1 -> C[2]=q5 -> r6
	got := Decode("C+m?,0,1", []byte{200, 50}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

	want := Map{
		2: {{Type: FiveMC, Probability: 200}},
		6: {{Type: FiveMC, Probability: 50}},
	}
	assert.Equal(t, want, got)
}

func TestDecode_LeadingSoftClip(t *testing.T) {
	got := Decode("C+m?,0", []byte{255}, []byte("GGACGCACGC"), sam.Cigar{softclip(2), match(8)}, 1)

	assert.Equal(t, Map{2: {{Type: FiveMC, Probability: 255}}}, got)
}

func TestDecode_FiveHMC(t *testing.T) {
	got := Decode("C+h?,1", []byte{180}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

	assert.Equal(t, Map{4: {{Type: FiveHMC, Probability: 180}}}, got)
}

func TestDecode_SixMA(t *testing.T) {
	got := Decode("A+a.,1", []byte{90}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 100)

	assert.Equal(t, Map{104: {{Type: SixMA, Probability: 90}}}, got)
}

func TestDecode_SkippedSections(t *testing.T) {
	tests := []struct {
		name string
		mm   string
	}{
		{"reverse strand", "C-m?,0"},
		{"reverse strand many deltas", "C-m?,0,0,1,0"},
		{"unknown code", "C+z?,0"},
		{"chebi code", "C+76792,0"},
		{"short header", "C+,0"},
		{"empty", ""},
		{"only separators", ";;"},
		{"no deltas", "C+m?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.mm, []byte{200, 100, 50, 25}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)
			assert.Empty(t, got)
		})
	}
}

func TestDecode_Deletion(t *testing.T) {
	// q0->r1 q1->r2 q2->r3, r4 r5 deleted, q3->r6 q4->r7 q5->r8
	got := Decode("C+m?,0,0", []byte{200, 100}, []byte("ACGCAC"),
		sam.Cigar{match(3), deletion(2), match(3)}, 1)

	assert.Equal(t, Map{
		2: {{Type: FiveMC, Probability: 200}},
		6: {{Type: FiveMC, Probability: 100}},
	}, got)
}

func TestDecode_CursorAdvancesThroughSkippedSections(t *testing.T) {
	tests := []struct {
		name string
		mm   string
	}{
		{"reverse strand first", "C-m?,0,0;C+h?,0"},
		{"unknown code first", "C+z?,0,0;C+h?,0"},
		{"base absent from read", "T+m?,0,0;C+h?,0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.mm, []byte{10, 20, 30}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)
			assert.Equal(t, Map{2: {{Type: FiveHMC, Probability: 30}}}, got)
		})
	}
}

func TestDecode_OvershootConsumesProbability(t *testing.T) {
	// Four Cs; delta 9 overshoots but still consumes byte 11, so the
	// following section reads byte 22.
	got := Decode("C+m?,9;C+h?,0", []byte{11, 22}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

	assert.Equal(t, Map{2: {{Type: FiveHMC, Probability: 22}}}, got)
}

func TestDecode_HugeDeltaOvershoots(t *testing.T) {
	for _, delta := range []string{"4294967296", "18446744073709551615", "99999999999999999999999"} {
		got := Decode("C+m?,"+delta+";C+h?,0", []byte{10, 20}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

		assert.Equal(t, Map{2: {{Type: FiveHMC, Probability: 20}}}, got, delta)
	}
}

func TestDecode_OvershootMidSection(t *testing.T) {
	got := Decode("C+m?,0,5,0;C+h?,1", []byte{1, 2, 3, 4}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

	assert.Equal(t, Map{
		2: {{Type: FiveMC, Probability: 1}},
		4: {{Type: FiveHMC, Probability: 4}},
	}, got)
}

func TestDecode_MalformedTokenAbandonsSection(t *testing.T) {
	got := Decode("C+m?,0,x,0;A+a?,0", []byte{200, 150, 100}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

	// Section one keeps its first call and stops at "x"; section two
	// still decodes.
	require.Contains(t, got, uint64(2))
	assert.Equal(t, []BaseModification{{Type: FiveMC, Probability: 200}}, got[2])
	require.Contains(t, got, uint64(1))
	assert.Equal(t, SixMA, got[1][0].Type)
	assert.Len(t, got, 2)
}

func TestDecode_MissingProbabilitiesDefault(t *testing.T) {
	got := Decode("C+m?,0,0", []byte{42}, []byte("ACGCACGC"), sam.Cigar{match(8)}, 1)

	assert.Equal(t, uint8(42), got[2][0].Probability)
	assert.Equal(t, uint8(DefaultProbability), got[4][0].Probability)
}

func TestDecode_DropsClippedOffsets(t *testing.T) {
	// The first C sits in the soft clip and is silently dropped.
	got := Decode("C+m?,0,0", []byte{7, 8}, []byte("CAACG"), sam.Cigar{softclip(2), match(3)}, 10)

	assert.Equal(t, Map{11: {{Type: FiveMC, Probability: 8}}}, got)
}

func TestDecode_MultipleCallsAtPosition(t *testing.T) {
	got := Decode("C+h?,0;C+m?,0", []byte{60, 220}, []byte("ACGT"), sam.Cigar{match(4)}, 1)

	require.Len(t, got[2], 2)
	assert.Equal(t, FiveHMC, got[2][0].Type)
	assert.Equal(t, FiveMC, got[2][1].Type)

	pref, ok := got.Preferred(2)
	require.True(t, ok)
	assert.Equal(t, BaseModification{Type: FiveMC, Probability: 220}, pref)
}

func TestDecode_Idempotent(t *testing.T) {
	seq := []byte("GGACGCACGCAATTAC")
	cigar := sam.Cigar{softclip(2), match(6), deletion(3), match(8)}
	mm := "C+m?,0,1,0;C+h?,1;A+a.,0,2;C-m?,0"
	ml := []byte{1, 2, 3, 4, 5, 6, 7}

	first := Decode(mm, ml, seq, cigar, 500)
	for range 5 {
		assert.Equal(t, first, Decode(mm, ml, seq, cigar, 500))
	}
}

func TestQueryToReference(t *testing.T) {
	cigar := sam.Cigar{
		softclip(2),
		match(3),
		sam.NewCigarOp(sam.CigarInsertion, 2),
		deletion(4),
		sam.NewCigarOp(sam.CigarEqual, 2),
		sam.NewCigarOp(sam.CigarHardClipped, 5),
	}
	got := queryToReference(cigar, 100, 9)

	assert.Equal(t, []uint64{0, 0, 100, 101, 102, 0, 0, 107, 108}, got)
}

func TestQueryToReference_MonotonicRuns(t *testing.T) {
	cigar := sam.Cigar{match(5), sam.NewCigarOp(sam.CigarSkipped, 100), sam.NewCigarOp(sam.CigarMismatch, 5)}
	got := queryToReference(cigar, 1, 10)

	for i := 1; i < 5; i++ {
		assert.Equal(t, got[i-1]+1, got[i])
	}
	for i := 6; i < 10; i++ {
		assert.Equal(t, got[i-1]+1, got[i])
	}
	assert.Equal(t, uint64(106), got[5])
}

func TestBaseModificationThresholds(t *testing.T) {
	tests := []struct {
		prob      uint8
		high, low bool
	}{
		{0, false, true},
		{76, false, true},
		{77, false, false},
		{178, false, false},
		{179, true, false},
		{255, true, false},
	}
	for _, tt := range tests {
		m := BaseModification{Type: FiveMC, Probability: tt.prob}
		assert.Equal(t, tt.high, m.IsHigh(), "IsHigh(%d)", tt.prob)
		assert.Equal(t, tt.low, m.IsLow(), "IsLow(%d)", tt.prob)
	}
	assert.Equal(t, "high", BaseModification{Probability: 200}.Level())
	assert.Equal(t, "low", BaseModification{Probability: 10}.Level())
	assert.Equal(t, "mid", BaseModification{Probability: 128}.Level())
}

func TestTypeCodes(t *testing.T) {
	for _, typ := range []Type{FiveMC, FiveHMC, SixMA} {
		got, ok := TypeFromCode(typ.Code())
		require.True(t, ok)
		assert.Equal(t, typ, got)
	}
	assert.Equal(t, "5hmC", FiveHMC.String())
	for _, typ := range []Type{FiveMC, FiveHMC, SixMA} {
		got, ok := ParseType(typ.String())
		require.True(t, ok)
		assert.Equal(t, typ, got)
	}
	_, ok := TypeFromCode('z')
	assert.False(t, ok)
	_, ok = ParseType("4mC")
	assert.False(t, ok)
}

func TestMapPositionsSorted(t *testing.T) {
	m := Map{9: nil, 3: nil, 7: nil}
	assert.Equal(t, []uint64{3, 7, 9}, m.Positions())
}

func TestMapCalls(t *testing.T) {
	m := Map{
		9: {{Type: SixMA, Probability: 1}},
		3: {{Type: FiveMC, Probability: 2}, {Type: FiveHMC, Probability: 3}},
	}
	assert.Equal(t, []Call{
		{Read: "r", Chrom: "chr1", Pos: 3, Mate: 2, Reverse: true, BaseModification: BaseModification{Type: FiveMC, Probability: 2}},
		{Read: "r", Chrom: "chr1", Pos: 3, Mate: 2, Reverse: true, BaseModification: BaseModification{Type: FiveHMC, Probability: 3}},
		{Read: "r", Chrom: "chr1", Pos: 9, Mate: 2, Reverse: true, BaseModification: BaseModification{Type: SixMA, Probability: 1}},
	}, m.Calls("r", "chr1", 2, true))
	assert.Empty(t, Map{}.Calls("r", "chr1", 0, false))
}
