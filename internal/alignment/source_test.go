package alignment

import (
	"math"
	"strings"
	"testing"

	"github.com/inodb/vibe-tgv/internal/modification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in      string
		want    Region
		wantErr bool
	}{
		{in: "chr1:100-200", want: Region{Chrom: "chr1", Start: 100, End: 200}},
		{in: "chr1:1,000-2,000", want: Region{Chrom: "chr1", Start: 1000, End: 2000}},
		{in: "chr7:55", want: Region{Chrom: "chr7", Start: 55, End: 55}},
		{in: " chrX ", want: Region{Chrom: "chrX", Start: 1, End: math.MaxUint64}},
		{in: "", wantErr: true},
		{in: "chr1:0-10", wantErr: true},
		{in: "chr1:20-10", wantErr: true},
		{in: "chr1:abc", wantErr: true},
		{in: "chr1:10-", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRegion(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegionString(t *testing.T) {
	assert.Equal(t, "chr1:5-10", Region{Chrom: "chr1", Start: 5, End: 10}.String())
}

const testSAM = "@HD\tVN:1.6\n" +
	"@SQ\tSN:chr1\tLN:1000\n" +
	"@SQ\tSN:chr2\tLN:1000\n" +
	"r1\t0\tchr1\t10\t60\t2S8M\t*\t0\t0\tGGACGCACGC\t*\tMM:Z:C+m?,0\tML:B:C,200\n" +
	"r2\t16\tchr1\t50\t60\t5M\t*\t0\t0\tACGTA\t*\n" +
	"r3\t0\tchr2\t10\t60\t4M\t*\t0\t0\tACGT\t*\n" +
	"r4\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\t*\n" +
	"r5\t0\tchr1\t500\t60\t4M\t*\t0\t0\tACGT\t*\n"

func loadTestSAM(t *testing.T, region string) *Alignment {
	t.Helper()
	r, err := NewSAMReader(strings.NewReader(testSAM))
	require.NoError(t, err)
	defer r.Close()

	reg, err := ParseRegion(region)
	require.NoError(t, err)

	l := NewLoader()
	l.SetLogger(zap.NewNop())
	a, err := l.Load(r, reg)
	require.NoError(t, err)
	return a
}

func TestLoader_Load(t *testing.T) {
	a := loadTestSAM(t, "chr1:1-100")

	assert.Equal(t, "chr1", a.Chrom)
	require.Len(t, a.Reads, 2)

	r1 := a.Reads[0]
	assert.Equal(t, "r1", r1.Name)
	assert.Equal(t, uint64(10), r1.Start)
	assert.Equal(t, uint64(17), r1.End)
	start, end := r1.DisplaySpan()
	assert.Equal(t, uint64(8), start, "soft clip extends the span")
	assert.Equal(t, uint64(17), end)
	assert.Equal(t, "C+m?,0", r1.ModTag)
	assert.Equal(t, []byte{200}, r1.ModProbs)

	r2 := a.Reads[1]
	assert.Equal(t, "r2", r2.Name)
	assert.True(t, r2.IsReverse())
	assert.Contains(t, r2.RenderingContexts[0].Modifiers, Modifier(Reverse{}))

	require.NoError(t, a.DecodeModifications(1))
	assert.Equal(t, modification.Map{11: {{Type: modification.FiveMC, Probability: 200}}}, a.Reads[0].BaseModifications)
}

func TestLoader_Load_Narrow(t *testing.T) {
	a := loadTestSAM(t, "chr1:52")
	require.Len(t, a.Reads, 1)
	assert.Equal(t, "r2", a.Reads[0].Name)

	a = loadTestSAM(t, "chr2")
	require.Len(t, a.Reads, 1)
	assert.Equal(t, "r3", a.Reads[0].Name)

	a = loadTestSAM(t, "chr3")
	assert.Empty(t, a.Reads)
}

func TestLoader_Reference(t *testing.T) {
	r, err := NewSAMReader(strings.NewReader(testSAM))
	require.NoError(t, err)

	l := NewLoader()
	l.SetReference(mapRef{50: 'A', 51: 'A', 52: 'G', 53: 'T', 54: 'A'})
	a, err := l.Load(r, Region{Chrom: "chr1", Start: 40, End: 60})
	require.NoError(t, err)
	require.Len(t, a.Reads, 1)

	assert.Contains(t, a.Reads[0].RenderingContexts[0].Modifiers, Modifier(Mismatch{Pos: 51, Base: 'C'}))
}
