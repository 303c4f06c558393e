package alignment

import (
	"sort"

	"github.com/inodb/vibe-tgv/internal/modification"
)

// Alignment is the loaded read set of one region together with its row
// placement and, once computed, its pairing.
type Alignment struct {
	Chrom      string
	Start, End uint64

	Reads   []Read
	Ys      []int   // read index -> row
	YsIndex [][]int // row -> read indices

	// ReadPairs and ShowPairs are nil until StackPairs runs. ShowPairs is
	// parallel to ReadPairs.
	ReadPairs []ReadPair
	ShowPairs []bool
}

// New returns an alignment over reads. Rows are not assigned yet.
func New(chrom string, start, end uint64, reads []Read) *Alignment {
	return &Alignment{Chrom: chrom, Start: start, End: end, Reads: reads}
}

// DecodeModifications decodes every read's MM/ML payload on a worker pool.
func (a *Alignment) DecodeModifications(workers int) error {
	inputs := make([]modification.Input, len(a.Reads))
	for i := range a.Reads {
		inputs[i] = a.Reads[i].ModificationInput()
	}
	maps, err := modification.DecodeAll(inputs, workers)
	if err != nil {
		return err
	}
	for i := range a.Reads {
		a.Reads[i].BaseModifications = maps[i]
	}
	return nil
}

// Depth returns the number of rows.
func (a *Alignment) Depth() int { return len(a.YsIndex) }

// Stack assigns each read to the first row whose previous read ends at
// least one column before it starts.
func (a *Alignment) Stack() {
	spans := make([]span, len(a.Reads))
	for i := range a.Reads {
		s, e := a.Reads[i].DisplaySpan()
		spans[i] = span{index: i, start: s, end: e}
	}
	rows := pack(spans)

	a.Ys = make([]int, len(a.Reads))
	a.YsIndex = make([][]int, len(rows))
	for y, row := range rows {
		for _, i := range row {
			a.Ys[i] = y
		}
		a.YsIndex[y] = row
	}
	a.ReadPairs, a.ShowPairs = nil, nil
}

// StackPairs builds read pairs and assigns each pair a row shared by both
// mates. Every pair is marked visible.
func (a *Alignment) StackPairs() {
	pairs := BuildPairs(a.Reads)
	spans := make([]span, len(pairs))
	for i, p := range pairs {
		spans[i] = span{index: i, start: p.Start, end: p.End}
	}
	rows := pack(spans)

	a.Ys = make([]int, len(a.Reads))
	a.YsIndex = make([][]int, len(rows))
	for y, row := range rows {
		for _, pi := range row {
			p := pairs[pi]
			a.Ys[p.Read1Index] = y
			a.YsIndex[y] = append(a.YsIndex[y], p.Read1Index)
			if p.Read2Index >= 0 {
				a.Ys[p.Read2Index] = y
				a.YsIndex[y] = append(a.YsIndex[y], p.Read2Index)
			}
		}
	}
	a.ReadPairs = pairs
	a.ShowPairs = make([]bool, len(pairs))
	for i := range a.ShowPairs {
		a.ShowPairs[i] = true
	}
}

type span struct {
	index      int
	start, end uint64
}

// pack greedily assigns spans to rows in start order and returns the
// span indices per row.
func pack(spans []span) [][]int {
	sorted := append([]span(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var (
		rows    [][]int
		lastEnd []uint64
	)
	for _, s := range sorted {
		placed := false
		for y := range rows {
			if lastEnd[y]+1 < s.start {
				rows[y] = append(rows[y], s.index)
				lastEnd[y] = s.end
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, []int{s.index})
			lastEnd = append(lastEnd, s.end)
		}
	}
	return rows
}
