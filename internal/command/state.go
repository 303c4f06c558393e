package command

import (
	"fmt"
	"math"

	"github.com/inodb/vibe-tgv/internal/alignment"
	"github.com/inodb/vibe-tgv/internal/render"
)

// State is the viewer state that command messages act on.
type State struct {
	Region  alignment.Region
	Options render.Options

	// Sorts and Filters are carried for display but not applied to reads.
	Sorts   []Sort
	Filters []Filter

	// Exports lists the snapshots requested so far, in order.
	Exports []Export
	Quit    bool
}

// Run parses input and applies every resulting message.
func (st *State) Run(input string) error {
	msgs, err := Parse(input)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if err := st.Apply(m); err != nil {
			return err
		}
	}
	return nil
}

// Apply updates the state for one message.
func (st *State) Apply(msg Message) error {
	switch m := msg.(type) {
	case Quit:
		st.Quit = true
	case SetAlignmentOptions:
		if len(m.Options) == 0 {
			st.Options = render.Options{}
			st.Sorts, st.Filters = nil, nil
			return nil
		}
		for _, o := range m.Options {
			switch o := o.(type) {
			case ViewAsPairs:
				st.Options.Paired = true
			case ShowBaseModifications:
				st.Options.ShowModifications = true
			case SortOption:
				st.Sorts = append(st.Sorts, o.Sort)
			case Filter:
				st.Filters = append(st.Filters, o)
			}
		}
	case Move:
		return st.move(m.Movement)
	case Export:
		st.Exports = append(st.Exports, m)
	default:
		return fmt.Errorf("%w: unsupported message %T", ErrInvalidCommand, msg)
	}
	return nil
}

func (st *State) move(mv Movement) error {
	switch mv := mv.(type) {
	case Position:
		st.centre(st.Region.Chrom, uint64(mv))
	case ContigPosition:
		st.centre(mv.Contig, mv.Pos)
	case Gene:
		return fmt.Errorf("%w: gene lookup for %q needs an annotation source", ErrInvalidCommand, string(mv))
	}
	return nil
}

// centre moves the region onto pos, keeping its width. Whole-contig
// regions start at pos instead.
func (st *State) centre(chrom string, pos uint64) {
	pos = max(pos, 1)
	st.Region.Chrom = chrom
	if st.Region.End == math.MaxUint64 || st.Region.End < st.Region.Start {
		st.Region.Start = pos
		return
	}
	span := st.Region.End - st.Region.Start
	start := uint64(1)
	if pos > span/2 {
		start = pos - span/2
	}
	st.Region.Start, st.Region.End = start, start+span
}
