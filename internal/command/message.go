// Package command parses the viewer's command-mode input into messages.
package command

import "github.com/inodb/vibe-tgv/internal/export"

// Message is one parsed command. It is a closed set: Quit,
// SetAlignmentOptions, Move and Export.
type Message interface {
	isMessage()
}

// Quit ends the session.
type Quit struct{}

// SetAlignmentOptions turns on the listed display options. An empty list
// restores the defaults.
type SetAlignmentOptions struct {
	Options []DisplayOption
}

// Move changes the viewed location.
type Move struct {
	Movement Movement
}

// Export writes the current view to Path.
type Export struct {
	Format export.Format
	Path   string
}

func (Quit) isMessage()                {}
func (SetAlignmentOptions) isMessage() {}
func (Move) isMessage()                {}
func (Export) isMessage()              {}

// Movement is a navigation target: Position, ContigPosition or Gene.
type Movement interface {
	isMovement()
}

// Position is a 1-based position on the current contig.
type Position uint64

// ContigPosition is a 1-based position on a named contig.
type ContigPosition struct {
	Contig string
	Pos    uint64
}

// Gene is a gene symbol to look up.
type Gene string

func (Position) isMovement()       {}
func (ContigPosition) isMovement() {}
func (Gene) isMovement()           {}

// DisplayOption is one alignment display setting: ViewAsPairs,
// ShowBaseModifications, Filter or SortOption.
type DisplayOption interface {
	isDisplayOption()
}

// ViewAsPairs draws mates on one row.
type ViewAsPairs struct{}

// ShowBaseModifications colors modified bases.
type ShowBaseModifications struct{}

// SortOption orders reads.
type SortOption struct {
	Sort Sort
}

// Filter keeps reads with the given base at a position. Position 0 means
// the current cursor position; SoftClip selects reads soft-clipped there
// and leaves Base zero.
type Filter struct {
	Position uint64
	Base     byte
	SoftClip bool
}

func (ViewAsPairs) isDisplayOption()           {}
func (ShowBaseModifications) isDisplayOption() {}
func (SortOption) isDisplayOption()            {}
func (Filter) isDisplayOption()                {}

// Sort is a read ordering: a SortField, BaseAt, StrandAt, or the
// composite Then and Reversed nodes.
type Sort interface {
	isSort()
}

// SortField is a sort on a single read attribute.
type SortField int

const (
	SortDefault SortField = iota
	SortStart
	SortMappingQuality
	SortSample
	SortReadGroup
	SortReadOrder
	SortReadName
	SortLength
	SortInsertSize
	SortMateContig
	SortTag
)

// BaseAt sorts by the base at Position (0 = current position).
type BaseAt struct{ Position uint64 }

// StrandAt sorts by the strand of reads covering Position (0 = current).
type StrandAt struct{ Position uint64 }

// Then sorts by First, breaking ties with Second.
type Then struct{ First, Second Sort }

// Reversed inverts the order of Sort.
type Reversed struct{ Sort Sort }

func (SortField) isSort() {}
func (BaseAt) isSort()    {}
func (StrandAt) isSort()  {}
func (Then) isSort()      {}
func (Reversed) isSort()  {}

// ThenBy composes a and b into a tie-breaking chain. SortDefault on
// either side is dropped.
func ThenBy(a, b Sort) Sort {
	if a == SortDefault {
		return b
	}
	if b == SortDefault {
		return a
	}
	return Then{First: a, Second: b}
}

// Reverse inverts s. Reversing twice returns the original sort.
func Reverse(s Sort) Sort {
	if r, ok := s.(Reversed); ok {
		return r.Sort
	}
	return Reversed{Sort: s}
}
