package modification

import (
	"bytes"

	"github.com/biogo/hts/sam"
)

var (
	mmTags = []sam.Tag{sam.NewTag("MM"), sam.NewTag("Mm")}
	mlTags = []sam.Tag{sam.NewTag("ML"), sam.NewTag("Ml")}
)

// Tags returns the raw MM string and ML bytes of a record, falling back
// to the legacy Mm/Ml spelling. ok is false when no MM tag is present.
func Tags(rec *sam.Record) (mm string, ml []byte, ok bool) {
	for _, t := range mmTags {
		if aux := rec.AuxFields.Get(t); aux != nil {
			if s, isString := aux.Value().(string); isString {
				mm, ok = s, true
				break
			}
		}
	}
	if !ok {
		return "", nil, false
	}
	for _, t := range mlTags {
		if aux := rec.AuxFields.Get(t); aux != nil {
			if b, isBytes := aux.Value().([]uint8); isBytes {
				ml = b
				break
			}
		}
	}
	return mm, ml, true
}

// Input bundles everything Decode needs for one read.
type Input struct {
	MM    string
	ML    []byte
	Seq   []byte // uppercase
	Cigar sam.Cigar
	Start uint64 // 1-based
}

// Decode decodes the input's calls.
func (in Input) Decode() Map {
	return Decode(in.MM, in.ML, in.Seq, in.Cigar, in.Start)
}

// InputFromRecord extracts the decoder input of a mapped record. ok is
// false for unmapped records; a record without tags yields an input with
// an empty MM string.
func InputFromRecord(rec *sam.Record) (in Input, ok bool) {
	if rec.Flags&sam.Unmapped != 0 || rec.Pos < 0 {
		return Input{}, false
	}
	in = Input{
		Seq:   bytes.ToUpper(rec.Seq.Expand()),
		Cigar: rec.Cigar,
		Start: uint64(rec.Pos) + 1,
	}
	in.MM, in.ML, _ = Tags(rec)
	return in, true
}

// FromRecord decodes the modification calls carried by an aligned record.
// Records without an MM tag or unmapped records yield an empty map.
func FromRecord(rec *sam.Record) Map {
	in, ok := InputFromRecord(rec)
	if !ok {
		return make(Map)
	}
	return in.Decode()
}
