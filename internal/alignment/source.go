package alignment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"go.uber.org/zap"
)

// RecordReader is implemented by both BAM and SAM readers.
type RecordReader interface {
	// Read returns the next record, or io.EOF when there are none left.
	Read() (*sam.Record, error)
}

// Reader reads alignment records from a BAM or SAM file.
type Reader struct {
	rr     RecordReader
	header *sam.Header
	file   *os.File
	bam    *bam.Reader
}

// OpenReader opens a BAM (BGZF-compressed) or plain SAM file.
// Use "-" to read SAM from stdin.
func OpenReader(path string) (*Reader, error) {
	if path == "-" {
		return NewSAMReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment file: %w", err)
	}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read alignment header: %w", err)
	}

	// BGZF shares the gzip magic number (0x1f, 0x8b).
	if magic[0] == 0x1f && magic[1] == 0x8b {
		r, err := bam.NewReader(br, 0)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create bam reader: %w", err)
		}
		return &Reader{rr: r, header: r.Header(), file: file, bam: r}, nil
	}

	r, err := NewSAMReader(br)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewSAMReader reads SAM text from r.
func NewSAMReader(r io.Reader) (*Reader, error) {
	sr, err := sam.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create sam reader: %w", err)
	}
	return &Reader{rr: sr, header: sr.Header()}, nil
}

// Header returns the file header.
func (r *Reader) Header() *sam.Header { return r.header }

// Read returns the next record.
func (r *Reader) Read() (*sam.Record, error) { return r.rr.Read() }

// Close releases the underlying file.
func (r *Reader) Close() error {
	var errs []error
	if r.bam != nil {
		errs = append(errs, r.bam.Close())
	}
	if r.file != nil {
		errs = append(errs, r.file.Close())
	}
	return errors.Join(errs...)
}

// Region is a 1-based inclusive genomic interval.
type Region struct {
	Chrom      string
	Start, End uint64
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Start, r.End)
}

// ParseRegion parses "chrom", "chrom:pos" or "chrom:start-end". A bare
// chromosome covers the whole contig; a single position covers one base.
// Thousands separators are accepted.
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Region{}, fmt.Errorf("empty region")
	}
	chrom, coords, found := strings.Cut(s, ":")
	if !found {
		return Region{Chrom: chrom, Start: 1, End: math.MaxUint64}, nil
	}

	parse := func(v string) (uint64, error) {
		n, err := strconv.ParseUint(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 10, 64)
		if err != nil || n == 0 {
			return 0, fmt.Errorf("invalid region coordinate %q", v)
		}
		return n, nil
	}

	startStr, endStr, isRange := strings.Cut(coords, "-")
	start, err := parse(startStr)
	if err != nil {
		return Region{}, err
	}
	end := start
	if isRange {
		if end, err = parse(endStr); err != nil {
			return Region{}, err
		}
	}
	if end < start {
		return Region{}, fmt.Errorf("region %q: end before start", s)
	}
	return Region{Chrom: chrom, Start: start, End: end}, nil
}

// Loader builds an Alignment from the records overlapping a region.
type Loader struct {
	ref    Reference
	logger *zap.Logger
}

// NewLoader creates a loader without a reference sequence.
func NewLoader() *Loader {
	return &Loader{logger: zap.NewNop()}
}

// SetReference sets the reference used for mismatch detection.
func (l *Loader) SetReference(ref Reference) {
	l.ref = ref
}

// SetLogger sets the logger for skipped-record and summary messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load reads every record from rr and keeps the mapped reads on
// region.Chrom whose display span overlaps the region.
func (l *Loader) Load(rr RecordReader, region Region) (*Alignment, error) {
	var (
		candidates []Read
		skipped    int
	)
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if rec.Ref == nil || rec.Ref.Name() != region.Chrom {
			continue
		}
		if rec.Flags&sam.Unmapped != 0 || uint64(rec.Pos)+1 > region.End {
			continue
		}

		read, err := FromRecord(rec, l.ref)
		if err != nil {
			skipped++
			l.logger.Debug("skipping record", zap.String("name", rec.Name), zap.Error(err))
			continue
		}
		candidates = append(candidates, read)
	}

	idx := BuildIntervalIndex(candidates)
	hits := idx.Overlapping(region.Start, region.End)
	reads := make([]Read, len(hits))
	for i, h := range hits {
		reads[i] = candidates[h]
	}

	l.logger.Info("loaded reads",
		zap.String("region", region.String()),
		zap.Int("reads", len(reads)),
		zap.Int("skipped", skipped))

	return New(region.Chrom, region.Start, region.End, reads), nil
}
