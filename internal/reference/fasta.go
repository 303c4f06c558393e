// Package reference loads reference sequence windows from FASTA files.
package reference

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biogo/hts/fai"
)

// ErrContigNotFound is returned when the FASTA has no record for a contig.
var ErrContigNotFound = errors.New("contig not found")

// Sequence is a window of reference bases starting at a 1-based position.
type Sequence struct {
	Chrom string
	Start uint64
	Bases []byte // uppercase
}

// Base returns the reference base at 1-based pos.
func (s *Sequence) Base(pos uint64) (byte, bool) {
	if s == nil || pos < s.Start || pos-s.Start >= uint64(len(s.Bases)) {
		return 0, false
	}
	return s.Bases[pos-s.Start], true
}

// End returns the last 1-based position covered by the window.
func (s *Sequence) End() uint64 {
	return s.Start + uint64(len(s.Bases)) - 1
}

// LoadFASTA reads [start, end] of chrom. When path+".fai" exists the
// window is read directly through the index; otherwise the file
// (optionally gzipped) is scanned.
func LoadFASTA(path, chrom string, start, end uint64) (*Sequence, error) {
	if start == 0 || end < start {
		return nil, fmt.Errorf("invalid window %d-%d", start, end)
	}
	if _, err := os.Stat(path + ".fai"); err == nil && !strings.HasSuffix(path, ".gz") {
		return loadIndexed(path, chrom, start, end)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	// Handle gzipped files
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return scanFASTA(reader, chrom, start, end)
}

func loadIndexed(path, chrom string, start, end uint64) (*Sequence, error) {
	idxFile, err := os.Open(path + ".fai")
	if err != nil {
		return nil, fmt.Errorf("open FASTA index: %w", err)
	}
	defer idxFile.Close()

	idx, err := fai.ReadFrom(idxFile)
	if err != nil {
		return nil, fmt.Errorf("read FASTA index: %w", err)
	}
	rec, ok := idx[chrom]
	if !ok {
		return nil, fmt.Errorf("%s: %w", chrom, ErrContigNotFound)
	}
	if start > uint64(rec.Length) {
		return &Sequence{Chrom: chrom, Start: start}, nil
	}
	end = min(end, uint64(rec.Length))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	seq, err := fai.NewFile(f, idx).SeqRange(chrom, int(start-1), int(end))
	if err != nil {
		return nil, fmt.Errorf("read %s:%d-%d: %w", chrom, start, end, err)
	}
	bases, err := io.ReadAll(seq)
	if err != nil {
		return nil, fmt.Errorf("read %s:%d-%d: %w", chrom, start, end, err)
	}
	return &Sequence{Chrom: chrom, Start: start, Bases: bytes.ToUpper(bases)}, nil
}

// scanFASTA collects the window from a FASTA stream, stopping once the
// window is complete.
func scanFASTA(reader io.Reader, chrom string, start, end uint64) (*Sequence, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		inContig bool
		found    bool
		pos      uint64 = 1 // position of the next base read
		out      []byte
	)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] == '>' {
			if inContig {
				break
			}
			var name string
			if fields := strings.Fields(string(line[1:])); len(fields) > 0 {
				name = fields[0]
			}
			inContig = name == chrom
			found = found || inContig
			continue
		}
		if !inContig {
			continue
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lineEnd := pos + uint64(len(line)) - 1
		if lineEnd >= start && pos <= end {
			lo := max(start, pos) - pos
			hi := min(end, lineEnd) - pos + 1
			out = append(out, line[lo:hi]...)
		}
		pos += uint64(len(line))
		if pos > end {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", chrom, ErrContigNotFound)
	}

	return &Sequence{Chrom: chrom, Start: start, Bases: bytes.ToUpper(out)}, nil
}
