// Package output provides modification call output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-tgv/internal/modification"
)

// CallWriter writes modification calls in tab-delimited format.
type CallWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewCallWriter creates a new tab-delimited writer.
func NewCallWriter(w io.Writer) *CallWriter {
	return &CallWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#read",
			"chrom",
			"pos",
			"strand",
			"mod",
			"code",
			"prob",
			"level",
		},
	}
}

// WriteHeader writes the header line.
func (cw *CallWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(cw.columns, "\t") + "\n")
	return err
}

// Write writes a single call.
func (cw *CallWriter) Write(c modification.Call) error {
	strand := "+"
	if c.Reverse {
		strand = "-"
	}

	values := []string{
		c.Read,
		c.Chrom,
		strconv.FormatUint(c.Pos, 10),
		strand,
		c.Type.String(),
		string(c.Type.Code()),
		strconv.Itoa(int(c.Probability)),
		c.Level(),
	}

	_, err := cw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes each call in order, stopping at the first error.
func (cw *CallWriter) WriteAll(calls []modification.Call) error {
	for _, c := range calls {
		if err := cw.Write(c); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CallWriter) Flush() error {
	return cw.w.Flush()
}
