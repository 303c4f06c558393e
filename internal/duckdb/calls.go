package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"math"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-tgv/internal/modification"
)

// callKey is the composite key for deduplicating calls before writing.
type callKey struct {
	read, chrom string
	mate        uint8
	pos         uint64
	typ         modification.Type
}

// WriteCalls batch-inserts calls into DuckDB using the Appender API.
// Duplicate (read, mate, chrom, pos, type) entries keep the first occurrence.
func (s *Store) WriteCalls(calls []modification.Call) error {
	if len(calls) == 0 {
		return nil
	}

	seen := make(map[callKey]bool, len(calls))
	deduped := make([]modification.Call, 0, len(calls))
	for _, c := range calls {
		k := callKey{c.Read, c.Chrom, c.Mate, c.Pos, c.Type}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, c)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "modification_calls")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, c := range deduped {
		if err := appender.AppendRow(
			c.Read, c.Chrom, int64(c.Pos), c.Mate, c.Reverse, c.Type.String(), int32(c.Probability),
		); err != nil {
			return fmt.Errorf("append call: %w", err)
		}
	}

	return appender.Flush()
}

// ClearCalls removes all indexed calls and source fingerprints.
func (s *Store) ClearCalls() error {
	if _, err := s.db.Exec("DELETE FROM modification_calls"); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM sources")
	return err
}

// CallsInRegion returns the calls on chrom within [start, end], ordered by
// position, read name, mate and type. An end past the BIGINT range, such
// as a whole-contig region, covers the rest of the contig.
func (s *Store) CallsInRegion(chrom string, start, end uint64) ([]modification.Call, error) {
	rows, err := s.db.Query(`SELECT read_name, chrom, pos, mate, reverse, mod_type, probability
		FROM modification_calls
		WHERE chrom = ? AND pos BETWEEN ? AND ?
		ORDER BY pos, read_name, mate, mod_type`,
		chrom, clampInt64(start), clampInt64(end))
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var calls []modification.Call
	for rows.Next() {
		var (
			c        modification.Call
			pos      int64
			typeName string
			prob     int32
		)
		if err := rows.Scan(&c.Read, &c.Chrom, &pos, &c.Mate, &c.Reverse, &typeName, &prob); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		typ, ok := modification.ParseType(typeName)
		if !ok {
			return nil, fmt.Errorf("scan call: unknown modification type %q", typeName)
		}
		c.Pos, c.Type, c.Probability = uint64(pos), typ, uint8(prob)
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}
	return calls, nil
}

func clampInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// TypeSummary aggregates the calls of one modification type.
type TypeSummary struct {
	Type  modification.Type
	Calls int64
	High  int64
	Low   int64
}

// Summary counts calls per modification type, with the number at or above
// the high threshold and below the low threshold.
func (s *Store) Summary() ([]TypeSummary, error) {
	rows, err := s.db.Query(`SELECT mod_type,
		COUNT(*),
		COUNT(*) FILTER (WHERE probability >= ?),
		COUNT(*) FILTER (WHERE probability < ?)
		FROM modification_calls
		GROUP BY mod_type
		ORDER BY mod_type`,
		modification.HighThreshold, modification.LowThreshold)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var out []TypeSummary
	for rows.Next() {
		var (
			ts       TypeSummary
			typeName string
		)
		if err := rows.Scan(&typeName, &ts.Calls, &ts.High, &ts.Low); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		typ, ok := modification.ParseType(typeName)
		if !ok {
			return nil, fmt.Errorf("scan summary: unknown modification type %q", typeName)
		}
		ts.Type = typ
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return out, nil
}
