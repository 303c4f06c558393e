package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// RecordSource stores the fingerprint of an indexed input together with
// the number of calls written for it, replacing any earlier record.
func (s *Store) RecordSource(fp FileFingerprint, calls int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UnixNano(), int64(calls))
	if err != nil {
		return fmt.Errorf("record source %s: %w", fp.Path, err)
	}
	return nil
}

// SourceUnchanged reports whether fp matches the recorded fingerprint for
// its path. An unknown path is reported as changed.
func (s *Store) SourceUnchanged(fp FileFingerprint) (bool, error) {
	var size, modTime int64
	err := s.db.QueryRow(`SELECT size, mod_time_ns FROM sources WHERE path = ?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source %s: %w", fp.Path, err)
	}
	return size == fp.Size && modTime == fp.ModTime.UnixNano(), nil
}
