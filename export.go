// ABOUTME: CSV export of report rows.
// ABOUTME: Each run writes a new timestamped file and never replaces an existing one.

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const fileTimestamp = "20060102_150405"

type csvRecord interface {
	record() []string
}

// exportCSV writes a header of fields followed by one line per row to
// dir/<report>_<YYYYMMDD_HHMMSS>.csv and returns the path written.
func exportCSV[T csvRecord](dir, report string, fields []string, rows []T, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	f, path, err := createUnique(dir, report+"_"+now.Format(fileTimestamp))
	if err != nil {
		return "", fmt.Errorf("creating %s export: %w", report, err)
	}

	if err := writeRecords(f, fields, rows); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	return path, nil
}

func writeRecords[T csvRecord](f *os.File, fields []string, rows []T) error {
	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return err
	}
	for i, r := range rows {
		rec := r.record()
		if len(rec) != len(fields) {
			return fmt.Errorf("row %d has %d fields, want %d", i+1, len(rec), len(fields))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// createUnique opens base.csv for writing, or base_2.csv, base_3.csv and so
// on when an earlier run in the same second already took the name.
func createUnique(dir, base string) (*os.File, string, error) {
	for n := 1; ; n++ {
		name := base + ".csv"
		if n > 1 {
			name = fmt.Sprintf("%s_%d.csv", base, n)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return f, path, nil
	}
}
