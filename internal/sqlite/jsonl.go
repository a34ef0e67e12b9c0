package sqlite

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// readJSONL decodes each non-empty scanned line into a T. Malformed lines are
// skipped; the number skipped is returned alongside the records.
func readJSONL[T any](scanner *bufio.Scanner) ([]T, int, error) {
	var (
		records []T
		skipped int
	)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scanning jsonl: %w", err)
	}
	return records, skipped, nil
}

// writeJSONL atomically writes one JSON document per line to path using the
// temp-file, fsync, rename pattern.
func writeJSONL[T any](path string, records []T) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ExportArtifacts writes every cached artifact to path as JSONL and returns
// the number of rows written.
func (b *Backend) ExportArtifacts(ctx context.Context, path string) (int, error) {
	artifacts, err := b.ListArtifacts(ctx)
	if err != nil {
		return 0, err
	}
	if err := writeJSONL(path, artifacts); err != nil {
		return 0, fmt.Errorf("export artifacts: %w", err)
	}
	return len(artifacts), nil
}

// ReadVerseFile parses a JSONL verse schedule file. Lines that are not valid
// JSON are skipped and counted.
func ReadVerseFile(path string) ([]types.VerseSchedule, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readJSONL[types.VerseSchedule](bufio.NewScanner(f))
}
