package verse

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/devotional/internal/sqlite"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Import sources reported in ImportReport.Source.
const (
	SourceURL      = "url"
	SourceFile     = "file"
	SourceFallback = "fallback"
	SourceInline   = "inline"
)

// ImportReport summarizes one import.
type ImportReport struct {
	Source   string                `json:"source"`
	Imported int                   `json:"imported"`
	Sample   []types.VerseSchedule `json:"sample,omitempty"`
}

// Importer loads schedule rows into a VerseStore.
type Importer struct {
	store  types.VerseStore
	client *http.Client
	logger *slog.Logger
}

// NewImporter returns an Importer. A nil client uses http.DefaultClient.
func NewImporter(store types.VerseStore, client *http.Client, logger *slog.Logger) *Importer {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, client: client, logger: logger}
}

// ImportURL fetches a CSV schedule from url. When the fetch fails or yields no
// rows the built-in fallback schedule is imported instead.
func (i *Importer) ImportURL(ctx context.Context, url string) (ImportReport, error) {
	verses, err := i.fetchCSV(ctx, url)
	if err != nil {
		i.logger.WarnContext(ctx, "schedule fetch failed, using fallback", "url", url, "error", err)
		return i.ImportFallback(ctx)
	}
	if len(verses) == 0 {
		i.logger.WarnContext(ctx, "schedule source returned no rows, using fallback", "url", url)
		return i.ImportFallback(ctx)
	}
	i.logger.InfoContext(ctx, "fetched verse schedule", "url", url, "rows", len(verses))
	return i.write(ctx, SourceURL, verses)
}

// ImportFallback imports the built-in global schedule.
func (i *Importer) ImportFallback(ctx context.Context) (ImportReport, error) {
	verses, err := sqlite.FallbackVerses()
	if err != nil {
		return ImportReport{}, err
	}
	return i.write(ctx, SourceFallback, verses)
}

// ImportFile imports a .csv or .jsonl schedule file.
func (i *Importer) ImportFile(ctx context.Context, path string) (ImportReport, error) {
	var (
		verses []types.VerseSchedule
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return ImportReport{}, fmt.Errorf("open schedule: %w", err)
		}
		defer f.Close()
		verses, err = ParseCSV(f)
	case ".jsonl", ".ndjson":
		var skipped int
		verses, skipped, err = sqlite.ReadVerseFile(path)
		if skipped > 0 {
			i.logger.WarnContext(ctx, "skipped malformed schedule lines", "path", path, "skipped", skipped)
		}
	default:
		return ImportReport{}, fmt.Errorf("unsupported schedule file %q (want .csv or .jsonl)", path)
	}
	if err != nil {
		return ImportReport{}, err
	}
	return i.write(ctx, SourceFile, verses)
}

// ImportVerses imports rows supplied by the caller.
func (i *Importer) ImportVerses(ctx context.Context, verses []types.VerseSchedule) (ImportReport, error) {
	return i.write(ctx, SourceInline, verses)
}

func (i *Importer) write(ctx context.Context, source string, verses []types.VerseSchedule) (ImportReport, error) {
	n, err := i.store.UpsertVerses(ctx, verses)
	if err != nil {
		return ImportReport{}, fmt.Errorf("import %s schedule: %w", source, err)
	}
	i.logger.InfoContext(ctx, "imported verse schedule", "source", source, "rows", n)

	sample := verses
	if len(sample) > 3 {
		sample = sample[:3]
	}
	return ImportReport{Source: source, Imported: n, Sample: sample}, nil
}

func (i *Importer) fetchCSV(ctx context.Context, url string) ([]types.VerseSchedule, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build schedule request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; devotional-importer)")
	req.Header.Set("Accept", "text/csv")

	res, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schedule request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("schedule request status %d", res.StatusCode)
	}
	return ParseCSV(res.Body)
}

// csvColumns maps accepted header names to schedule fields.
var csvColumns = map[string]string{
	"date":             "date",
	"verse of the day": "verse_reference",
	"verse_reference":  "verse_reference",
	"reference text":   "verse_text",
	"verse_text":       "verse_text",
	"url":              "bible_url",
	"bible_url":        "bible_url",
	"church_id":        "church_id",
}

// dateLayouts are the date formats accepted in CSV schedules.
var dateLayouts = []string{
	types.DateLayout,
	"1/2/2006",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseCSV reads a schedule CSV with a header row. Rows missing a date or a
// verse reference are skipped. Dates are normalized to YYYY-MM-DD.
func ParseCSV(r io.Reader) ([]types.VerseSchedule, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int)
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := csvColumns[name]; ok {
			index[field] = i
		}
	}
	if _, ok := index["date"]; !ok {
		return nil, fmt.Errorf("%w: csv has no Date column", types.ErrInvalidSchedule)
	}
	if _, ok := index["verse_reference"]; !ok {
		return nil, fmt.Errorf("%w: csv has no verse column", types.ErrInvalidSchedule)
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var verses []types.VerseSchedule
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		date, ref := field(rec, "date"), field(rec, "verse_reference")
		if date == "" || ref == "" {
			continue
		}
		normalized, err := normalizeDate(date)
		if err != nil {
			return nil, err
		}
		verses = append(verses, types.VerseSchedule{
			Date:           normalized,
			ChurchID:       field(rec, "church_id"),
			VerseReference: ref,
			VerseText:      field(rec, "verse_text"),
			SourceURL:      field(rec, "bible_url"),
		})
	}
	return verses, nil
}

func normalizeDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(types.DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: unrecognized date %q", types.ErrInvalidSchedule, s)
}
