package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// FindVerse returns the schedule row for (date, churchID). It does not fall
// back to the global schedule; that policy belongs to the resolver.
func (b *Backend) FindVerse(ctx context.Context, date string, churchID string) (*types.VerseSchedule, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	var (
		v         types.VerseSchedule
		storedID  string
		sourceURL sql.NullString
	)
	err = db.QueryRowContext(ctx, `SELECT date, church_id, verse_reference, verse_text, bible_url
		FROM verses WHERE date = ? AND church_id = ?`,
		date, types.StorageChurchID(churchID)).
		Scan(&v.Date, &storedID, &v.VerseReference, &v.VerseText, &sourceURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding verse: %w", err)
	}
	v.ChurchID = types.ChurchIDFromStorage(storedID)
	v.SourceURL = sourceURL.String
	return &v, nil
}

// UpsertVerses validates every row, then writes them in one transaction,
// replacing rows with the same (date, church id). Returns the number written.
func (b *Backend) UpsertVerses(ctx context.Context, verses []types.VerseSchedule) (int, error) {
	for _, v := range verses {
		if err := v.Validate(); err != nil {
			return 0, err
		}
	}
	if len(verses) == 0 {
		return 0, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin verse import: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO verses (date, church_id, verse_reference, verse_text, bible_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, church_id) DO UPDATE SET
			verse_reference = excluded.verse_reference,
			verse_text = excluded.verse_text,
			bible_url = excluded.bible_url`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare verse upsert: %w", err)
	}
	defer stmt.Close()

	created := formatTime(b.now())
	for _, v := range verses {
		if _, err := stmt.ExecContext(ctx,
			v.Date, types.StorageChurchID(v.ChurchID), v.VerseReference, v.VerseText,
			nullString(v.SourceURL), created); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("upserting verse %s: %w", v.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit verse import: %w", err)
	}
	return len(verses), nil
}

// SummarizeVerses reports the schedule size and its first and last dates.
func (b *Backend) SummarizeVerses(ctx context.Context) (types.ScheduleSummary, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return types.ScheduleSummary{}, err
	}

	var (
		s           types.ScheduleSummary
		first, last sql.NullString
	)
	err = db.QueryRowContext(ctx, `SELECT COUNT(*), MIN(date), MAX(date) FROM verses`).
		Scan(&s.Count, &first, &last)
	if err != nil {
		return types.ScheduleSummary{}, fmt.Errorf("summarizing verses: %w", err)
	}
	s.FirstDate = first.String
	s.LastDate = last.String
	return s, nil
}
