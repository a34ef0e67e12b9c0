package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/devotional/pkg/types"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// FindArtifact looks up the artifact for key with an equality match on all
// six key columns. The global variant is matched through its marker value,
// never through IS NULL, so global and church rows cannot cross-match.
func (b *Backend) FindArtifact(ctx context.Context, key types.CacheKey) (*types.CachedArtifact, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+artifactColumns+`
		FROM cached_devotionals
		WHERE verse_reference = ? AND age_range = ? AND gender = ?
		  AND life_stage = ? AND language = ? AND church_id = ?`,
		key.VerseReference, key.AgeRange, key.Gender,
		key.LifeStage, key.Language, key.StorageChurchID())
	return scanArtifact(row)
}

// TouchArtifact bumps the access counters of a single row by id.
func (b *Backend) TouchArtifact(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return types.ErrInvalidID
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `UPDATE cached_devotionals
		SET access_count = access_count + 1, last_accessed = ?
		WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("touching artifact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touching artifact: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// UpsertArtifact inserts or fully replaces the row for key. An existing row
// keeps its id and created_at; content, model and accounting are overwritten
// and access_count starts over at 1.
func (b *Backend) UpsertArtifact(ctx context.Context, key types.CacheKey, content types.DevotionalContent, model string, at time.Time) (*types.CachedArtifact, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	application, err := json.Marshal(content.Application)
	if err != nil {
		return nil, fmt.Errorf("encoding application: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	stamp := formatTime(at)
	row := db.QueryRowContext(ctx, `
		INSERT INTO cached_devotionals (
			id, verse_reference, age_range, gender, life_stage, language, church_id,
			verse_text, reflection, application, prayer, image_url, audio_url, llm_model,
			access_count, last_accessed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(verse_reference, age_range, gender, life_stage, language, church_id) DO UPDATE SET
			verse_text = excluded.verse_text,
			reflection = excluded.reflection,
			application = excluded.application,
			prayer = excluded.prayer,
			image_url = excluded.image_url,
			audio_url = excluded.audio_url,
			llm_model = excluded.llm_model,
			access_count = 1,
			last_accessed = excluded.last_accessed
		RETURNING `+artifactColumns,
		newUUID(), key.VerseReference, key.AgeRange, key.Gender,
		key.LifeStage, key.Language, key.StorageChurchID(),
		content.VerseText, content.Reflection, string(application), content.Prayer,
		nullString(content.ImageURL), nullString(content.AudioURL), nullString(model),
		stamp, stamp)

	a, err := scanArtifact(row)
	if err != nil {
		return nil, fmt.Errorf("upserting artifact: %w", err)
	}
	return a, nil
}

// ListArtifactAccess scans every artifact's verse reference and access count.
func (b *Backend) ListArtifactAccess(ctx context.Context) ([]types.ArtifactAccess, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT verse_reference, access_count FROM cached_devotionals`)
	if err != nil {
		return nil, fmt.Errorf("scanning artifacts: %w", err)
	}
	defer rows.Close()

	var out []types.ArtifactAccess
	for rows.Next() {
		var a types.ArtifactAccess
		if err := rows.Scan(&a.VerseReference, &a.AccessCount); err != nil {
			return nil, fmt.Errorf("scanning artifact access: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListArtifacts returns every stored artifact ordered by creation time.
func (b *Backend) ListArtifacts(ctx context.Context) ([]*types.CachedArtifact, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+artifactColumns+`
		FROM cached_devotionals ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	var out []*types.CachedArtifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanArtifact(row rowScanner) (*types.CachedArtifact, error) {
	var (
		a                         types.CachedArtifact
		churchID, application     string
		imageURL, audioURL, model sql.NullString
		lastAccessed, createdAt   string
	)
	err := row.Scan(
		&a.ID, &a.Key.VerseReference, &a.Key.AgeRange, &a.Key.Gender,
		&a.Key.LifeStage, &a.Key.Language, &churchID,
		&a.Content.VerseText, &a.Content.Reflection, &application, &a.Content.Prayer,
		&imageURL, &audioURL, &model,
		&a.AccessCount, &lastAccessed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning artifact: %w", err)
	}

	a.Key.ChurchID = types.ChurchIDFromStorage(churchID)
	if err := json.Unmarshal([]byte(application), &a.Content.Application); err != nil {
		return nil, fmt.Errorf("parsing artifact application: %w", err)
	}
	a.Content.ImageURL = imageURL.String
	a.Content.AudioURL = audioURL.String
	a.LLMModel = model.String

	a.LastAccessed, err = parseTime(lastAccessed)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact last_accessed: %w", err)
	}
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing artifact created_at: %w", err)
	}
	return &a, nil
}
