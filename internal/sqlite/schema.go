// Package sqlite implements the SQLite storage backend for the devotional cache.
package sqlite

// Schema DDL. Both tables store the global church variant as
// types.GlobalChurchMarker so the composite keys never contain NULL.
const (
	createCachedDevotionals = `CREATE TABLE IF NOT EXISTS cached_devotionals (
    id TEXT PRIMARY KEY,
    verse_reference TEXT NOT NULL,
    age_range TEXT NOT NULL,
    gender TEXT NOT NULL,
    life_stage TEXT NOT NULL,
    language TEXT NOT NULL,
    church_id TEXT NOT NULL,
    verse_text TEXT NOT NULL,
    reflection TEXT NOT NULL,
    application TEXT NOT NULL,
    prayer TEXT NOT NULL,
    image_url TEXT,
    audio_url TEXT,
    llm_model TEXT,
    access_count INTEGER NOT NULL DEFAULT 1,
    last_accessed TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createVerses = `CREATE TABLE IF NOT EXISTS verses (
    date TEXT NOT NULL,
    church_id TEXT NOT NULL,
    verse_reference TEXT NOT NULL,
    verse_text TEXT NOT NULL,
    bible_url TEXT,
    created_at TEXT NOT NULL,
    PRIMARY KEY (date, church_id)
);`
)

// Index DDL.
const (
	idxCachedDevotionalsKey = `CREATE UNIQUE INDEX IF NOT EXISTS idx_cached_devotionals_key
    ON cached_devotionals(verse_reference, age_range, gender, life_stage, language, church_id);`
	idxCachedDevotionalsVerse = `CREATE INDEX IF NOT EXISTS idx_cached_devotionals_verse ON cached_devotionals(verse_reference);`
	idxVersesChurch           = `CREATE INDEX IF NOT EXISTS idx_verses_church ON verses(church_id);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createCachedDevotionals,
	createVerses,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxCachedDevotionalsKey,
	idxCachedDevotionalsVerse,
	idxVersesChurch,
}

// artifactColumns is the column list shared by artifact SELECTs, in scan order.
const artifactColumns = `id, verse_reference, age_range, gender, life_stage, language, church_id,
    verse_text, reflection, application, prayer, image_url, audio_url, llm_model,
    access_count, last_accessed, created_at`
