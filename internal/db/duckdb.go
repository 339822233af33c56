package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/jcdickinson/lovvelger/internal/law"
)

type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS laws (
			base TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			short_name TEXT NOT NULL,
			full_name TEXT NOT NULL,
			loaded BOOLEAN NOT NULL DEFAULT false,
			snapshot_hash TEXT,
			fetched_at TIMESTAMP,
			processed_at TIMESTAMP,
			last_used_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS paragraphs (
			base TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			chapter_index TEXT NOT NULL,
			chapter_number TEXT NOT NULL,
			number TEXT NOT NULL,
			title TEXT NOT NULL,
			juridical_reference TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_paragraphs_base ON paragraphs (base)`,
		`CREATE INDEX IF NOT EXISTS idx_paragraphs_index ON paragraphs (base, chapter_index)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// --- Law operations ---

type Law struct {
	Base         string
	ID           string
	ShortName    string
	FullName     string
	Loaded       bool
	SnapshotHash string
	FetchedAt    *time.Time
	ProcessedAt  *time.Time
	LastUsedAt   time.Time
}

const lawColumns = `base, id, short_name, full_name, loaded, COALESCE(snapshot_hash, ''), fetched_at, processed_at, last_used_at`

func scanLaw(row interface{ Scan(...any) error }) (*Law, error) {
	var l Law
	if err := row.Scan(&l.Base, &l.ID, &l.ShortName, &l.FullName, &l.Loaded, &l.SnapshotHash, &l.FetchedAt, &l.ProcessedAt, &l.LastUsedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpsertLaw records a fetched law. An empty snapshotHash keeps the
// previously stored one.
func (db *DB) UpsertLaw(l law.Law, snapshotHash string) error {
	var hash any
	if snapshotHash != "" {
		hash = snapshotHash
	}
	_, err := db.conn.Exec(
		`INSERT INTO laws (base, id, short_name, full_name, loaded, snapshot_hash, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (base) DO UPDATE SET
			id = EXCLUDED.id,
			short_name = EXCLUDED.short_name,
			full_name = EXCLUDED.full_name,
			loaded = EXCLUDED.loaded,
			snapshot_hash = COALESCE(EXCLUDED.snapshot_hash, snapshot_hash),
			fetched_at = CURRENT_TIMESTAMP,
			last_used_at = CURRENT_TIMESTAMP`,
		l.Base, l.ID, l.ShortName, l.FullName, l.Loaded, hash,
	)
	if err != nil {
		return fmt.Errorf("upserting law %s: %w", l.Base, err)
	}
	return nil
}

func (db *DB) MarkLawProcessed(base string) error {
	_, err := db.conn.Exec(`UPDATE laws SET processed_at = CURRENT_TIMESTAMP WHERE base = ?`, base)
	return err
}

func (db *DB) TouchLaw(base string) error {
	_, err := db.conn.Exec(`UPDATE laws SET last_used_at = CURRENT_TIMESTAMP WHERE base = ?`, base)
	return err
}

// GetLaw returns the stored law, or nil if base is unknown.
func (db *DB) GetLaw(base string) (*Law, error) {
	l, err := scanLaw(db.conn.QueryRow(`SELECT `+lawColumns+` FROM laws WHERE base = ?`, base))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (db *DB) ListLaws() ([]Law, error) {
	rows, err := db.conn.Query(`SELECT ` + lawColumns + ` FROM laws ORDER BY short_name, base`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var laws []Law
	for rows.Next() {
		l, err := scanLaw(rows)
		if err != nil {
			return nil, err
		}
		laws = append(laws, *l)
	}
	return laws, rows.Err()
}

// DeleteLaw removes a law and its paragraph index.
func (db *DB) DeleteLaw(base string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM paragraphs WHERE base = ?`, base); err != nil {
		return fmt.Errorf("deleting paragraphs: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM laws WHERE base = ?`, base); err != nil {
		return fmt.Errorf("deleting law: %w", err)
	}
	return tx.Commit()
}

// --- Paragraph operations ---

type Paragraph struct {
	Base               string
	Position           int
	ChapterIndex       string
	ChapterNumber      string
	Number             string
	Title              string
	JuridicalReference string
}

// Reference returns the selection key of the paragraph.
func (p Paragraph) Reference() string {
	return law.BuildReference(p.Base, p.ChapterIndex)
}

// Paragraphs flattens l into index rows in document order.
func Paragraphs(l law.Law) []Paragraph {
	var out []Paragraph
	l.Walk(func(c law.Chapter, p law.Paragraph) {
		out = append(out, Paragraph{
			Base:               l.Base,
			Position:           len(out),
			ChapterIndex:       p.ChapterIndex,
			ChapterNumber:      c.Number,
			Number:             p.Number,
			Title:              p.Title,
			JuridicalReference: p.JuridicalReference,
		})
	})
	return out
}

// ReplaceParagraphs swaps the whole paragraph index of base for ps.
func (db *DB) ReplaceParagraphs(base string, ps []Paragraph) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM paragraphs WHERE base = ?`, base); err != nil {
		return fmt.Errorf("deleting paragraphs: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO paragraphs (base, ordinal, chapter_index, chapter_number, number, title, juridical_reference)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range ps {
		if _, err := stmt.Exec(base, i, p.ChapterIndex, p.ChapterNumber, p.Number, p.Title, p.JuridicalReference); err != nil {
			return fmt.Errorf("inserting paragraph %s: %w", p.ChapterIndex, err)
		}
	}
	return tx.Commit()
}

func (db *DB) CountParagraphs(base string) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM paragraphs WHERE base = ?`, base).Scan(&count)
	return count, err
}

const paragraphColumns = `base, ordinal, chapter_index, chapter_number, number, title, juridical_reference`

func scanParagraph(row interface{ Scan(...any) error }) (*Paragraph, error) {
	var p Paragraph
	if err := row.Scan(&p.Base, &p.Position, &p.ChapterIndex, &p.ChapterNumber, &p.Number, &p.Title, &p.JuridicalReference); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindParagraph looks up a paragraph by its chapter index. It returns nil
// if there is none.
func (db *DB) FindParagraph(base, chapterIndex string) (*Paragraph, error) {
	p, err := scanParagraph(db.conn.QueryRow(
		`SELECT `+paragraphColumns+` FROM paragraphs WHERE base = ? AND chapter_index = ?
		 ORDER BY ordinal LIMIT 1`,
		base, chapterIndex,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SearchParagraphs matches query case-insensitively against paragraph
// numbers and titles, optionally restricted to bases, in document order.
// The query is a plain substring; LIKE wildcards have no meaning.
func (db *DB) SearchParagraphs(query string, bases []string, limit int) ([]Paragraph, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + paragraphColumns + ` FROM paragraphs
		  WHERE (contains(lower(number), lower(?)) OR contains(lower(title), lower(?)))`
	args := []any{query, query}
	if len(bases) > 0 {
		placeholders := make([]string, len(bases))
		for i, b := range bases {
			placeholders[i] = "?"
			args = append(args, b)
		}
		q += fmt.Sprintf(` AND base IN (%s)`, strings.Join(placeholders, ","))
	}
	q += ` ORDER BY base, ordinal LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching paragraphs: %w", err)
	}
	defer rows.Close()

	var out []Paragraph
	for rows.Next() {
		p, err := scanParagraph(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
