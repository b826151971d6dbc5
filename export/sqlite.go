package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/use-agent/gleaner/models"
)

const sqliteSchema = `
CREATE TABLE records (
	id               INTEGER PRIMARY KEY,
	url              TEXT NOT NULL,
	domain           TEXT NOT NULL,
	status_code      INTEGER NOT NULL,
	content_type     TEXT NOT NULL,
	title            TEXT NOT NULL,
	meta_description TEXT NOT NULL,
	meta_keywords    TEXT NOT NULL,
	language         TEXT NOT NULL,
	encoding         TEXT NOT NULL,
	content          TEXT NOT NULL,
	clean_text       TEXT NOT NULL,
	word_count       INTEGER NOT NULL,
	links_found      INTEGER NOT NULL,
	images_found     INTEGER NOT NULL,
	links_list       TEXT NOT NULL,
	images_list      TEXT NOT NULL,
	structured_data  TEXT NOT NULL,
	response_size    INTEGER NOT NULL,
	load_time        REAL NOT NULL,
	timestamp        TEXT NOT NULL,
	headers          TEXT NOT NULL
);
CREATE INDEX idx_records_domain ON records(domain);
CREATE INDEX idx_records_status ON records(status_code);
`

const sqliteInsert = `INSERT INTO records (
	id, url, domain, status_code, content_type, title, meta_description, meta_keywords,
	language, encoding, content, clean_text, word_count, links_found, images_found,
	links_list, images_list, structured_data, response_size, load_time, timestamp, headers
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLite writes "<base>.db", a fresh database with one row per record.
// Lists and maps are stored as JSON text.
func (r *Registry) SQLite(records []models.ScrapedRecord, basePath string) (string, error) {
	path := basePath + ".db"
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	f, err := createFile(path)
	if err != nil {
		return "", err
	}
	f.Close()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return "", fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return "", fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i := range records {
		rec := &records[i]
		_, err := stmt.ExecContext(ctx,
			i+1, rec.URL, rec.Domain, rec.StatusCode, rec.ContentType, rec.Title,
			rec.MetaDescription, rec.MetaKeywords, rec.Language, rec.Encoding,
			rec.RawContent, rec.CleanText, rec.WordCount, rec.LinksFound, rec.ImagesFound,
			jsonText(rec.LinksList), jsonText(rec.ImagesList), jsonText(rec.StructuredData),
			rec.ResponseSize, rec.LoadTimeSeconds, rec.Timestamp, jsonText(rec.Headers),
		)
		if err != nil {
			return "", fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	committed = true
	return path, nil
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
