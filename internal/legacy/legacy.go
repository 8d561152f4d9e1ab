// Package legacy imports data kept by earlier deployments: the history.json
// link array, a keywords JSON array and the bot_data.db sqlite file.
package legacy

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cloo-solutions/litbot/internal/domain"
)

// Dataset is what a legacy source yields, ready to import.
type Dataset struct {
	History  []domain.HistoryRecord
	Keywords []string
}

// Merge appends other, keeping the first occurrence of each link and keyword.
func (d *Dataset) Merge(other *Dataset) {
	if other == nil {
		return
	}
	seenLinks := make(map[string]bool, len(d.History))
	for _, r := range d.History {
		seenLinks[r.Link] = true
	}
	for _, r := range other.History {
		if !seenLinks[r.Link] {
			seenLinks[r.Link] = true
			d.History = append(d.History, r)
		}
	}

	seenKw := make(map[string]bool, len(d.Keywords))
	for _, k := range d.Keywords {
		seenKw[strings.ToLower(k)] = true
	}
	for _, k := range other.Keywords {
		if !seenKw[strings.ToLower(k)] {
			seenKw[strings.ToLower(k)] = true
			d.Keywords = append(d.Keywords, k)
		}
	}
}

// ReadStringArray decodes a JSON array of strings, dropping blanks.
func ReadStringArray(r io.Reader) ([]string, error) {
	var raw []string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode string array: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// LoadHistoryJSON reads a link-only history file.
func LoadHistoryJSON(path string) (*Dataset, error) {
	links, err := readArrayFile(path)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{History: make([]domain.HistoryRecord, 0, len(links))}
	for _, l := range links {
		ds.History = append(ds.History, domain.HistoryRecord{Link: l})
	}
	return ds, nil
}

// LoadKeywordsJSON reads a keyword array file.
func LoadKeywordsJSON(path string) (*Dataset, error) {
	kws, err := readArrayFile(path)
	if err != nil {
		return nil, err
	}
	return &Dataset{Keywords: kws}, nil
}

func readArrayFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadStringArray(f)
}

var historyOptionalColumns = []string{"title", "summary", "category", "tags", "created_at"}

// LoadSQLite reads the keywords and history tables. Either table may be
// absent, and history columns beyond link are read only if present.
func LoadSQLite(ctx context.Context, path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	defer db.Close()

	ds := &Dataset{}

	hasKeywords, err := tableExists(ctx, db, "keywords")
	if err != nil {
		return nil, err
	}
	if hasKeywords {
		if ds.Keywords, err = loadKeywords(ctx, db); err != nil {
			return nil, err
		}
	}

	hasHistory, err := tableExists(ctx, db, "history")
	if err != nil {
		return nil, err
	}
	if hasHistory {
		if ds.History, err = loadHistory(ctx, db); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func tableExists(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to inspect sqlite schema: %w", err)
	}
	return n > 0, nil
}

func columns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

func loadKeywords(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT keyword FROM keywords ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var kw sql.NullString
		if err := rows.Scan(&kw); err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(kw.String); s != "" {
			out = append(out, s)
		}
	}
	return out, rows.Err()
}

func loadHistory(ctx context.Context, db *sql.DB) ([]domain.HistoryRecord, error) {
	cols, err := columns(ctx, db, "history")
	if err != nil {
		return nil, err
	}

	selects := []string{"link"}
	for _, c := range historyOptionalColumns {
		if cols[c] {
			selects = append(selects, c)
		} else {
			selects = append(selects, "NULL")
		}
	}

	rows, err := db.QueryContext(ctx, "SELECT "+strings.Join(selects, ", ")+" FROM history ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryRecord
	for rows.Next() {
		var link, title, summary, category, tags sql.NullString
		var created any
		if err := rows.Scan(&link, &title, &summary, &category, &tags, &created); err != nil {
			return nil, err
		}
		if strings.TrimSpace(link.String) == "" {
			continue
		}
		out = append(out, domain.HistoryRecord{
			Link:      strings.TrimSpace(link.String),
			Title:     title.String,
			Summary:   summary.String,
			Category:  category.String,
			Tags:      tags.String,
			CreatedAt: parseTimestamp(created),
		})
	}
	return out, rows.Err()
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// parseTimestamp accepts sqlite's CURRENT_TIMESTAMP text and ISO forms,
// all read as UTC. Unknown values yield the zero time.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case []byte:
		return parseTimestamp(string(t))
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timestampLayouts {
			if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return ts.UTC()
			}
		}
	}
	return time.Time{}
}
