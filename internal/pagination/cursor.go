// Package pagination implements keyset cursors over the history table.
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Cursor is the position after the last row of a page: rows older than
// CreatedAt, or equally old with a smaller Link, come next.
type Cursor struct {
	Link      string
	CreatedAt time.Time
}

// PageResult represents a paginated result set
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

var ErrInvalidCursor = errors.New("invalid cursor format")

// Encode returns an opaque, URL-safe token. The timestamp is stored in
// microseconds, the precision Postgres keeps, and comes first because links
// may contain the separator.
func (c Cursor) Encode() string {
	if c.Link == "" {
		return ""
	}
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + "|" + c.Link
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token from Encode. An empty token means the first page.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	micros, link, ok := strings.Cut(string(decoded), "|")
	if !ok || link == "" {
		return nil, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(micros, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{Link: link, CreatedAt: time.UnixMicro(n).UTC()}, nil
}

// CreateNextCursor returns the token for the page after items, or "" when
// items is a short page.
func CreateNextCursor[T any](items []T, limit int, getLink func(T) string, getCreatedAt func(T) time.Time) string {
	if len(items) == 0 || len(items) < limit {
		return ""
	}
	last := items[len(items)-1]
	return Cursor{Link: getLink(last), CreatedAt: getCreatedAt(last)}.Encode()
}
