// Package pagination implements newest-first keyset paging over
// (created_at, id). Cursors are opaque to clients.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var ErrInvalidCursor = errors.New("invalid cursor")

type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last row of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

type wireCursor struct {
	At int64     `json:"at"`
	ID uuid.UUID `json:"id"`
}

func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer asks for one extra row so Trim can tell whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(wireCursor{At: c.CreatedAt.UnixNano(), ID: c.ID})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor returns nil for a blank value.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var w wireCursor
	if err := json.Unmarshal(raw, &w); err != nil || w.At == 0 || w.ID == uuid.Nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{CreatedAt: time.Unix(0, w.At).UTC(), ID: w.ID}, nil
}

// Keyset applies newest-first ordering and, after the first page, the
// strictly-older-than-cursor predicate.
func Keyset(query *gorm.DB, cursor *Cursor) *gorm.DB {
	if cursor != nil {
		query = query.Where(
			clause.Or(
				clause.Lt{Column: clause.Column{Name: "created_at"}, Value: cursor.CreatedAt},
				clause.And(
					clause.Eq{Column: clause.Column{Name: "created_at"}, Value: cursor.CreatedAt},
					clause.Lt{Column: clause.Column{Name: "id"}, Value: cursor.ID},
				),
			),
		)
	}
	return query.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "created_at"}, Desc: true},
		{Column: clause.Column{Name: "id"}, Desc: true},
	}})
}

// Trim drops the buffer row fetched by LimitWithBuffer. next is empty on the
// last page.
func Trim[T any](rows []T, limit int, key func(T) Cursor) (page []T, next string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	page = rows[:limit]
	return page, EncodeCursor(key(page[limit-1]))
}
