package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	DefaultPageSize = 25
	MaxPageSize     = 250
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string `form:"page_token" json:"page_token"`
	PageSize  int    `form:"page_size" json:"page_size" validate:"omitempty,gte=1,lte=250"`
}

// Size clamps the requested page size to [1, MaxPageSize], defaulting when unset.
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Position is a decoded keyset cursor: rows strictly after (CreatedAt, ID) in descending order.
type Position struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}
	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// ParsePosition decodes a page token; an empty token yields nil.
func ParsePosition(token string) (*Position, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	cursor, err := DecodeCursor(token)
	if err != nil {
		return nil, ErrInvalidPageToken
	}
	createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
	if err != nil {
		return nil, ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
	if err != nil || id == 0 {
		return nil, ErrInvalidPageToken
	}
	return &Position{ID: id, CreatedAt: createdAt}, nil
}

func PositionToken(id snowflake.ID, createdAt time.Time) string {
	token, err := EncodeCursor(Cursor{
		ID:        id.String(),
		CreatedAt: createdAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return ""
	}
	return token
}

// Trim cuts a limit+1 result set down to limit and reports the next page token.
func Trim[T any](data []*T, limit int, extractCursor func(*T) string) ([]*T, PageInfo) {
	if len(data) <= limit {
		return data, PageInfo{}
	}
	data = data[:limit]
	return data, PageInfo{
		HasMore:       true,
		NextPageToken: extractCursor(data[len(data)-1]),
	}
}
