package pagination

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

func TestPositionTokenRoundTrip(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 30, 0, 123, time.UTC)
	token := PositionToken(snowflake.ID(42), created)

	pos, err := ParsePosition(token)
	require.NoError(t, err)
	require.NotNil(t, pos)
	assert.Equal(t, snowflake.ID(42), pos.ID)
	assert.True(t, pos.CreatedAt.Equal(created))
}

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition("  ")
	assert.NoError(t, err)
	assert.Nil(t, pos)

	_, err = ParsePosition("not-base64!")
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestTrim(t *testing.T) {
	rows := []*row{{ID: 3}, {ID: 2}, {ID: 1}}
	extract := func(r *row) string { return r.ID.String() }

	page, info := Trim(rows, 2, extract)
	assert.Len(t, page, 2)
	assert.True(t, info.HasMore)
	assert.Equal(t, "2", info.NextPageToken)

	page, info = Trim(rows, 5, extract)
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Size())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Size())
	assert.Equal(t, 10, Pagination{PageSize: 10}.Size())
}
