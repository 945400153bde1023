package seed

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestEnsureParksIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&parkdomain.Park{}))

	ctx := context.Background()
	require.NoError(t, EnsureParks(ctx, db, 1))
	require.NoError(t, EnsureParks(ctx, db, 1))

	var parks []parkdomain.Park
	require.NoError(t, db.Order("name asc").Find(&parks).Error)
	require.Len(t, parks, len(DefaultParks))
	assert.Equal(t, "cedar-hollow-state-park", parks[0].Slug)
	assert.Equal(t, parkdomain.ParkStatusActive, parks[0].Status)
}
