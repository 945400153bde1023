// Package testutil opens throwaway databases and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	"github.com/smallbiznis/permitdesk/internal/migration"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory sqlite database. A single connection keeps
// every query on the same memory database.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.AutoMigrate(db))
	return db
}

func Node(t testing.TB) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func InsertPark(t testing.TB, db *gorm.DB, node *snowflake.Node, name string, status parkdomain.ParkStatus) parkdomain.Park {
	t.Helper()
	park := parkdomain.Park{
		ID:        node.Generate(),
		Name:      name,
		Slug:      node.Generate().Base36(),
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&park).Error)
	return park
}

// InsertApplication stores a pending application with a $35 permit fee; mutate adjusts it first.
func InsertApplication(t testing.TB, db *gorm.DB, node *snowflake.Node, parkID snowflake.ID, mutate func(*applicationdomain.Application)) applicationdomain.Application {
	t.Helper()
	now := time.Now().UTC()
	id := node.Generate()
	phone := "+15555550100"
	app := applicationdomain.Application{
		ID:                id,
		ApplicationNumber: "SUP-TEST-" + id.Base36(),
		FirstName:         "Jane",
		LastName:          "Doe",
		Email:             "jane@example.org",
		Phone:             &phone,
		EventTitle:        "Smith Wedding",
		EventDates:        []string{"2026-06-01"},
		AttendeeCount:     80,
		ParkID:            parkID,
		ApplicationFee:    25,
		PermitFee:         35,
		TotalFee:          60,
		Status:            applicationdomain.ApplicationStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if mutate != nil {
		mutate(&app)
	}
	require.NoError(t, db.Create(&app).Error)
	return app
}
