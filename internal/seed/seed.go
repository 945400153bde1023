package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultParks are created on first start so intake has somewhere to point.
var DefaultParks = []string{
	"Riverbend State Park",
	"Cedar Hollow State Park",
	"Lakeshore Recreation Area",
	"Pine Ridge State Forest",
}

// EnsureParks inserts any default park missing by slug. Existing rows are left untouched.
func EnsureParks(ctx context.Context, db *gorm.DB, nodeID int64) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range DefaultParks {
			park := parkdomain.Park{
				ID:        node.Generate(),
				Name:      name,
				Slug:      slug.Make(name),
				Status:    parkdomain.ParkStatusActive,
				CreatedAt: now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoNothing: true,
			}).Create(&park).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
