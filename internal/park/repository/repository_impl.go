package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*parkdomain.Park, error)
	List(ctx context.Context, db *gorm.DB, status parkdomain.ParkStatus) ([]*parkdomain.Park, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

// FindByID returns nil, nil when the park does not exist.
func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*parkdomain.Park, error) {
	var park parkdomain.Park
	err := db.WithContext(ctx).Where("id = ?", id).Take(&park).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &park, nil
}

// List orders parks by name. An empty status returns every park.
func (r *repo) List(ctx context.Context, db *gorm.DB, status parkdomain.ParkStatus) ([]*parkdomain.Park, error) {
	stmt := db.WithContext(ctx).Model(&parkdomain.Park{})
	if status != "" {
		stmt = stmt.Where("status = ?", status)
	}

	var parks []*parkdomain.Park
	if err := stmt.Order("name asc, id asc").Find(&parks).Error; err != nil {
		return nil, err
	}
	return parks, nil
}
