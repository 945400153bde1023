package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/smallbiznis/permitdesk/internal/park/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo repository.Repository
}

func NewService(db *gorm.DB, log *zap.Logger) parkdomain.Service {
	return &Service{
		db:   db,
		log:  log.Named("park.service"),
		repo: repository.Provide(),
	}
}

func (s *Service) List(ctx context.Context, req parkdomain.ListParkRequest) ([]parkdomain.Park, error) {
	if req.Status != "" && !req.Status.Valid() {
		return nil, parkdomain.ErrInvalidStatus
	}

	items, err := s.repo.List(ctx, s.db, req.Status)
	if err != nil {
		return nil, err
	}
	parks := make([]parkdomain.Park, 0, len(items))
	for _, item := range items {
		parks = append(parks, *item)
	}
	return parks, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (parkdomain.Park, error) {
	if id <= 0 {
		return parkdomain.Park{}, parkdomain.ErrInvalidPark
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return parkdomain.Park{}, err
	}
	if item == nil {
		return parkdomain.Park{}, parkdomain.ErrParkNotFound
	}
	return *item, nil
}
