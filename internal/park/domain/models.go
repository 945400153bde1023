package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ParkStatus string

const (
	ParkStatusActive      ParkStatus = "active"
	ParkStatusInactive    ParkStatus = "inactive"
	ParkStatusMaintenance ParkStatus = "maintenance"
)

func (s ParkStatus) Valid() bool {
	switch s {
	case ParkStatusActive, ParkStatusInactive, ParkStatusMaintenance:
		return true
	}
	return false
}

// Park is reference data. Applications point at it but never change it.
type Park struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Slug      string       `gorm:"type:text;not null;uniqueIndex:ux_parks_slug" json:"slug"`
	Status    ParkStatus   `gorm:"type:text;not null;default:'active'" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Park) TableName() string { return "parks" }

type ListParkRequest struct {
	Status ParkStatus
}

type Service interface {
	List(ctx context.Context, req ListParkRequest) ([]Park, error)
	Get(ctx context.Context, id snowflake.ID) (Park, error)
}

var (
	ErrParkNotFound  = errors.New("park_not_found")
	ErrInvalidPark   = errors.New("invalid_park_id")
	ErrInvalidStatus = errors.New("invalid_park_status")
)
