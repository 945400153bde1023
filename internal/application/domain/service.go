package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"gorm.io/gorm"
)

// CreateRequest is the public intake form. Optional fields are nil when omitted.
type CreateRequest struct {
	FirstName    string  `json:"first_name" validate:"required,max=100"`
	LastName     string  `json:"last_name" validate:"required,max=100"`
	Email        string  `json:"email" validate:"required,email,max=254"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	Organization *string `json:"organization" validate:"omitempty,max=200"`
	Address      *string `json:"address" validate:"omitempty,max=500"`

	EventTitle       string   `json:"event_title" validate:"required,max=200"`
	EventDates       []string `json:"event_dates" validate:"required,min=1,max=31,dive,datetime=2006-01-02"`
	EventDescription *string  `json:"event_description" validate:"omitempty,max=4000"`
	AttendeeCount    int      `json:"attendee_count" validate:"gte=1,lte=100000"`
	StartTime        *string  `json:"start_time" validate:"omitempty,datetime=15:04"`
	EndTime          *string  `json:"end_time" validate:"omitempty,datetime=15:04"`
	SetupTime        *string  `json:"setup_time" validate:"omitempty,datetime=15:04"`
	SpecialRequests  *string  `json:"special_requests" validate:"omitempty,max=4000"`

	ParkID         string  `json:"park_id" validate:"required"`
	LocationName   *string `json:"location_name" validate:"omitempty,max=200"`
	CustomLocation *string `json:"custom_location" validate:"omitempty,max=500"`

	ApplicationFee      float64  `json:"application_fee" validate:"gte=0"`
	PermitFee           *float64 `json:"permit_fee" validate:"omitempty,gte=0"`
	LocationFeeRequired bool     `json:"location_fee_required"`
	LocationFee         float64  `json:"location_fee" validate:"gte=0"`

	InsuranceCarrier  *string `json:"insurance_carrier" validate:"omitempty,max=200"`
	InsuranceActivity *string `json:"insurance_activity" validate:"omitempty,max=200"`
}

type ListRequest struct {
	pagination.Pagination
	Status ApplicationStatus `form:"status"`
	ParkID string            `form:"park_id"`
}

type ListResponse struct {
	pagination.PageInfo
	Applications []Application `json:"applications"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Application, error)
	Get(ctx context.Context, id snowflake.ID) (Application, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	MarkApplicationFeePaid(ctx context.Context, id snowflake.ID) (Application, error)
	MarkLocationFeePaid(ctx context.Context, id snowflake.ID) (Application, error)
	PaymentStatus(ctx context.Context, id snowflake.ID) (PaymentStatus, error)
	AttachInsuranceDocument(ctx context.Context, id snowflake.ID, key string) (Application, error)
}

// Repository is shared by the application service and the lifecycle controller,
// so every method takes the handle to run on (the root DB or an open transaction).
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, app *Application) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Application, error)
	// TransitionFromPending flips a pending application; false means it was no longer pending.
	TransitionFromPending(ctx context.Context, db *gorm.DB, id snowflake.ID, to ApplicationStatus, fields map[string]any) (bool, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}

type ListFilter struct {
	Status ApplicationStatus
	ParkID snowflake.ID
	Cursor *pagination.Position
	Limit  int
}

// StampedFields adds updated_at to an update set.
func StampedFields(now time.Time, fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["updated_at"] = now
	return out
}

var (
	ErrApplicationNotFound  = errors.New("application_not_found")
	ErrInvalidApplicationID = errors.New("invalid_application_id")
	ErrInvalidApplication   = errors.New("invalid_application")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrParkUnavailable      = errors.New("park_unavailable")
	ErrUnknownActivity      = errors.New("unknown_insurance_activity")
	ErrInvalidDocumentKey   = errors.New("invalid_document_key")

	ErrInvalidTransition = errors.New("invalid_transition")
	ErrInvalidOperation  = errors.New("invalid_operation")
)
