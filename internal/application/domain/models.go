// Package domain contains the permit application record and its workflow rules.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationStatusPending     ApplicationStatus = "pending"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusDisapproved ApplicationStatus = "disapproved"
)

// Application is one special-use permit request. Fees are in dollars.
type Application struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	ApplicationNumber string       `gorm:"type:text;not null;uniqueIndex:ux_applications_number" json:"application_number"`

	FirstName    string  `gorm:"type:text;not null" json:"first_name"`
	LastName     string  `gorm:"type:text;not null" json:"last_name"`
	Email        string  `gorm:"type:text;not null" json:"email"`
	Phone        *string `gorm:"type:text" json:"phone"`
	Organization *string `gorm:"type:text" json:"organization"`
	Address      *string `gorm:"type:text" json:"address"`

	EventTitle       string                      `gorm:"type:text;not null" json:"event_title"`
	EventDates       datatypes.JSONSlice[string] `gorm:"not null" json:"event_dates"`
	EventDescription *string                     `gorm:"type:text" json:"event_description"`
	AttendeeCount    int                         `gorm:"not null;default:0" json:"attendee_count"`
	StartTime        *string                     `gorm:"type:text" json:"start_time"`
	EndTime          *string                     `gorm:"type:text" json:"end_time"`
	SetupTime        *string                     `gorm:"type:text" json:"setup_time"`
	SpecialRequests  *string                     `gorm:"type:text" json:"special_requests"`

	ParkID         snowflake.ID `gorm:"not null;index" json:"park_id"`
	LocationName   *string      `gorm:"type:text" json:"location_name"`
	CustomLocation *string      `gorm:"type:text" json:"custom_location"`

	ApplicationFee      float64 `gorm:"type:numeric(10,2);not null;default:0" json:"application_fee"`
	PermitFee           float64 `gorm:"type:numeric(10,2);not null;default:0" json:"permit_fee"`
	TotalFee            float64 `gorm:"type:numeric(10,2);not null;default:0" json:"total_fee"`
	LocationFeeRequired bool    `gorm:"not null;default:false" json:"location_fee_required"`
	LocationFee         float64 `gorm:"type:numeric(10,2);not null;default:0" json:"location_fee"`
	LocationFeePaid     bool    `gorm:"not null;default:false" json:"location_fee_paid"`

	IsPaid               bool              `gorm:"not null;default:false" json:"is_paid"`
	Status               ApplicationStatus `gorm:"type:text;not null;default:'pending';index" json:"status"`
	DisapprovalReason    *string           `gorm:"type:text" json:"disapproval_reason"`
	InsuranceCarrier     *string           `gorm:"type:text" json:"insurance_carrier"`
	InsuranceTier        *int              `json:"insurance_tier"`
	InsuranceActivity    *string           `gorm:"type:text" json:"insurance_activity"`
	InsuranceDocumentKey *string           `gorm:"type:text" json:"insurance_document_key"`

	ApprovedAt    *time.Time `json:"approved_at"`
	DisapprovedAt *time.Time `json:"disapproved_at"`
	CreatedAt     time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

func (a Application) ApplicantName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// HasPhone reports whether an SMS can be addressed to the applicant.
func (a Application) HasPhone() bool {
	return a.Phone != nil && strings.TrimSpace(*a.Phone) != ""
}

// Deletable holds for unpaid pending applications and for disapproved ones.
func (a Application) Deletable() bool {
	switch a.Status {
	case ApplicationStatusPending:
		return !a.IsPaid
	case ApplicationStatusDisapproved:
		return true
	default:
		return false
	}
}

// ComputeTotalFee sums the fee categories that apply to the application.
func ComputeTotalFee(applicationFee, permitFee float64, locationFeeRequired bool, locationFee float64) float64 {
	total := applicationFee + permitFee
	if locationFeeRequired {
		total += locationFee
	}
	return RoundDollars(total)
}

func RoundDollars(amount float64) float64 {
	return float64(ToCents(amount)) / 100
}
