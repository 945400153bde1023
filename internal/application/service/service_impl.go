package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"github.com/smallbiznis/permitdesk/internal/clock"
	"github.com/smallbiznis/permitdesk/internal/config"
	feedomain "github.com/smallbiznis/permitdesk/internal/feecatalog/domain"
	insurancedomain "github.com/smallbiznis/permitdesk/internal/insurance/domain"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/permitdesk/internal/observability/metrics"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/smallbiznis/permitdesk/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        applicationdomain.Repository
	InvoiceRepo invoicedomain.Repository
	ParkSvc     parkdomain.Service
	FeeSvc      feedomain.Service
	InsSvc      insurancedomain.Service
	AuditSvc    auditdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock

	repo        applicationdomain.Repository
	invoiceRepo invoicedomain.Repository
	parkSvc     parkdomain.Service
	feeSvc      feedomain.Service
	insSvc      insurancedomain.Service
	auditSvc    auditdomain.Service
	metrics     *obsmetrics.Metrics
	validate    *validator.Validate
}

func NewService(p ServiceParam) applicationdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("application.service"),
		genID: p.GenID,
		clock: p.Clock,

		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		parkSvc:     p.ParkSvc,
		feeSvc:      p.FeeSvc,
		insSvc:      p.InsSvc,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Service) Create(ctx context.Context, req applicationdomain.CreateRequest) (applicationdomain.Application, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return applicationdomain.Application{}, invalid(describeValidation(err))
	}

	parkID, err := snowflake.ParseString(strings.TrimSpace(req.ParkID))
	if err != nil || parkID <= 0 {
		return applicationdomain.Application{}, invalid("park_id is malformed")
	}
	park, err := s.parkSvc.Get(ctx, parkID)
	if err != nil {
		if errors.Is(err, parkdomain.ErrParkNotFound) {
			return applicationdomain.Application{}, applicationdomain.ErrParkUnavailable
		}
		return applicationdomain.Application{}, err
	}
	if park.Status != parkdomain.ParkStatusActive {
		return applicationdomain.Application{}, applicationdomain.ErrParkUnavailable
	}

	if err := s.checkFee(feedomain.CategoryApplicationFee, req.ApplicationFee); err != nil {
		return applicationdomain.Application{}, err
	}
	permitFee := config.DefaultPermitFee
	if req.PermitFee != nil {
		permitFee = *req.PermitFee
	}
	if err := s.checkFee(feedomain.CategoryPermitFee, permitFee); err != nil {
		return applicationdomain.Application{}, err
	}
	locationFee := 0.0
	if req.LocationFeeRequired {
		if req.LocationFee <= 0 {
			return applicationdomain.Application{}, invalid("location_fee must be positive when required")
		}
		locationFee = applicationdomain.RoundDollars(req.LocationFee)
	}

	startTime, startAt, err := normalizeClock("start_time", req.StartTime)
	if err != nil {
		return applicationdomain.Application{}, err
	}
	endTime, endAt, err := normalizeClock("end_time", req.EndTime)
	if err != nil {
		return applicationdomain.Application{}, err
	}
	setupTime, _, err := normalizeClock("setup_time", req.SetupTime)
	if err != nil {
		return applicationdomain.Application{}, err
	}
	if startTime != nil && endTime != nil && !endAt.After(startAt) {
		return applicationdomain.Application{}, invalid("end_time must be after start_time")
	}

	var (
		insuranceTier     *int
		insuranceActivity *string
	)
	if activity := trimmed(req.InsuranceActivity); activity != nil {
		info, err := s.insSvc.TierFor(*activity)
		if err != nil {
			if errors.Is(err, insurancedomain.ErrActivityNotFound) {
				return applicationdomain.Application{}, applicationdomain.ErrUnknownActivity
			}
			return applicationdomain.Application{}, err
		}
		tier := info.Tier
		insuranceTier = &tier
		insuranceActivity = &info.Activity
	}

	now := s.clock.Now()
	id := s.genID.Generate()
	app := applicationdomain.Application{
		ID:                  id,
		ApplicationNumber:   fmt.Sprintf("SUP-%d-%s", now.Year(), strings.ToUpper(id.Base36())),
		FirstName:           strings.TrimSpace(req.FirstName),
		LastName:            strings.TrimSpace(req.LastName),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:               trimmed(req.Phone),
		Organization:        trimmed(req.Organization),
		Address:             trimmed(req.Address),
		EventTitle:          strings.TrimSpace(req.EventTitle),
		EventDates:          normalizeDates(req.EventDates),
		EventDescription:    trimmed(req.EventDescription),
		AttendeeCount:       req.AttendeeCount,
		StartTime:           startTime,
		EndTime:             endTime,
		SetupTime:           setupTime,
		SpecialRequests:     trimmed(req.SpecialRequests),
		ParkID:              park.ID,
		LocationName:        trimmed(req.LocationName),
		CustomLocation:      trimmed(req.CustomLocation),
		ApplicationFee:      applicationdomain.RoundDollars(req.ApplicationFee),
		PermitFee:           applicationdomain.RoundDollars(permitFee),
		LocationFeeRequired: req.LocationFeeRequired,
		LocationFee:         locationFee,
		TotalFee:            applicationdomain.ComputeTotalFee(req.ApplicationFee, permitFee, req.LocationFeeRequired, locationFee),
		Status:              applicationdomain.ApplicationStatusPending,
		InsuranceCarrier:    trimmed(req.InsuranceCarrier),
		InsuranceTier:       insuranceTier,
		InsuranceActivity:   insuranceActivity,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Insert(ctx, s.db, &app); err != nil {
		return applicationdomain.Application{}, err
	}

	s.metrics.RecordApplicationSubmitted(ctx)
	s.emitAudit(ctx, "application.created", app.ID, map[string]any{
		"email":              app.Email,
		"phone":              app.Phone,
		"application_number": app.ApplicationNumber,
		"park_id":            app.ParkID.String(),
		"total_fee":          app.TotalFee,
	})
	return app, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (applicationdomain.Application, error) {
	if id <= 0 {
		return applicationdomain.Application{}, applicationdomain.ErrInvalidApplicationID
	}
	app, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return applicationdomain.Application{}, err
	}
	if app == nil {
		return applicationdomain.Application{}, applicationdomain.ErrApplicationNotFound
	}
	return *app, nil
}

func (s *Service) List(ctx context.Context, req applicationdomain.ListRequest) (applicationdomain.ListResponse, error) {
	switch req.Status {
	case "", applicationdomain.ApplicationStatusPending, applicationdomain.ApplicationStatusApproved, applicationdomain.ApplicationStatusDisapproved:
	default:
		return applicationdomain.ListResponse{}, applicationdomain.ErrInvalidStatus
	}

	var parkID snowflake.ID
	if raw := strings.TrimSpace(req.ParkID); raw != "" {
		parsed, err := snowflake.ParseString(raw)
		if err != nil || parsed <= 0 {
			return applicationdomain.ListResponse{}, parkdomain.ErrInvalidPark
		}
		parkID = parsed
	}

	cursor, err := pagination.ParsePosition(req.PageToken)
	if err != nil {
		return applicationdomain.ListResponse{}, err
	}

	limit := req.Size()
	items, err := s.repo.List(ctx, s.db, applicationdomain.ListFilter{
		Status: req.Status,
		ParkID: parkID,
		Cursor: cursor,
		Limit:  limit,
	})
	if err != nil {
		return applicationdomain.ListResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, limit, func(item *applicationdomain.Application) string {
		return pagination.PositionToken(item.ID, item.CreatedAt)
	})
	apps := make([]applicationdomain.Application, 0, len(items))
	for _, item := range items {
		apps = append(apps, *item)
	}
	return applicationdomain.ListResponse{PageInfo: pageInfo, Applications: apps}, nil
}

// MarkApplicationFeePaid records completion of the external application fee payment.
func (s *Service) MarkApplicationFeePaid(ctx context.Context, id snowflake.ID) (applicationdomain.Application, error) {
	changed := false
	app, err := s.updateLocked(ctx, id, func(app *applicationdomain.Application) (map[string]any, error) {
		if app.Status != applicationdomain.ApplicationStatusPending {
			return nil, applicationdomain.ErrInvalidTransition
		}
		if app.IsPaid {
			return nil, nil
		}
		changed = true
		return map[string]any{"is_paid": true}, nil
	})
	if err != nil {
		return applicationdomain.Application{}, err
	}

	if changed {
		s.emitAudit(ctx, "application.fee_paid", app.ID, map[string]any{
			"application_fee": app.ApplicationFee,
		})
	}
	return app, nil
}

func (s *Service) MarkLocationFeePaid(ctx context.Context, id snowflake.ID) (applicationdomain.Application, error) {
	changed := false
	app, err := s.updateLocked(ctx, id, func(app *applicationdomain.Application) (map[string]any, error) {
		if !app.LocationFeeRequired || app.Status == applicationdomain.ApplicationStatusDisapproved {
			return nil, applicationdomain.ErrInvalidOperation
		}
		if app.LocationFeePaid {
			return nil, nil
		}
		changed = true
		return map[string]any{"location_fee_paid": true}, nil
	})
	if err != nil {
		return applicationdomain.Application{}, err
	}

	if changed {
		s.emitAudit(ctx, "application.location_fee_paid", app.ID, map[string]any{
			"location_fee": app.LocationFee,
		})
	}
	return app, nil
}

func (s *Service) PaymentStatus(ctx context.Context, id snowflake.ID) (applicationdomain.PaymentStatus, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return applicationdomain.PaymentStatus{}, err
	}

	invoice, err := s.invoiceRepo.FindByApplication(ctx, s.db, app.ID)
	if err != nil {
		return applicationdomain.PaymentStatus{}, err
	}
	if invoice == nil {
		return app.Payment(nil, false), nil
	}
	invoiceID := invoice.ID
	return app.Payment(&invoiceID, invoice.IsPaid()), nil
}

func (s *Service) AttachInsuranceDocument(ctx context.Context, id snowflake.ID, key string) (applicationdomain.Application, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return applicationdomain.Application{}, applicationdomain.ErrInvalidDocumentKey
	}

	app, err := s.updateLocked(ctx, id, func(*applicationdomain.Application) (map[string]any, error) {
		return map[string]any{"insurance_document_key": key}, nil
	})
	if err != nil {
		return applicationdomain.Application{}, err
	}

	s.emitAudit(ctx, "application.insurance_document_attached", app.ID, map[string]any{
		"document_key": key,
	})
	return app, nil
}

// updateLocked loads the application under a row lock and applies the fields returned
// by mutate. A nil field set leaves the row untouched.
func (s *Service) updateLocked(ctx context.Context, id snowflake.ID, mutate func(*applicationdomain.Application) (map[string]any, error)) (applicationdomain.Application, error) {
	if id <= 0 {
		return applicationdomain.Application{}, applicationdomain.ErrInvalidApplicationID
	}

	var result applicationdomain.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if app == nil {
			return applicationdomain.ErrApplicationNotFound
		}

		fields, err := mutate(app)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			result = *app
			return nil
		}

		if err := s.repo.Update(ctx, tx, id, applicationdomain.StampedFields(s.clock.Now(), fields)); err != nil {
			return err
		}
		updated, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if updated == nil {
			return applicationdomain.ErrApplicationNotFound
		}
		result = *updated
		return nil
	})
	if err != nil {
		return applicationdomain.Application{}, err
	}
	return result, nil
}

func (s *Service) checkFee(category feedomain.Category, amount float64) error {
	if amount == 0 {
		return nil
	}
	if _, err := s.feeSvc.ProductFor(category, amount); err != nil {
		if errors.Is(err, feedomain.ErrUnknownAmount) {
			return invalid(fmt.Sprintf("%s %.2f is not an offered amount", category, amount))
		}
		return err
	}
	return nil
}

// emitAudit records an application event. Contact fields are masked by the audit service.
func (s *Service) emitAudit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	if err := s.auditSvc.AuditLog(ctx, "", nil, action, "application", &targetID, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func invalid(detail string) error {
	return fmt.Errorf("%w: %s", applicationdomain.ErrInvalidApplication, detail)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

const clockLayout = "15:04"

// normalizeClock parses an HH:MM value, which may have a single-digit hour, and
// returns it zero padded.
func normalizeClock(field string, value *string) (*string, time.Time, error) {
	v := trimmed(value)
	if v == nil {
		return nil, time.Time{}, nil
	}
	parsed, err := time.Parse(clockLayout, *v)
	if err != nil {
		return nil, time.Time{}, invalid(field + " must be HH:MM")
	}
	out := parsed.Format(clockLayout)
	return &out, parsed, nil
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	if out == "" {
		return nil
	}
	return &out
}

// normalizeDates sorts and deduplicates YYYY-MM-DD dates; lexical order is calendar order.
func normalizeDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
