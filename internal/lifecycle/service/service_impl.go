package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	applicationdomain "github.com/smallbiznis/permitdesk/internal/application/domain"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"github.com/smallbiznis/permitdesk/internal/clock"
	"github.com/smallbiznis/permitdesk/internal/config"
	invoicedomain "github.com/smallbiznis/permitdesk/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/permitdesk/internal/lifecycle/domain"
	notificationdomain "github.com/smallbiznis/permitdesk/internal/notification/domain"
	"github.com/smallbiznis/permitdesk/internal/notification/messages"
	obsmetrics "github.com/smallbiznis/permitdesk/internal/observability/metrics"
	"github.com/smallbiznis/permitdesk/internal/observability/tracing"
	parkdomain "github.com/smallbiznis/permitdesk/internal/park/domain"
	"github.com/smallbiznis/permitdesk/pkg/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
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
	Config      config.Config
	AppRepo     applicationdomain.Repository
	InvoiceRepo invoicedomain.Repository
	ParkSvc     parkdomain.Service
	AuditSvc    auditdomain.Service
	Dispatcher  notificationdomain.Dispatcher
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	agency config.AgencyConfig
	tracer trace.Tracer

	appRepo     applicationdomain.Repository
	invoiceRepo invoicedomain.Repository
	parkSvc     parkdomain.Service
	auditSvc    auditdomain.Service
	dispatcher  notificationdomain.Dispatcher
	metrics     *obsmetrics.Metrics
}

func NewService(p ServiceParam) lifecycledomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("lifecycle.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		agency: p.Config.Agency,
		tracer: otel.Tracer("permitdesk/lifecycle"),

		appRepo:     p.AppRepo,
		invoiceRepo: p.InvoiceRepo,
		parkSvc:     p.ParkSvc,
		auditSvc:    p.AuditSvc,
		dispatcher:  p.Dispatcher,
		metrics:     p.Metrics,
	}
}

// Approve flips a pending application to approved. A positive permit fee produces
// exactly one pending invoice, inserted before the status change in the same transaction.
func (s *Service) Approve(ctx context.Context, applicationID snowflake.ID) (lifecycledomain.ApproveResult, error) {
	ctx, span := s.startSpan(ctx, "lifecycle.approve", applicationID)
	defer span.End()

	if applicationID <= 0 {
		return lifecycledomain.ApproveResult{}, s.finish(ctx, span, "approve", applicationdomain.ErrInvalidApplicationID)
	}

	var result lifecycledomain.ApproveResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.lockPending(ctx, tx, applicationID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		if app.PermitFee > 0 {
			existing, err := s.invoiceRepo.FindByApplication(ctx, tx, app.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return lifecycledomain.ErrInvoiceAlreadyExists
			}

			id := s.genID.Generate()
			invoice := invoicedomain.Invoice{
				ID:            id,
				InvoiceNumber: invoicedomain.NumberFor(id),
				ApplicationID: app.ID,
				Amount:        applicationdomain.ToCents(app.PermitFee),
				Status:        invoicedomain.InvoiceStatusPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.invoiceRepo.Insert(ctx, tx, &invoice); err != nil {
				if db.IsDuplicateKeyErr(err) {
					// A concurrent approval won the race for this application.
					return lifecycledomain.ErrInvalidTransition
				}
				return err
			}
			result.Invoice = &invoice
		}

		ok, err := s.appRepo.TransitionFromPending(ctx, tx, app.ID, applicationdomain.ApplicationStatusApproved,
			applicationdomain.StampedFields(now, map[string]any{"approved_at": now}))
		if err != nil {
			return err
		}
		if !ok {
			return lifecycledomain.ErrInvalidTransition
		}

		updated, err := s.reload(ctx, tx, app.ID)
		if err != nil {
			return err
		}
		result.Application = updated
		return nil
	})
	if err != nil {
		return lifecycledomain.ApproveResult{}, s.finish(ctx, span, "approve", err)
	}
	s.finish(ctx, span, "approve", nil)

	s.emitAudit(ctx, "application.approved", "application", result.Application.ID, map[string]any{
		"application_number": result.Application.ApplicationNumber,
		"permit_fee":         result.Application.PermitFee,
	})
	if result.Invoice != nil {
		s.metrics.RecordInvoiceCreated(ctx, result.Invoice.Amount)
		s.emitAudit(ctx, "invoice.created", "invoice", result.Invoice.ID, map[string]any{
			"invoice_number": result.Invoice.InvoiceNumber,
			"application_id": result.Application.ID.String(),
			"amount":         result.Invoice.Amount,
		})
	}
	return result, nil
}

// Disapprove records the reason and, after commit, queues the applicant notification.
// Delivery is best effort and never affects the outcome.
func (s *Service) Disapprove(ctx context.Context, req lifecycledomain.DisapproveRequest) (applicationdomain.Application, error) {
	ctx, span := s.startSpan(ctx, "lifecycle.disapprove", req.ApplicationID)
	defer span.End()

	reason, method, err := validateDisapproval(req)
	if err != nil {
		return applicationdomain.Application{}, s.finish(ctx, span, "disapprove", err)
	}
	if req.ApplicationID <= 0 {
		return applicationdomain.Application{}, s.finish(ctx, span, "disapprove", applicationdomain.ErrInvalidApplicationID)
	}
	span.SetAttributes(attribute.String("notify.method", string(method)))

	var result applicationdomain.Application
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByIDForUpdate(ctx, tx, req.ApplicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return applicationdomain.ErrApplicationNotFound
		}
		if method.UsesSMS() && !app.HasPhone() {
			return lifecycledomain.ErrPhoneRequired
		}
		if app.Status != applicationdomain.ApplicationStatusPending {
			return lifecycledomain.ErrInvalidTransition
		}

		now := s.clock.Now()
		ok, err := s.appRepo.TransitionFromPending(ctx, tx, app.ID, applicationdomain.ApplicationStatusDisapproved,
			applicationdomain.StampedFields(now, map[string]any{
				"disapproval_reason": reason,
				"disapproved_at":     now,
			}))
		if err != nil {
			return err
		}
		if !ok {
			return lifecycledomain.ErrInvalidTransition
		}

		result, err = s.reload(ctx, tx, app.ID)
		return err
	})
	if err != nil {
		return applicationdomain.Application{}, s.finish(ctx, span, "disapprove", err)
	}
	s.finish(ctx, span, "disapprove", nil)

	s.emitAudit(ctx, "application.disapproved", "application", result.ID, map[string]any{
		"application_number": result.ApplicationNumber,
		"reason":             reason,
		"notify_method":      string(method),
	})
	s.notifyDisapproval(ctx, result, method)
	return result, nil
}

// Delete removes an unpaid pending application or a disapproved one.
func (s *Service) Delete(ctx context.Context, applicationID snowflake.ID) error {
	ctx, span := s.startSpan(ctx, "lifecycle.delete", applicationID)
	defer span.End()

	if applicationID <= 0 {
		return s.finish(ctx, span, "delete", applicationdomain.ErrInvalidApplicationID)
	}

	var deleted applicationdomain.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		app, err := s.appRepo.FindByIDForUpdate(ctx, tx, applicationID)
		if err != nil {
			return err
		}
		if app == nil {
			return applicationdomain.ErrApplicationNotFound
		}
		if !app.Deletable() {
			return lifecycledomain.ErrInvalidOperation
		}

		ok, err := s.appRepo.Delete(ctx, tx, app.ID)
		if err != nil {
			return err
		}
		if !ok {
			return applicationdomain.ErrApplicationNotFound
		}
		deleted = *app
		return nil
	})
	if err != nil {
		return s.finish(ctx, span, "delete", err)
	}
	s.finish(ctx, span, "delete", nil)

	s.emitAudit(ctx, "application.deleted", "application", deleted.ID, map[string]any{
		"application_number": deleted.ApplicationNumber,
		"status":             string(deleted.Status),
	})
	return nil
}

// MarkInvoicePaid settles a pending invoice. Settling a paid invoice again succeeds
// with AlreadyPaid set and changes nothing.
func (s *Service) MarkInvoicePaid(ctx context.Context, invoiceID snowflake.ID) (lifecycledomain.MarkPaidResult, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.mark_invoice_paid", trace.WithAttributes(
		attribute.String("invoice.id", invoiceID.String()),
	))
	defer span.End()

	if invoiceID <= 0 {
		return lifecycledomain.MarkPaidResult{}, s.finish(ctx, span, "mark_paid", invoicedomain.ErrInvalidInvoiceID)
	}

	var result lifecycledomain.MarkPaidResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return invoicedomain.ErrInvoiceNotFound
		}
		if invoice.IsPaid() {
			result = lifecycledomain.MarkPaidResult{Invoice: *invoice, AlreadyPaid: true}
			return nil
		}

		changed, err := s.invoiceRepo.MarkPaid(ctx, tx, invoice.ID, s.clock.Now())
		if err != nil {
			return err
		}
		updated, err := s.invoiceRepo.FindByID(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return invoicedomain.ErrInvoiceNotFound
		}
		result = lifecycledomain.MarkPaidResult{Invoice: *updated, AlreadyPaid: !changed}
		return nil
	})
	if err != nil {
		return lifecycledomain.MarkPaidResult{}, s.finish(ctx, span, "mark_paid", err)
	}
	s.finish(ctx, span, "mark_paid", nil)
	span.SetAttributes(attribute.Bool("invoice.already_paid", result.AlreadyPaid))

	if !result.AlreadyPaid {
		s.metrics.RecordInvoicePaid(ctx)
		s.emitAudit(ctx, "invoice.paid", "invoice", result.Invoice.ID, map[string]any{
			"invoice_number": result.Invoice.InvoiceNumber,
			"application_id": result.Invoice.ApplicationID.String(),
			"amount":         result.Invoice.Amount,
		})
	}
	return result, nil
}

func validateDisapproval(req lifecycledomain.DisapproveRequest) (string, notificationdomain.Method, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return "", "", lifecycledomain.ErrReasonRequired
	}
	method, err := notificationdomain.ParseMethod(req.NotifyMethod)
	if err != nil {
		return "", "", lifecycledomain.ErrInvalidNotifyMethod
	}
	return reason, method, nil
}

func (s *Service) lockPending(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*applicationdomain.Application, error) {
	app, err := s.appRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, applicationdomain.ErrApplicationNotFound
	}
	if app.Status != applicationdomain.ApplicationStatusPending {
		return nil, lifecycledomain.ErrInvalidTransition
	}
	return app, nil
}

func (s *Service) reload(ctx context.Context, tx *gorm.DB, id snowflake.ID) (applicationdomain.Application, error) {
	app, err := s.appRepo.FindByID(ctx, tx, id)
	if err != nil {
		return applicationdomain.Application{}, err
	}
	if app == nil {
		return applicationdomain.Application{}, applicationdomain.ErrApplicationNotFound
	}
	return *app, nil
}

func (s *Service) notifyDisapproval(ctx context.Context, app applicationdomain.Application, method notificationdomain.Method) {
	parkName := ""
	if park, err := s.parkSvc.Get(ctx, app.ParkID); err == nil {
		parkName = park.Name
	}

	rendered, err := messages.Disapproval(messages.DisapprovalData{
		ApplicantName:     app.ApplicantName(),
		ApplicationNumber: app.ApplicationNumber,
		EventTitle:        app.EventTitle,
		EventDates:        []string(app.EventDates),
		ParkName:          parkName,
		Reason:            derefString(app.DisapprovalReason),
		AgencyName:        s.agency.Name,
		AgencyEmail:       s.agency.Email,
		AgencyPhone:       s.agency.Phone,
	})
	if err != nil {
		s.log.Error("render disapproval notification", zap.String("application_id", app.ID.String()), zap.Error(err))
		return
	}

	s.dispatcher.Enqueue(notificationdomain.Message{
		To: notificationdomain.Recipient{
			Name:  app.ApplicantName(),
			Email: app.Email,
			Phone: derefString(app.Phone),
		},
		Method:    method,
		Subject:   rendered.Subject,
		Body:      rendered.Body,
		SMSBody:   rendered.SMSBody,
		Reference: app.ApplicationNumber,
	})
}

func (s *Service) startSpan(ctx context.Context, name string, applicationID snowflake.ID) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("application.id", applicationID.String()),
	))
}

// finish records the transition outcome on the span and in metrics, then returns err.
func (s *Service) finish(ctx context.Context, span trace.Span, transition string, err error) error {
	switch {
	case err == nil:
		s.metrics.RecordTransition(ctx, transition, "ok")
	case isRejection(err):
		span.SetAttributes(attribute.String("lifecycle.rejection", err.Error()))
		s.metrics.RecordTransition(ctx, transition, "rejected")
	default:
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "lifecycle transition failed")
		s.metrics.RecordTransition(ctx, transition, "error")
		s.log.Error("lifecycle transition failed", zap.String("transition", transition), zap.Error(err))
	}
	return err
}

func isRejection(err error) bool {
	for _, target := range []error{
		lifecycledomain.ErrInvalidTransition,
		lifecycledomain.ErrInvalidOperation,
		lifecycledomain.ErrReasonRequired,
		lifecycledomain.ErrPhoneRequired,
		lifecycledomain.ErrInvalidNotifyMethod,
		applicationdomain.ErrApplicationNotFound,
		applicationdomain.ErrInvalidApplicationID,
		invoicedomain.ErrInvoiceNotFound,
		invoicedomain.ErrInvalidInvoiceID,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *Service) emitAudit(ctx context.Context, action string, targetType string, id snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	targetID := id.String()
	if err := s.auditSvc.AuditLog(ctx, "", nil, action, targetType, &targetID, metadata); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
