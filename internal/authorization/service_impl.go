package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/permitdesk/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

// NewEnforcer loads persisted policies through the gorm adapter and seeds the role table.
func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, staff Staff, object string, action string) error {
	staff.User = strings.TrimSpace(staff.User)
	staff.Role = strings.ToLower(strings.TrimSpace(staff.Role))
	if staff.User == "" {
		return ErrUnauthenticated
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	if !KnownRole(staff.Role) {
		s.auditDenied(ctx, staff, object, action)
		return ErrForbidden
	}

	subject := staff.Subject()
	if err := s.ensureGrouping(subject, roleName(staff.Role)); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, staff, object, action)
		return ErrForbidden
	}
	return nil
}

// ensureGrouping keeps exactly one role link per staff subject. The proxy is the
// source of truth for roles, so a changed header replaces the stored link.
func (s *ServiceImpl) ensureGrouping(subject string, role string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 || rule[1] == role {
			continue
		}
		params := make([]interface{}, 0, len(rule))
		for _, value := range rule {
			params = append(params, value)
		}
		if _, err := s.enforcer.RemoveGroupingPolicy(params...); err != nil {
			return err
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, role)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, staff Staff, object string, action string) {
	s.log.Info("authorization denied",
		zap.String("staff", staff.User),
		zap.String("role", staff.Role),
		zap.String("action", action),
	)
	if s.auditSvc == nil {
		return
	}
	actorID := staff.User
	targetID := object
	if err := s.auditSvc.AuditLog(ctx, string(auditdomain.ActorTypeStaff), &actorID, "authorization.denied", "authorization", &targetID, map[string]any{
		"object": object,
		"action": action,
		"role":   staff.Role,
	}); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}
}

func roleName(role string) string {
	return "role:" + role
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		// Clerks handle intake and read everything on the desk.
		{roleName(RoleClerk), ObjectApplication, ActionApplicationView},
		{roleName(RoleClerk), ObjectApplication, ActionApplicationUpdate},
		{roleName(RoleClerk), ObjectInvoice, ActionInvoiceView},

		{roleName(RoleReviewer), ObjectApplication, ActionApplicationApprove},
		{roleName(RoleReviewer), ObjectApplication, ActionApplicationDisapprove},
		{roleName(RoleReviewer), ObjectPermit, ActionPermitPrint},

		{roleName(RoleFinance), ObjectApplication, ActionApplicationView},
		{roleName(RoleFinance), ObjectInvoice, ActionInvoiceView},
		{roleName(RoleFinance), ObjectPayment, ActionPaymentRecord},

		{roleName(RoleAdmin), ObjectApplication, ActionApplicationDelete},
		{roleName(RoleAdmin), ObjectAuditLog, ActionAuditLogView},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	inherits := [][]string{
		{roleName(RoleReviewer), roleName(RoleClerk)},
		{roleName(RoleAdmin), roleName(RoleReviewer)},
		{roleName(RoleAdmin), roleName(RoleFinance)},
	}
	for _, link := range inherits {
		if _, err := enforcer.AddGroupingPolicy(link); err != nil {
			return err
		}
	}
	return nil
}
