package audit

import (
	"github.com/smallbiznis/permitdesk/internal/audit/repository"
	"github.com/smallbiznis/permitdesk/internal/audit/service"
	"go.uber.org/fx"
)

// Module provides the audit trail writer and reader shared by every service.
var Module = fx.Module("audit.service",
	fx.Provide(
		repository.Provide,
		service.NewService,
	),
)
