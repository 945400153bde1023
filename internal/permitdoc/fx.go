package permitdoc

import (
	"github.com/smallbiznis/permitdesk/internal/permitdoc/service"
	"go.uber.org/fx"
)

var Module = fx.Module("permitdoc.service",
	fx.Provide(service.NewService),
)
