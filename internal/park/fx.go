package park

import (
	"github.com/smallbiznis/permitdesk/internal/park/service"
	"go.uber.org/fx"
)

var Module = fx.Module("park.service",
	fx.Provide(service.NewService),
)
