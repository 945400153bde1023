package application

import (
	"github.com/smallbiznis/permitdesk/internal/application/repository"
	"github.com/smallbiznis/permitdesk/internal/application/service"
	"go.uber.org/fx"
)

var Module = fx.Module("application.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
