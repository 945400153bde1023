package notification

import (
	notificationdomain "github.com/smallbiznis/permitdesk/internal/notification/domain"
	"github.com/smallbiznis/permitdesk/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(service.NewNotifier),
	fx.Provide(
		service.NewDispatcher,
		func(d *service.Dispatcher) notificationdomain.Dispatcher { return d },
	),
)
