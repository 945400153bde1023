package providers

import (
	"github.com/smallbiznis/permitdesk/internal/providers/email"
	"github.com/smallbiznis/permitdesk/internal/providers/pdf"
	"github.com/smallbiznis/permitdesk/internal/providers/sms"
	"github.com/smallbiznis/permitdesk/internal/providers/storage"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	sms.Module,
	storage.Module,
	pdf.Module,
)
