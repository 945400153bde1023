package main

import (
	"github.com/smallbiznis/permitdesk/internal/clock"
	"github.com/smallbiznis/permitdesk/internal/config"
	"github.com/smallbiznis/permitdesk/internal/migration"
	"github.com/smallbiznis/permitdesk/internal/observability"
	"github.com/smallbiznis/permitdesk/internal/server"
	"github.com/smallbiznis/permitdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,

		// Schema and reference data before anything serves traffic.
		migration.Module,

		// Domains, providers and the HTTP surface.
		server.Module,
	)
	app.Run()
}
