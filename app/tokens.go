// Package app is the call-site wiring for the observation shell: the service
// tokens and the registration/startup callbacks handed to the host builder.
package app

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/diag"
	"github.com/km-arc/go-hosting/framework/config"
	"github.com/km-arc/go-hosting/framework/container"
	"github.com/km-arc/go-hosting/maintenance"
	"github.com/km-arc/go-hosting/storage"
)

// Service tokens. One token per contract; resolution identity lives here, so
// every part of the shell refers to the same registrations.
var (
	SettingsToken    = container.NewToken[*config.Settings]("settings")
	LoggerToken      = container.NewToken[*zap.Logger]("logger")
	DatabaseToken    = container.NewToken[*storage.Database]("database")
	DiagToken        = container.NewToken[*diag.Server]("diagnostics")
	MaintenanceToken = container.NewToken[*maintenance.Scheduler]("maintenance")
)
