package main

import (
	"github.com/billcraft/billcraft/internal/assets"
	"github.com/billcraft/billcraft/internal/config"
	"github.com/billcraft/billcraft/internal/identity"
	"github.com/billcraft/billcraft/internal/invoice"
	"github.com/billcraft/billcraft/internal/logger"
	"github.com/billcraft/billcraft/internal/migration"
	"github.com/billcraft/billcraft/internal/profile"
	"github.com/billcraft/billcraft/internal/server"
	"github.com/billcraft/billcraft/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		migration.Module,
		identity.Module,
		assets.Module,

		// Functional domains
		invoice.Module,
		profile.Module,

		// HTTP transport
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
