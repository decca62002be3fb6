package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vendorly/invoicedesk/internal/config"
	"github.com/vendorly/invoicedesk/internal/logger"
	"github.com/vendorly/invoicedesk/internal/migration"
	"github.com/vendorly/invoicedesk/internal/server"
	"github.com/vendorly/invoicedesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
