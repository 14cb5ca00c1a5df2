package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meatline/internal/config"
	"github.com/smallbiznis/meatline/internal/migration"
	"github.com/smallbiznis/meatline/internal/server"
	"github.com/smallbiznis/meatline/pkg/db"
	"github.com/smallbiznis/meatline/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
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
