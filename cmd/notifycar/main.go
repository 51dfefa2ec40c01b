package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/migration"
	"github.com/notifycar/notifycar/internal/observability"
	"github.com/notifycar/notifycar/internal/server"
	"github.com/notifycar/notifycar/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
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
