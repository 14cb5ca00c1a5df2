package cuttinglist

import "go.uber.org/fx"

var Module = fx.Module("cuttinglist.service",
	fx.Provide(NewService),
)
