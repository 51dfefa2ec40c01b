package settings

import (
	"github.com/notifycar/notifycar/internal/settings/repository"
	"github.com/notifycar/notifycar/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
