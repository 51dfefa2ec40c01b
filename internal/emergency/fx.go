package emergency

import (
	"github.com/notifycar/notifycar/internal/emergency/repository"
	"github.com/notifycar/notifycar/internal/emergency/service"
	"go.uber.org/fx"
)

var Module = fx.Module("emergency.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
