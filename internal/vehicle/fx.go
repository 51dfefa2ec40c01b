package vehicle

import (
	"github.com/notifycar/notifycar/internal/vehicle/repository"
	"github.com/notifycar/notifycar/internal/vehicle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vehicle.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
