package verification

import (
	"github.com/notifycar/notifycar/internal/verification/repository"
	"github.com/notifycar/notifycar/internal/verification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("verification.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
