package organization

import (
	"github.com/notifycar/notifycar/internal/organization/repository"
	"github.com/notifycar/notifycar/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
