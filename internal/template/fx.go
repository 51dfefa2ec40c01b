package template

import (
	"github.com/notifycar/notifycar/internal/template/repository"
	"github.com/notifycar/notifycar/internal/template/service"
	"go.uber.org/fx"
)

var Module = fx.Module("template.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
