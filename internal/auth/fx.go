package auth

import (
	"github.com/notifycar/notifycar/internal/auth/repository"
	"github.com/notifycar/notifycar/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
