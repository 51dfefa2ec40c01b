package user

import (
	"github.com/notifycar/notifycar/internal/user/repository"
	"github.com/notifycar/notifycar/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
