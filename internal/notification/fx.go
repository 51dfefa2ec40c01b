package notification

import (
	"github.com/notifycar/notifycar/internal/notification/repository"
	"github.com/notifycar/notifycar/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
