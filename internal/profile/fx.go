package profile

import (
	"github.com/billcraft/billcraft/internal/profile/repository"
	"github.com/billcraft/billcraft/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
