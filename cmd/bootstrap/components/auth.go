package components

import (
	"circulation-engine/internal/usecase"

	"go.uber.org/fx"
)

var AuthModule = fx.Module("auth",
	fx.Provide(
		usecase.NewAuthUseCase,
		usecase.NewTokenValidator,
	),
)
