package http

import (
	"time"

	"usersapi/internal/adapter/database"
	"usersapi/internal/adapter/http/handler"
	"usersapi/internal/core/port"
	"usersapi/internal/core/service"
	"usersapi/pkg/config"
)

type Container struct {
	Store *database.Store

	UserService port.UserService

	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
}

func NewContainer(store *database.Store, probe port.Telemetry, logger *config.Logger, timeout time.Duration) *Container {
	userSvc := service.NewUserService(store.Users, probe, logger.Logger.Logger, timeout)

	return &Container{
		Store: store,

		UserService: userSvc,

		UserHandler:   handler.NewUserHandler(userSvc, logger),
		HealthHandler: handler.NewHealthHandler(store, userSvc),
	}
}
