package routes

import (
	"fmt"
	"net/http"

	"usersapi/internal/adapter/http/handler"
	. "usersapi/internal/adapter/http/helper"
	"usersapi/internal/core/telemetry"
	. "usersapi/pkg/config"
	"usersapi/pkg/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HandlersConfig struct {
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *Logger, config *AppConfig) *gin.Engine {
	router := gin.New()

	middlewares.SetupGinMiddleware(router, metrics, logger, config)

	router.Use(recovery(logger))

	registerRoutes(router, handlers)

	return router
}

// SetupRouterForTests wires the routes with recovery only.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(recovery(NewNopLogger()))

	registerRoutes(router, handlers)

	return router
}

func registerRoutes(router *gin.Engine, handlers HandlersConfig) {
	router.GET("/", handler.Index)

	if handlers.HealthHandler != nil {
		router.GET("/health", handlers.HealthHandler.Health)
	}

	if handlers.Metrics != nil {
		router.GET("/metrics", gin.WrapH(handlers.Metrics))
	}

	if handlers.UserHandler != nil {
		setupUserRoutes(router, handlers.UserHandler)
	}

	router.NoRoute(func(c *gin.Context) {
		SendNotFoundError(c, "Route not found")
	})
}

func setupUserRoutes(router *gin.Engine, userHandler *handler.UserHandler) {
	users := router.Group("/api/users")
	{
		users.GET("", userHandler.GetAllUsers)
		users.GET("/:id", userHandler.GetUserByID)
		users.POST("", userHandler.CreateUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}
}

func recovery(logger *Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err := fmt.Errorf("%v", recovered)

		logger.ErrorWithTrace(c.Request.Context(), "Recovered from panic",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path))

		SendError(c, http.StatusInternalServerError, "Something went wrong!", err)
		c.Abort()
	})
}
