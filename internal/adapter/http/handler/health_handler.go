package handler

import (
	"context"
	"net/http"
	"time"

	"usersapi/internal/core/model/response"
	"usersapi/internal/core/port"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	checker port.HealthChecker
	users   port.UserService
}

func NewHealthHandler(checker port.HealthChecker, users port.UserService) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		users:   users,
	}
}

// Health always answers 200; the database field carries the backend state.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	body := response.HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Database:  "Disconnected",
		Driver:    h.checker.Driver(),
	}

	if err := h.checker.Ping(ctx); err == nil {
		body.Database = "Connected"

		if count, err := h.users.Count(ctx); err == nil {
			body.Users = &count
		}
	}

	c.JSON(http.StatusOK, body)
}

func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User API Server is running!",
		"endpoints": gin.H{
			"GET /api/users":        "Get all users",
			"GET /api/users/:id":    "Get user by ID",
			"POST /api/users":       "Create new user (requires name and email)",
			"PUT /api/users/:id":    "Update user (requires name and email)",
			"DELETE /api/users/:id": "Delete user",
			"GET /health":           "Health check",
		},
	})
}
