package handler

import (
	"errors"
	"net/http"
	"strconv"

	. "usersapi/internal/adapter/http/helper"
	. "usersapi/internal/adapter/http/validation"
	"usersapi/internal/core/domain"
	"usersapi/internal/core/model/request"
	"usersapi/internal/core/model/response"
	"usersapi/internal/core/port"
	"usersapi/internal/core/util"
	"usersapi/pkg/config"
	. "usersapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	msgInvalidID     = "Invalid user ID"
	msgNotFound      = "User not found"
	msgEmailConflict = "User with this email already exists"
	msgInvalidBody   = "Invalid request body"
)

type UserHandler struct {
	svc    port.UserService
	Logger *config.Logger
}

func NewUserHandler(svc port.UserService, logger *config.Logger) *UserHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &UserHandler{
		svc:    svc,
		Logger: logger,
	}
}

func toUserResponse(user domain.User) response.UserResponse {
	return response.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// parseID accepts only base-10 integers greater than zero.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// bindUser decodes, trims and validates the body. It writes the 400 itself
// and returns false when the request must stop.
func bindUser(c *gin.Context) (request.UserRequest, bool) {
	params, err := util.ParamsToMap[request.UserRequest](c)

	if err != nil {
		SendError(c, http.StatusBadRequest, msgInvalidBody, err)
		return params, false
	}

	params.Trim()

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return params, false
	}

	return params, true
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user.GetAllUsers", []attribute.KeyValue{
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	var (
		users []domain.User
		err   error
	)

	if email, ok := c.GetQuery("email"); ok {
		var (
			user  domain.User
			found bool
		)

		user, found, err = h.svc.GetUserByEmail(ctx, email)

		users = []domain.User{}
		if found {
			users = append(users, user)
		}
	} else {
		users, err = h.svc.ListUsers(ctx)
	}

	if err != nil {
		AddSpanError(span, err)

		h.Logger.ErrorWithTrace(ctx, "Failed to list users", zap.Error(err))

		SendInternalError(c, "Error retrieving users", err)
		return
	}

	data := make([]response.UserResponse, 0, len(users))

	for _, user := range users {
		data = append(data, toUserResponse(user))
	}

	span.SetAttributes(attribute.Int("users.count", len(data)))

	SendList(c, "Users retrieved successfully", data, len(data))
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseID(c)

	if !ok {
		SendBadRequestError(c, msgInvalidID)
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user.GetUserByID", []attribute.KeyValue{
		attribute.Int64("user.id", id),
	})

	defer span.End()

	user, found, err := h.svc.GetUserByID(ctx, id)

	if err != nil {
		AddSpanError(span, err)

		h.Logger.ErrorWithTrace(ctx, "Failed to get user", zap.Error(err), zap.Int64("id", id))

		SendInternalError(c, "Error retrieving user", err)
		return
	}

	if !found {
		SendNotFoundError(c, msgNotFound)
		return
	}

	SendSuccess(c, http.StatusOK, "User retrieved successfully", toUserResponse(user))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	params, ok := bindUser(c)

	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user.CreateUser", nil)

	defer span.End()

	user, err := h.svc.Create(ctx, domain.User{
		Name:  params.Name,
		Email: params.Email,
	})

	if errors.Is(err, domain.ErrEmailConflict) {
		SendConflictError(c, msgEmailConflict)
		return
	}

	if err != nil {
		AddSpanError(span, err)

		h.Logger.ErrorWithTrace(ctx, "Failed to create user", zap.Error(err))

		SendInternalError(c, "Error creating user", err)
		return
	}

	SendSuccess(c, http.StatusCreated, "User created successfully", toUserResponse(user))
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c)

	if !ok {
		SendBadRequestError(c, msgInvalidID)
		return
	}

	params, ok := bindUser(c)

	if !ok {
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user.UpdateUser", []attribute.KeyValue{
		attribute.Int64("user.id", id),
	})

	defer span.End()

	user, found, err := h.svc.Update(ctx, domain.User{
		ID:    id,
		Name:  params.Name,
		Email: params.Email,
	})

	if errors.Is(err, domain.ErrEmailConflict) {
		SendConflictError(c, msgEmailConflict)
		return
	}

	if err != nil {
		AddSpanError(span, err)

		h.Logger.ErrorWithTrace(ctx, "Failed to update user", zap.Error(err), zap.Int64("id", id))

		SendInternalError(c, "Error updating user", err)
		return
	}

	if !found {
		SendNotFoundError(c, msgNotFound)
		return
	}

	SendSuccess(c, http.StatusOK, "User updated successfully", toUserResponse(user))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c)

	if !ok {
		SendBadRequestError(c, msgInvalidID)
		return
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.user.DeleteUser", []attribute.KeyValue{
		attribute.Int64("user.id", id),
	})

	defer span.End()

	deleted, err := h.svc.Delete(ctx, id)

	if err != nil {
		AddSpanError(span, err)

		h.Logger.ErrorWithTrace(ctx, "Failed to delete user", zap.Error(err), zap.Int64("id", id))

		SendInternalError(c, "Error deleting user", err)
		return
	}

	if !deleted {
		SendNotFoundError(c, msgNotFound)
		return
	}

	SendSuccess(c, http.StatusOK, "User deleted successfully", nil)
}
