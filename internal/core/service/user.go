package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"usersapi/internal/core/domain"
	"usersapi/internal/core/port"
	tel "usersapi/internal/core/telemetry"
)

const (
	serviceName    = "user"
	defaultTimeout = 5 * time.Second
)

type UserService struct {
	repo      port.UserRepository
	telemetry port.Telemetry
	logger    *zap.Logger
	timeout   time.Duration
}

// NewUserService bounds every repository call by timeout (5s when zero).
func NewUserService(repo port.UserRepository, telemetry port.Telemetry, logger *zap.Logger, timeout time.Duration) *UserService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &UserService{
		repo:      repo,
		telemetry: telemetry,
		logger:    logger,
		timeout:   timeout,
	}
}

func (us *UserService) run(ctx context.Context, operation string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, us.timeout)
	defer cancel()

	ctx, span := us.telemetry.StartServiceSpan(ctx, serviceName, operation, attrs)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	us.telemetry.RecordServiceOperation(ctx, serviceName, operation, time.Since(start), err)

	if err != nil && !errors.Is(err, domain.ErrEmailConflict) {
		us.telemetry.RecordError(ctx, operation, err, map[string]interface{}{
			"service": serviceName,
		})
	}

	return err
}

func (us *UserService) ListUsers(ctx context.Context) (users []domain.User, err error) {
	err = us.run(ctx, "list", nil, func(ctx context.Context) error {
		users, err = us.repo.List(ctx)
		return err
	})

	return users, err
}

func (us *UserService) GetUserByID(ctx context.Context, id int64) (user domain.User, found bool, err error) {
	err = us.run(ctx, "get_by_id", []attribute.KeyValue{attribute.Int64("user.id", id)}, func(ctx context.Context) error {
		user, found, err = us.repo.GetByID(ctx, id)
		return err
	})

	return user, found, err
}

func (us *UserService) GetUserByEmail(ctx context.Context, email string) (user domain.User, found bool, err error) {
	err = us.run(ctx, "get_by_email", nil, func(ctx context.Context) error {
		user, found, err = us.repo.GetByEmail(ctx, email)
		return err
	})

	return user, found, err
}

func (us *UserService) Create(ctx context.Context, in domain.User) (user domain.User, err error) {
	in.Normalize()

	err = us.run(ctx, "create", nil, func(ctx context.Context) error {
		user, err = us.repo.Create(ctx, in)
		return err
	})

	if errors.Is(err, domain.ErrEmailConflict) {
		us.logger.Info("Rejected duplicate email", zap.String("email", in.Email))
	}

	return user, err
}

func (us *UserService) Update(ctx context.Context, in domain.User) (user domain.User, found bool, err error) {
	in.Normalize()

	err = us.run(ctx, "update", []attribute.KeyValue{attribute.Int64("user.id", in.ID)}, func(ctx context.Context) error {
		user, found, err = us.repo.Update(ctx, in)
		return err
	})

	if errors.Is(err, domain.ErrEmailConflict) {
		us.logger.Info("Rejected duplicate email", zap.Int64("id", in.ID), zap.String("email", in.Email))
	}

	return user, found, err
}

func (us *UserService) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	err = us.run(ctx, "delete", []attribute.KeyValue{attribute.Int64("user.id", id)}, func(ctx context.Context) error {
		deleted, err = us.repo.Delete(ctx, id)
		return err
	})

	return deleted, err
}

func (us *UserService) Count(ctx context.Context) (count int64, err error) {
	err = us.run(ctx, "count", nil, func(ctx context.Context) error {
		count, err = us.repo.Count(ctx)
		return err
	})

	return count, err
}
