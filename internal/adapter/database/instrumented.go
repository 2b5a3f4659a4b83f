package database

import (
	"context"

	"usersapi/internal/core/domain"
	"usersapi/internal/core/port"
	"usersapi/internal/core/telemetry"
	"usersapi/pkg/tracing"
)

// InstrumentedRepository wraps every repository call in a database span and
// counts it per driver.
type InstrumentedRepository struct {
	next    port.UserRepository
	driver  string
	metrics *telemetry.AppMetrics
}

func NewInstrumentedRepository(next port.UserRepository, driver string, metrics *telemetry.AppMetrics) port.UserRepository {
	return &InstrumentedRepository{next: next, driver: driver, metrics: metrics}
}

func (r *InstrumentedRepository) observe(ctx context.Context, operation string, fn func(context.Context) error) error {
	if r.metrics != nil {
		r.metrics.RecordDatabaseOperation(ctx, r.driver, operation)
	}

	return tracing.DatabaseSpanWrapper(ctx, r.driver, "users", operation, fn)
}

func (r *InstrumentedRepository) List(ctx context.Context) (users []domain.User, err error) {
	err = r.observe(ctx, "list", func(ctx context.Context) error {
		users, err = r.next.List(ctx)
		return err
	})
	return users, err
}

func (r *InstrumentedRepository) GetByID(ctx context.Context, id int64) (user domain.User, found bool, err error) {
	err = r.observe(ctx, "get_by_id", func(ctx context.Context) error {
		user, found, err = r.next.GetByID(ctx, id)
		return err
	})
	return user, found, err
}

func (r *InstrumentedRepository) GetByEmail(ctx context.Context, email string) (user domain.User, found bool, err error) {
	err = r.observe(ctx, "get_by_email", func(ctx context.Context) error {
		user, found, err = r.next.GetByEmail(ctx, email)
		return err
	})
	return user, found, err
}

func (r *InstrumentedRepository) Create(ctx context.Context, in domain.User) (user domain.User, err error) {
	err = r.observe(ctx, "create", func(ctx context.Context) error {
		user, err = r.next.Create(ctx, in)
		return err
	})
	return user, err
}

func (r *InstrumentedRepository) Update(ctx context.Context, in domain.User) (user domain.User, found bool, err error) {
	err = r.observe(ctx, "update", func(ctx context.Context) error {
		user, found, err = r.next.Update(ctx, in)
		return err
	})
	return user, found, err
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	err = r.observe(ctx, "delete", func(ctx context.Context) error {
		deleted, err = r.next.Delete(ctx, id)
		return err
	})
	return deleted, err
}

func (r *InstrumentedRepository) Count(ctx context.Context) (count int64, err error) {
	err = r.observe(ctx, "count", func(ctx context.Context) error {
		count, err = r.next.Count(ctx)
		return err
	})
	return count, err
}
