package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	database "usersapi/internal/adapter/database/postgres"
	domain "usersapi/internal/core/domain"
	port "usersapi/internal/core/port"
)

const returningColumns = "RETURNING id, name, email, created_at, updated_at"

var userColumns = []string{"id", "name", "email", "created_at", "updated_at"}

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) port.UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (domain.User, error) {
	var data domain.User

	err := row.Scan(
		&data.ID,
		&data.Name,
		&data.Email,
		&data.CreatedAt,
		&data.UpdatedAt,
	)

	return data, err
}

func (ur *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	sql, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := ur.db.Query(ctx, sql, args...)

	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	defer rows.Close()

	users := make([]domain.User, 0)

	for rows.Next() {
		user, err := scanUser(rows)

		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

func (ur *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, bool, error) {
	return ur.getOne(ctx, sq.Eq{"id": id})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return ur.getOne(ctx, sq.Eq{"email": domain.NormalizeEmail(email)})
}

func (ur *UserRepository) getOne(ctx context.Context, where sq.Eq) (domain.User, bool, error) {
	sql, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, false, err
	}

	user, err := scanUser(ur.db.QueryRow(ctx, sql, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}

	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return user, true, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.Normalize()

	sql, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("name", "email").
		Values(user.Name, user.Email).
		Suffix(returningColumns).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	created, err := scanUser(ur.db.QueryRow(ctx, sql, args...))

	if err != nil {
		return domain.User{}, writeError("create user", err)
	}

	return created, nil
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, bool, error) {
	user.Normalize()

	sql, args, err := ur.db.QueryBuilder.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": user.ID}).
		Suffix(returningColumns).
		ToSql()

	if err != nil {
		return domain.User{}, false, err
	}

	updated, err := scanUser(ur.db.QueryRow(ctx, sql, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}

	if err != nil {
		return domain.User{}, false, writeError("update user", err)
	}

	return updated, true, nil
}

func (ur *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	sql, args, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return false, err
	}

	tag, err := ur.db.Exec(ctx, sql, args...)

	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (ur *UserRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := ur.db.QueryBuilder.Select("COUNT(*)").From("users").ToSql()

	if err != nil {
		return 0, err
	}

	var count int64

	if err := ur.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func writeError(op string, err error) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrEmailConflict, err))
	}

	return fmt.Errorf("%s: %w", op, err)
}
