package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"usersapi/internal/adapter/database/sqldb"
	"usersapi/internal/core/domain"
	"usersapi/internal/core/port"
)

var userColumns = []string{"id", "name", "email", "created_at", "updated_at"}

type rowScanner interface {
	Scan(dest ...any) error
}

// UserRepository stores users in any database/sql backend whose placeholders
// are question marks (MySQL, SQLite).
type UserRepository struct {
	db *sqldb.DB
}

func NewUserRepository(db *sqldb.DB) port.UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt)

	return user, err
}

func (ur *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := ur.db.QueryContext(ctx, query, args...)

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
	return ur.getOne(ctx, ur.db, sq.Eq{"id": id})
}

func (ur *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	return ur.getOne(ctx, ur.db, sq.Eq{"email": domain.NormalizeEmail(email)})
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (ur *UserRepository) getOne(ctx context.Context, q querier, where sq.Eq) (domain.User, bool, error) {
	query, args, err := ur.db.QueryBuilder.Select(userColumns...).
		From("users").
		Where(where).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.User{}, false, err
	}

	user, err := scanUser(q.QueryRowContext(ctx, query, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, false, nil
	}

	if err != nil {
		return domain.User{}, false, fmt.Errorf("get user: %w", err)
	}

	return user, true, nil
}

func (ur *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	user.Normalize()

	tx, err := ur.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.User{}, fmt.Errorf("begin create user: %w", err)
	}

	defer tx.Rollback()

	query, args, err := ur.db.QueryBuilder.Insert("users").
		Columns("name", "email").
		Values(user.Name, user.Email).
		ToSql()

	if err != nil {
		return domain.User{}, err
	}

	result, err := tx.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.User{}, ur.writeError("create user", err)
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	created, found, err := ur.getOne(ctx, tx, sq.Eq{"id": id})

	if err != nil {
		return domain.User{}, err
	}

	if !found {
		return domain.User{}, fmt.Errorf("create user: row %d not readable after insert", id)
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, ur.writeError("commit create user", err)
	}

	return created, nil
}

func (ur *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, bool, error) {
	user.Normalize()

	tx, err := ur.db.BeginTx(ctx, nil)

	if err != nil {
		return domain.User{}, false, fmt.Errorf("begin update user: %w", err)
	}

	defer tx.Rollback()

	query, args, err := ur.db.QueryBuilder.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": user.ID}).
		ToSql()

	if err != nil {
		return domain.User{}, false, err
	}

	result, err := tx.ExecContext(ctx, query, args...)

	if err != nil {
		return domain.User{}, false, ur.writeError("update user", err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return domain.User{}, false, fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return domain.User{}, false, nil
	}

	updated, found, err := ur.getOne(ctx, tx, sq.Eq{"id": user.ID})

	if err != nil || !found {
		return domain.User{}, found, err
	}

	if err := tx.Commit(); err != nil {
		return domain.User{}, false, ur.writeError("commit update user", err)
	}

	return updated, true, nil
}

func (ur *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := ur.db.QueryBuilder.Delete("users").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return false, err
	}

	result, err := ur.db.ExecContext(ctx, query, args...)

	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	affected, err := result.RowsAffected()

	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}

	return affected > 0, nil
}

func (ur *UserRepository) Count(ctx context.Context) (int64, error) {
	query, args, err := ur.db.QueryBuilder.Select("COUNT(*)").From("users").ToSql()

	if err != nil {
		return 0, err
	}

	var count int64

	if err := ur.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

func (ur *UserRepository) writeError(op string, err error) error {
	if ur.db.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, errors.Join(domain.ErrEmailConflict, err))
	}

	return fmt.Errorf("%s: %w", op, err)
}
