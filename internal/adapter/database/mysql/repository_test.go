package mysql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"usersapi/internal/adapter/database/mysql"
	"usersapi/internal/adapter/database/sqldb"
	"usersapi/internal/adapter/database/sqldb/repository"
	"usersapi/internal/core/domain"
	"usersapi/internal/core/port"
	"usersapi/pkg/config"
)

var userColumns = []string{"id", "name", "email", "created_at", "updated_at"}

type MySQLUserRepositoryTestSuite struct {
	suite.Suite
	mock sqlmock.Sqlmock
	repo port.UserRepository
}

func (s *MySQLUserRepositoryTestSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	require.NoError(s.T(), err)

	s.mock = mock
	s.repo = repository.NewUserRepository(sqldb.New(db, config.DriverMySQL, mysql.IsUniqueViolation))
}

func (s *MySQLUserRepositoryTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func TestMySQLUserRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MySQLUserRepositoryTestSuite))
}

func (s *MySQLUserRepositoryTestSuite) TestCreate_NormalizesAndReadsBack() {
	now := time.Now().UTC().Truncate(time.Second)

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name,email) VALUES (?,?)")).
		WithArgs("Ana", "ana@example.com").
		WillReturnResult(sqlmock.NewResult(7, 1))
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, created_at, updated_at FROM users WHERE id = ? LIMIT 1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(7), "Ana", "ana@example.com", now, now))
	s.mock.ExpectCommit()

	user, err := s.repo.Create(context.Background(), domain.User{Name: "  Ana ", Email: " ANA@Example.com "})

	s.Require().NoError(err)
	s.Equal(int64(7), user.ID)
	s.Equal("ana@example.com", user.Email)
	s.Equal(now, user.CreatedAt)
}

func (s *MySQLUserRepositoryTestSuite) TestCreate_DuplicateEntryIsConflict() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	s.mock.ExpectRollback()

	_, err := s.repo.Create(context.Background(), domain.User{Name: "Ana", Email: "ana@example.com"})

	s.ErrorIs(err, domain.ErrEmailConflict)
}

func (s *MySQLUserRepositoryTestSuite) TestCreate_OtherErrorIsNotConflict() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("connection reset by peer"))
	s.mock.ExpectRollback()

	_, err := s.repo.Create(context.Background(), domain.User{Name: "Ana", Email: "ana@example.com"})

	s.Error(err)
	s.NotErrorIs(err, domain.ErrEmailConflict)
}

func (s *MySQLUserRepositoryTestSuite) TestUpdate_MatchedRowWithSameValues() {
	now := time.Now().UTC().Truncate(time.Second)

	s.mock.ExpectBegin()
	s.mock.ExpectExec("UPDATE users SET name = \\?, email = \\?, updated_at = CURRENT_TIMESTAMP WHERE id = \\?").
		WithArgs("Ana", "ana@example.com", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\?").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(3), "Ana", "ana@example.com", now, now))
	s.mock.ExpectCommit()

	user, found, err := s.repo.Update(context.Background(), domain.User{ID: 3, Name: "Ana", Email: "ana@example.com"})

	s.Require().NoError(err)
	s.True(found)
	s.Equal(int64(3), user.ID)
}

func (s *MySQLUserRepositoryTestSuite) TestUpdate_MissingRow() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectRollback()

	_, found, err := s.repo.Update(context.Background(), domain.User{ID: 99, Name: "Ana", Email: "ana@example.com"})

	s.NoError(err)
	s.False(found)
}

func (s *MySQLUserRepositoryTestSuite) TestUpdate_DuplicateEntryIsConflict() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec("UPDATE users").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	s.mock.ExpectRollback()

	_, _, err := s.repo.Update(context.Background(), domain.User{ID: 1, Name: "Ana", Email: "taken@example.com"})

	s.ErrorIs(err, domain.ErrEmailConflict)
}

func (s *MySQLUserRepositoryTestSuite) TestDelete() {
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := s.repo.Delete(context.Background(), 5)
	s.NoError(err)
	s.True(deleted)

	deleted, err = s.repo.Delete(context.Background(), 5)
	s.NoError(err)
	s.False(deleted)
}

func (s *MySQLUserRepositoryTestSuite) TestList_NewestFirstQuery() {
	now := time.Now().UTC()

	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, created_at, updated_at FROM users ORDER BY created_at DESC, id DESC")).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(2), "Bea", "bea@example.com", now, now).
			AddRow(int64(1), "Ana", "ana@example.com", now, now))

	users, err := s.repo.List(context.Background())

	s.Require().NoError(err)
	s.Len(users, 2)
	s.Equal(int64(2), users[0].ID)
}

func (s *MySQLUserRepositoryTestSuite) TestGetByEmail_NotFound() {
	s.mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\?").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, found, err := s.repo.GetByEmail(context.Background(), " Ghost@Example.com")

	s.NoError(err)
	s.False(found)
}
