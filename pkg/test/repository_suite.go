package test

import (
	"context"
	"errors"
	"sync"

	"usersapi/internal/core/domain"
	"usersapi/internal/core/port"
	"usersapi/pkg/test/factory"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

// UserRepositorySuite checks the behaviour every port.UserRepository
// implementation must share. NewRepo is called before each test and must
// return a repository over an empty store.
type UserRepositorySuite struct {
	suite.Suite
	NewRepo func() port.UserRepository

	repo port.UserRepository
	ctx  context.Context
}

func (s *UserRepositorySuite) SetupTest() {
	RegisterTestingT(s.T())
	s.ctx = context.Background()
	s.repo = s.NewRepo()
}

func (s *UserRepositorySuite) create(name, email string) domain.User {
	user, err := s.repo.Create(s.ctx, domain.User{Name: name, Email: email})
	s.Require().NoError(err)
	return user
}

func (s *UserRepositorySuite) TestList_Empty() {
	users, err := s.repo.List(s.ctx)

	Expect(err).To(BeNil())
	Expect(users).ToNot(BeNil())
	Expect(users).To(BeEmpty())
}

func (s *UserRepositorySuite) TestCreate_AssignsIDAndTimestamps() {
	user := s.create("Ana", "ana@example.com")

	Expect(user.ID).To(BeNumerically(">", 0))
	Expect(user.Name).To(Equal("Ana"))
	Expect(user.Email).To(Equal("ana@example.com"))
	Expect(user.CreatedAt.IsZero()).To(BeFalse())
	Expect(user.UpdatedAt.IsZero()).To(BeFalse())
}

func (s *UserRepositorySuite) TestCreate_NormalizesNameAndEmail() {
	user := s.create("  Ana  ", "  ANA@Example.COM ")

	Expect(user.Name).To(Equal("Ana"))
	Expect(user.Email).To(Equal("ana@example.com"))
}

func (s *UserRepositorySuite) TestCreate_DuplicateEmailIsConflict() {
	s.create("Ana", "ana@example.com")

	_, err := s.repo.Create(s.ctx, domain.User{Name: "Other", Email: " Ana@Example.com"})

	Expect(errors.Is(err, domain.ErrEmailConflict)).To(BeTrue())

	count, err := s.repo.Count(s.ctx)
	Expect(err).To(BeNil())
	Expect(count).To(Equal(int64(1)))
}

func (s *UserRepositorySuite) TestCreate_ConcurrentSameEmailOnlyOneWins() {
	const attempts = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)

	for i := 0; i < attempts; i++ {
		wg.Go(func() {
			_, err := s.repo.Create(s.ctx, domain.User{Name: "Racer", Email: "race@example.com"})

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrEmailConflict):
				conflicts++
			}
		})
	}

	wg.Wait()

	Expect(created).To(Equal(1))
	Expect(conflicts).To(Equal(attempts - 1))
}

func (s *UserRepositorySuite) TestGetByID() {
	user := s.create("Ana", "ana@example.com")

	found, ok, err := s.repo.GetByID(s.ctx, user.ID)

	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
	Expect(found.ID).To(Equal(user.ID))
	Expect(found.Email).To(Equal("ana@example.com"))

	_, ok, err = s.repo.GetByID(s.ctx, user.ID+1000)

	Expect(err).To(BeNil())
	Expect(ok).To(BeFalse())
}

func (s *UserRepositorySuite) TestGetByEmail_NormalizesLookup() {
	user := s.create("Ana", "ana@example.com")

	found, ok, err := s.repo.GetByEmail(s.ctx, " ANA@example.com ")

	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
	Expect(found.ID).To(Equal(user.ID))

	_, ok, err = s.repo.GetByEmail(s.ctx, "ghost@example.com")

	Expect(err).To(BeNil())
	Expect(ok).To(BeFalse())
}

func (s *UserRepositorySuite) TestList_NewestFirst() {
	first := s.create("First", "first@example.com")
	second := s.create("Second", "second@example.com")
	third := s.create("Third", "third@example.com")

	users, err := s.repo.List(s.ctx)

	Expect(err).To(BeNil())
	Expect(users).To(HaveLen(3))
	Expect([]int64{users[0].ID, users[1].ID, users[2].ID}).To(Equal([]int64{third.ID, second.ID, first.ID}))
}

func (s *UserRepositorySuite) TestUpdate() {
	user := s.create("Ana", "ana@example.com")

	updated, ok, err := s.repo.Update(s.ctx, domain.User{ID: user.ID, Name: " Ana Maria ", Email: "ANA.MARIA@example.com"})

	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
	Expect(updated.ID).To(Equal(user.ID))
	Expect(updated.Name).To(Equal("Ana Maria"))
	Expect(updated.Email).To(Equal("ana.maria@example.com"))
	Expect(updated.CreatedAt.Equal(user.CreatedAt)).To(BeTrue())
	Expect(updated.UpdatedAt.Before(user.UpdatedAt)).To(BeFalse())
}

func (s *UserRepositorySuite) TestUpdate_OwnEmailSucceeds() {
	user := s.create("Ana", "ana@example.com")

	updated, ok, err := s.repo.Update(s.ctx, domain.User{ID: user.ID, Name: "Ana", Email: "ana@example.com"})

	Expect(err).To(BeNil())
	Expect(ok).To(BeTrue())
	Expect(updated.Email).To(Equal("ana@example.com"))
}

func (s *UserRepositorySuite) TestUpdate_EmailOfAnotherUserIsConflict() {
	s.create("Ana", "ana@example.com")
	bea := s.create("Bea", "bea@example.com")

	_, _, err := s.repo.Update(s.ctx, domain.User{ID: bea.ID, Name: "Bea", Email: "ana@example.com"})

	Expect(errors.Is(err, domain.ErrEmailConflict)).To(BeTrue())

	unchanged, _, err := s.repo.GetByID(s.ctx, bea.ID)
	Expect(err).To(BeNil())
	Expect(unchanged.Email).To(Equal("bea@example.com"))
}

func (s *UserRepositorySuite) TestUpdate_Missing() {
	_, ok, err := s.repo.Update(s.ctx, domain.User{ID: 4242, Name: "Ghost", Email: "ghost@example.com"})

	Expect(err).To(BeNil())
	Expect(ok).To(BeFalse())
}

func (s *UserRepositorySuite) TestDelete() {
	user := s.create("Ana", "ana@example.com")

	deleted, err := s.repo.Delete(s.ctx, user.ID)

	Expect(err).To(BeNil())
	Expect(deleted).To(BeTrue())

	_, ok, err := s.repo.GetByID(s.ctx, user.ID)
	Expect(err).To(BeNil())
	Expect(ok).To(BeFalse())

	deleted, err = s.repo.Delete(s.ctx, user.ID)

	Expect(err).To(BeNil())
	Expect(deleted).To(BeFalse())
}

func (s *UserRepositorySuite) TestDelete_FreesEmail() {
	user := s.create("Ana", "ana@example.com")

	_, err := s.repo.Delete(s.ctx, user.ID)
	Expect(err).To(BeNil())

	again := s.create("Ana", "ana@example.com")
	Expect(again.ID).ToNot(Equal(user.ID))
}

func (s *UserRepositorySuite) TestCount() {
	for i := 0; i < 3; i++ {
		user := factory.NewUser[domain.User]()
		_, err := s.repo.Create(s.ctx, user)
		Expect(err).To(BeNil())
	}

	count, err := s.repo.Count(s.ctx)

	Expect(err).To(BeNil())
	Expect(count).To(Equal(int64(3)))
}
