package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/DarmokhvalViktor/test-task-cs/internal/application"
	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/entity"
	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/repository"
	"github.com/DarmokhvalViktor/test-task-cs/internal/domain/rules"
)

// memoryRepo is an in-memory UserRepository double. It preserves insertion
// order and counts mutating and query calls so tests can assert that failed
// operations never touch the store.
type memoryRepo struct {
	mu     sync.Mutex
	users  map[int64]*entity.User
	order  []int64
	nextID int64

	rangeQueries int
	creates      int
	updates      int
	deletes      int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]*entity.User), nextID: 1}
}

func (m *memoryRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if u, ok := m.users[id]; ok && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryRepo) FindByBirthDateBetween(_ context.Context, from, to time.Time) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rangeQueries++
	out := make([]*entity.User, 0)
	for _, id := range m.order {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		if !u.BirthDate.Before(from) && !u.BirthDate.After(to) {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	u.ID = m.nextID
	m.nextID++
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	m.users[u.ID] = &cp
	m.order = append(m.order, u.ID)
	return nil
}

func (m *memoryRepo) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if _, ok := m.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memoryRepo) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memoryRepo) InTx(_ context.Context, fn func(repository.UserRepository) error) error {
	return fn(m)
}

var _ repository.UserRepository = (*memoryRepo)(nil)

// today is the fixed "current date" for every test: 2024-06-01.
var today = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memoryRepo) *userapp.Service {
	svc := userapp.NewService(repo, 18, nil, nil, nil, "")
	svc.Now = func() time.Time { return today }
	return svc
}

func validDTO() userapp.UserDTO {
	return userapp.UserDTO{
		FirstName:   "John",
		LastName:    "Doe",
		BirthDate:   userapp.NewDate(1999, time.December, 31),
		Email:       "john@example.com",
		Address:     "",
		PhoneNumber: "",
	}
}

func mustCreate(t *testing.T, svc *userapp.Service, dto userapp.UserDTO) userapp.UserDTO {
	t.Helper()
	created, err := svc.CreateUser(context.Background(), dto)
	require.NoError(t, err)
	return *created
}

func Test_CreateUser(t *testing.T) {
	t.Run("assigns_fresh_id_and_applies_defaults", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		created := mustCreate(t, svc, validDTO())

		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "John", created.FirstName)
		assert.Equal(t, userapp.DefaultAddress, created.Address)
		assert.Equal(t, userapp.DefaultPhoneNumber, created.PhoneNumber)

		stored, err := repo.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", stored.Email)
		assert.Equal(t, userapp.DefaultAddress, stored.Address)
	})

	t.Run("keeps_supplied_optional_fields", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		dto := validDTO()
		dto.Address = "221B Baker Street"
		dto.PhoneNumber = "123-456-7890"
		created := mustCreate(t, svc, dto)

		assert.Equal(t, "221B Baker Street", created.Address)
		assert.Equal(t, "123-456-7890", created.PhoneNumber)
	})

	t.Run("rejects_underage_user_without_store_write", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		dto := validDTO()
		dto.BirthDate = userapp.NewDate(2010, time.January, 1)
		created, err := svc.CreateUser(context.Background(), dto)

		require.Error(t, err)
		assert.Nil(t, created)
		var tooYoung *userapp.TooYoungError
		require.ErrorAs(t, err, &tooYoung)
		assert.Equal(t, "User must be older than 18 to register!", err.Error())
		assert.Zero(t, repo.creates)
	})

	t.Run("age_boundary_counts_whole_years", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		// 18th birthday is tomorrow relative to the fixed date.
		dto := validDTO()
		dto.BirthDate = userapp.NewDate(2006, time.June, 2)
		_, err := svc.CreateUser(context.Background(), dto)
		require.Error(t, err)

		// 18th birthday is exactly the fixed date.
		dto.BirthDate = userapp.NewDate(2006, time.June, 1)
		_, err = svc.CreateUser(context.Background(), dto)
		assert.NoError(t, err)
	})

	t.Run("rejects_duplicate_email", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		mustCreate(t, svc, validDTO())

		dto := validDTO()
		dto.FirstName = "Johnny"
		created, err := svc.CreateUser(context.Background(), dto)

		require.Error(t, err)
		assert.Nil(t, created)
		var taken *userapp.EmailTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, "Email john@example.com already taken!", err.Error())
		assert.Equal(t, 1, repo.creates)
	})
}

func Test_FindUsersByBirthDateRange(t *testing.T) {
	seed := func(t *testing.T) (*memoryRepo, *userapp.Service) {
		t.Helper()
		repo := newMemoryRepo()
		svc := newTestService(repo)
		for _, u := range []struct {
			email string
			birth userapp.Date
		}{
			{"a@example.com", userapp.NewDate(1990, time.January, 15)},
			{"b@example.com", userapp.NewDate(1995, time.July, 1)},
			{"c@example.com", userapp.NewDate(2000, time.December, 31)},
		} {
			dto := validDTO()
			dto.Email = u.email
			dto.BirthDate = u.birth
			mustCreate(t, svc, dto)
		}
		return repo, svc
	}

	t.Run("returns_inclusive_range_in_insertion_order", func(t *testing.T) {
		_, svc := seed(t)

		got, err := svc.FindUsersByBirthDateRange(context.Background(),
			time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2000, time.December, 31, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "a@example.com", got[0].Email)
		assert.Equal(t, "b@example.com", got[1].Email)
		assert.Equal(t, "c@example.com", got[2].Email)
	})

	t.Run("filters_outside_bounds", func(t *testing.T) {
		_, svc := seed(t)

		got, err := svc.FindUsersByBirthDateRange(context.Background(),
			time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(1999, time.December, 31, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "b@example.com", got[0].Email)
	})

	t.Run("inverted_range_fails_before_any_store_query", func(t *testing.T) {
		repo, svc := seed(t)
		repo.rangeQueries = 0

		_, err := svc.FindUsersByBirthDateRange(context.Background(),
			time.Date(2010, time.December, 31, 0, 0, 0, 0, time.UTC),
			time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))

		require.ErrorIs(t, err, rules.ErrRangeInverted)
		assert.Zero(t, repo.rangeQueries)
	})

	t.Run("missing_bound_fails", func(t *testing.T) {
		repo, svc := seed(t)
		repo.rangeQueries = 0

		_, err := svc.FindUsersByBirthDateRange(context.Background(),
			time.Time{}, time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))

		require.ErrorIs(t, err, rules.ErrRangeBoundsMissing)
		assert.Zero(t, repo.rangeQueries)
	})
}

func Test_UpdateUser(t *testing.T) {
	t.Run("replaces_all_mutable_fields", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		dto := userapp.UserDTO{
			FirstName:   "Jane",
			LastName:    "Smith",
			BirthDate:   userapp.NewDate(1985, time.November, 2),
			Email:       "jane@example.com",
			Address:     "elsewhere",
			PhoneNumber: "999-999-9999",
		}
		updated, err := svc.UpdateUser(context.Background(), dto, created.ID)

		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "Jane", updated.FirstName)
		assert.Equal(t, "jane@example.com", updated.Email)
		assert.Equal(t, "elsewhere", updated.Address)
	})

	t.Run("nonexistent_id_fails_without_store_write", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		_, err := svc.UpdateUser(context.Background(), validDTO(), 99)

		var notFound *userapp.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "User with ID 99 wasn't found", err.Error())
		assert.Zero(t, repo.updates)
	})

	t.Run("email_owned_by_other_user_conflicts", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		first := mustCreate(t, svc, validDTO())
		other := validDTO()
		other.Email = "jane@example.com"
		mustCreate(t, svc, other)

		dto := validDTO()
		dto.Email = "jane@example.com"
		_, err := svc.UpdateUser(context.Background(), dto, first.ID)

		var taken *userapp.EmailTakenError
		require.ErrorAs(t, err, &taken)
		assert.Zero(t, repo.updates)
	})

	t.Run("updating_to_own_email_is_allowed", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		dto := validDTO()
		dto.FirstName = "Johnny"
		updated, err := svc.UpdateUser(context.Background(), dto, created.ID)

		require.NoError(t, err)
		assert.Equal(t, "Johnny", updated.FirstName)
		assert.Equal(t, "john@example.com", updated.Email)
	})

	t.Run("full_update_does_not_recheck_age", func(t *testing.T) {
		// Deliberate policy: only patches re-validate a changed birth date.
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		dto := validDTO()
		dto.BirthDate = userapp.NewDate(2010, time.January, 1)
		updated, err := svc.UpdateUser(context.Background(), dto, created.ID)

		require.NoError(t, err)
		assert.Equal(t, userapp.NewDate(2010, time.January, 1).Time, updated.BirthDate.Time)
	})
}

func Test_PatchUser(t *testing.T) {
	strPtr := func(s string) *string { return &s }
	datePtr := func(d userapp.Date) *userapp.Date { return &d }

	t.Run("merges_only_supplied_fields", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		patched, err := svc.PatchUser(context.Background(),
			userapp.PartialUserDTO{FirstName: strPtr("Johnny")}, created.ID)

		require.NoError(t, err)
		assert.Equal(t, "Johnny", patched.FirstName)
		assert.Equal(t, "Doe", patched.LastName)
		assert.Equal(t, "john@example.com", patched.Email)
		assert.Equal(t, created.BirthDate.Time, patched.BirthDate.Time)
		assert.Equal(t, userapp.DefaultAddress, patched.Address)
	})

	t.Run("supplied_birth_date_is_revalidated", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		_, err := svc.PatchUser(context.Background(), userapp.PartialUserDTO{
			FirstName: strPtr("Johnny"),
			BirthDate: datePtr(userapp.NewDate(2010, time.January, 1)),
		}, created.ID)

		var tooYoung *userapp.TooYoungError
		require.ErrorAs(t, err, &tooYoung)
		assert.Equal(t, "User must be older than 18 to use this site!", err.Error())

		// Nothing was written: the record is fully unchanged.
		stored, ferr := repo.FindByID(context.Background(), created.ID)
		require.NoError(t, ferr)
		assert.Equal(t, "John", stored.FirstName)
		assert.Equal(t, created.BirthDate.Time, stored.BirthDate)
		assert.Zero(t, repo.updates)
	})

	t.Run("valid_birth_date_change_is_applied", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		patched, err := svc.PatchUser(context.Background(), userapp.PartialUserDTO{
			BirthDate: datePtr(userapp.NewDate(1990, time.March, 3)),
		}, created.ID)

		require.NoError(t, err)
		assert.Equal(t, userapp.NewDate(1990, time.March, 3).Time, patched.BirthDate.Time)
	})

	t.Run("email_owned_by_other_user_conflicts_and_leaves_record_untouched", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		first := mustCreate(t, svc, validDTO())
		other := validDTO()
		other.Email = "jane@example.com"
		mustCreate(t, svc, other)

		_, err := svc.PatchUser(context.Background(),
			userapp.PartialUserDTO{Email: strPtr("jane@example.com")}, first.ID)

		var taken *userapp.EmailTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, "Email jane@example.com already taken!", err.Error())

		stored, ferr := repo.FindByID(context.Background(), first.ID)
		require.NoError(t, ferr)
		assert.Equal(t, "john@example.com", stored.Email)
		assert.Zero(t, repo.updates)
	})

	t.Run("patching_own_email_is_allowed", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		patched, err := svc.PatchUser(context.Background(),
			userapp.PartialUserDTO{Email: strPtr("john@example.com")}, created.ID)

		require.NoError(t, err)
		assert.Equal(t, "john@example.com", patched.Email)
	})

	t.Run("nonexistent_id_fails", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		_, err := svc.PatchUser(context.Background(), userapp.PartialUserDTO{}, 42)

		var notFound *userapp.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "User with ID 42 wasn't found", err.Error())
	})
}

func Test_DeleteUser(t *testing.T) {
	t.Run("removes_user_and_confirms", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)
		created := mustCreate(t, svc, validDTO())

		msg, err := svc.DeleteUser(context.Background(), created.ID)

		require.NoError(t, err)
		assert.Equal(t, "User with ID 1 was deleted", msg)
		_, ferr := repo.FindByID(context.Background(), created.ID)
		assert.ErrorIs(t, ferr, repository.ErrNotFound)
	})

	t.Run("nonexistent_id_fails_without_delete_call", func(t *testing.T) {
		repo := newMemoryRepo()
		svc := newTestService(repo)

		_, err := svc.DeleteUser(context.Background(), 7)

		var notFound *userapp.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "User with ID 7 wasn't found", err.Error())
		assert.Zero(t, repo.deletes)
	})
}
