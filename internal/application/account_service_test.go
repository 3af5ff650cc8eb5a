package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaco-industrial/projection-service/internal/domain"
)

func newAccountFixture() (*AccountService, *fakeAccountRepo) {
	repo := &fakeAccountRepo{}
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)}
	return NewAccountService(repo, testLogger(), clock), repo
}

func TestEnsureDefaultAdmin(t *testing.T) {
	service, repo := newAccountFixture()
	ctx := context.Background()

	require.NoError(t, service.EnsureDefaultAdmin(ctx, "admin123"))
	require.Len(t, repo.accounts, 1)
	assert.Equal(t, domain.DefaultAdminUsername, repo.accounts[0].Username)
	assert.Equal(t, domain.ProfileAdmin, repo.accounts[0].Profile)

	// Second run must not create a duplicate or reset the password.
	repo.accounts[0].Name = "Renamed"
	require.NoError(t, service.EnsureDefaultAdmin(ctx, "admin123"))
	require.Len(t, repo.accounts, 1)
	assert.Equal(t, "Renamed", repo.accounts[0].Name)
}

func TestLogin(t *testing.T) {
	service, _ := newAccountFixture()
	ctx := context.Background()
	require.NoError(t, service.EnsureDefaultAdmin(ctx, "admin123"))

	t.Run("valid credentials", func(t *testing.T) {
		user, err := service.Login(ctx, LoginCommand{Username: "Admin", Password: "admin123"})
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Username)
		assert.Equal(t, string(domain.ProfileAdmin), user.Profile)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, LoginCommand{Username: "admin", Password: "nope12"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.Login(ctx, LoginCommand{Username: "ghost", Password: "admin123"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestCreateUser(t *testing.T) {
	service, repo := newAccountFixture()
	ctx := context.Background()

	user, err := service.CreateUser(ctx, CreateUserCommand{
		Username: "maria",
		Name:     "Maria Sousa",
		Password: "segredo1",
		Profile:  domain.ProfilePlanning,
	})
	require.NoError(t, err)
	assert.Equal(t, "maria", user.Username)
	require.Len(t, repo.accounts, 1)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := service.CreateUser(ctx, CreateUserCommand{
			Username: "MARIA",
			Name:     "Outra Maria",
			Password: "segredo2",
			Profile:  domain.ProfileReadOnly,
		})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})

	t.Run("invalid profile rejected", func(t *testing.T) {
		_, err := service.CreateUser(ctx, CreateUserCommand{
			Username: "joao",
			Name:     "João",
			Password: "segredo1",
			Profile:  domain.Profile("GERENTE"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidProfile)
	})
}

func TestUpdateUser(t *testing.T) {
	service, repo := newAccountFixture()
	ctx := context.Background()
	require.NoError(t, service.EnsureDefaultAdmin(ctx, "admin123"))

	created, err := service.CreateUser(ctx, CreateUserCommand{
		Username: "maria",
		Name:     "Maria Sousa",
		Password: "segredo1",
		Profile:  domain.ProfileReadOnly,
	})
	require.NoError(t, err)

	t.Run("promote and rename", func(t *testing.T) {
		updated, err := service.UpdateUser(ctx, UpdateUserCommand{
			ID:      created.ID,
			Name:    "Maria S. Lima",
			Profile: domain.ProfilePlanning,
		})
		require.NoError(t, err)
		assert.Equal(t, "Maria S. Lima", updated.Name)
		assert.Equal(t, string(domain.ProfilePlanning), updated.Profile)
	})

	t.Run("password change takes effect", func(t *testing.T) {
		_, err := service.UpdateUser(ctx, UpdateUserCommand{ID: created.ID, Password: "novasenha"})
		require.NoError(t, err)
		_, err = service.Login(ctx, LoginCommand{Username: "maria", Password: "novasenha"})
		assert.NoError(t, err)
	})

	t.Run("master admin keeps ADMIN profile", func(t *testing.T) {
		var adminID string
		for _, a := range repo.accounts {
			if a.Username == domain.DefaultAdminUsername {
				adminID = a.ID
			}
		}
		_, err := service.UpdateUser(ctx, UpdateUserCommand{ID: adminID, Profile: domain.ProfileReadOnly})
		assert.ErrorIs(t, err, domain.ErrMasterAccount)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.UpdateUser(ctx, UpdateUserCommand{ID: "missing", Name: "X"})
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	service, repo := newAccountFixture()
	ctx := context.Background()
	require.NoError(t, service.EnsureDefaultAdmin(ctx, "admin123"))

	created, err := service.CreateUser(ctx, CreateUserCommand{
		Username: "maria",
		Name:     "Maria Sousa",
		Password: "segredo1",
		Profile:  domain.ProfileReadOnly,
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteUser(ctx, created.ID))
	assert.Len(t, repo.accounts, 1)

	t.Run("master admin protected", func(t *testing.T) {
		err := service.DeleteUser(ctx, repo.accounts[0].ID)
		assert.ErrorIs(t, err, domain.ErrMasterAccount)
	})
}
