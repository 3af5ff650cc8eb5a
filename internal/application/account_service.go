package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/logging"
)

// AccountService manages application logins.
type AccountService struct {
	accounts domain.AccountRepository
	logger   *logging.Logger
	clock    domain.Clock
}

// NewAccountService wires the service.
func NewAccountService(accounts domain.AccountRepository, logger *logging.Logger, clock domain.Clock) *AccountService {
	return &AccountService{
		accounts: accounts,
		logger:   logger.WithComponent("account-service"),
		clock:    clock,
	}
}

// EnsureDefaultAdmin guarantees the master admin account exists. Idempotent;
// called once at startup.
func (s *AccountService) EnsureDefaultAdmin(ctx context.Context, password string) error {
	existing, err := s.accounts.FindByUsername(ctx, domain.DefaultAdminUsername)
	if err != nil {
		return fmt.Errorf("look up default admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	admin, err := domain.NewUserAccount(domain.DefaultAdminUsername, "Administrador Principal", password, domain.ProfileAdmin, s.clock.Now())
	if err != nil {
		return fmt.Errorf("build default admin: %w", err)
	}
	if err := s.accounts.Save(ctx, admin); err != nil {
		return fmt.Errorf("save default admin: %w", err)
	}

	s.logger.Info("Default admin account created", "username", admin.Username)
	return nil
}

// Login verifies credentials and returns the account.
func (s *AccountService) Login(ctx context.Context, cmd LoginCommand) (*UserDTO, error) {
	username := strings.TrimSpace(strings.ToLower(cmd.Username))
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account == nil || !account.CheckPassword(cmd.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	dto := toUserDTO(*account)
	return &dto, nil
}

// ListUsers returns all accounts.
func (s *AccountService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	out := make([]UserDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toUserDTO(a))
	}
	return out, nil
}

// CreateUser registers a new account.
func (s *AccountService) CreateUser(ctx context.Context, cmd CreateUserCommand) (*UserDTO, error) {
	username := strings.TrimSpace(strings.ToLower(cmd.Username))
	existing, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	account, err := domain.NewUserAccount(cmd.Username, cmd.Name, cmd.Password, cmd.Profile, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	s.logger.Event(ctx, "user.created", map[string]any{
		"username": account.Username,
		"profile":  string(account.Profile),
	})

	dto := toUserDTO(*account)
	return &dto, nil
}

// UpdateUser edits an existing account. An empty password keeps the current
// one; the master admin always keeps the ADMIN profile.
func (s *AccountService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*UserDTO, error) {
	account, err := s.findByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cmd.Name) != "" {
		account.Name = strings.TrimSpace(cmd.Name)
	}
	if cmd.Profile != "" {
		if !domain.ValidProfile(cmd.Profile) {
			return nil, domain.ErrInvalidProfile
		}
		if account.IsMaster() && cmd.Profile != domain.ProfileAdmin {
			return nil, domain.ErrMasterAccount
		}
		account.Profile = cmd.Profile
	}
	if cmd.Password != "" {
		if err := account.SetPassword(cmd.Password); err != nil {
			return nil, err
		}
	}
	account.UpdatedAt = s.clock.Now()

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("save account: %w", err)
	}

	dto := toUserDTO(*account)
	return &dto, nil
}

// DeleteUser removes an account. The master admin cannot be removed.
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	account, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if account.IsMaster() {
		return domain.ErrMasterAccount
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Event(ctx, "user.deleted", map[string]any{"username": account.Username})
	return nil
}

func (s *AccountService) findByID(ctx context.Context, id string) (*domain.UserAccount, error) {
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i], nil
		}
	}
	return nil, domain.ErrAccountNotFound
}
