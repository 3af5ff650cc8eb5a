package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrNameRequired       = errors.New("display name is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrInvalidProfile     = errors.New("invalid access profile")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMasterAccount      = errors.New("the master admin account cannot be removed")
)

// Profile is an account's access level.
type Profile string

const (
	ProfileAdmin    Profile = "ADMIN"    // full access, user management
	ProfilePlanning Profile = "PCP"      // production planning, can edit routes and imports
	ProfileReadOnly Profile = "CONSULTA" // view only
)

// ValidProfile reports whether p is one of the known profiles.
func ValidProfile(p Profile) bool {
	switch p {
	case ProfileAdmin, ProfilePlanning, ProfileReadOnly:
		return true
	}
	return false
}

// DefaultAdminUsername is the bootstrap account guaranteed to exist.
const DefaultAdminUsername = "admin"

const minPasswordLen = 6

// UserAccount is an application login. Passwords are stored as bcrypt hashes
// only.
type UserAccount struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	Profile      Profile   `bson:"profile" json:"profile"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewUserAccount validates the fields, hashes the password and returns the
// account ready to persist.
func NewUserAccount(username, name, password string, profile Profile, now time.Time) (*UserAccount, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if !ValidProfile(profile) {
		return nil, ErrInvalidProfile
	}

	account := &UserAccount{
		ID:        uuid.NewString(),
		Username:  username,
		Name:      strings.TrimSpace(name),
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := account.SetPassword(password); err != nil {
		return nil, err
	}
	return account, nil
}

// SetPassword replaces the stored hash.
func (a *UserAccount) SetPassword(password string) error {
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
func (a *UserAccount) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// IsMaster reports whether this is the bootstrap admin account.
func (a *UserAccount) IsMaster() bool {
	return a.Username == DefaultAdminUsername
}
