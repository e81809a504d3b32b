// Package users implements the credential store: user records, password
// verification, and the login-timestamp bookkeeping around it.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo       Repository
	bcryptCost int
	// dummyHash is compared against when the username does not exist, so a
	// missing user costs the same as a wrong password.
	dummyHash []byte
}

type RegisterParams struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

func NewService(repo Repository, cfg *config.Config) (*Service, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("no such user"), cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %v", err)
	}

	return &Service{
		repo:       repo,
		bcryptCost: cfg.BcryptCost,
		dummyHash:  dummy,
	}, nil
}

// Register hashes the plaintext password with the configured work factor and
// persists the record. The returned User carries no password material.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	user := &User{
		Username:     p.Username,
		PasswordHash: string(hash),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Phone:        p.Phone,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	out := *created
	out.PasswordHash = ""
	return &out, nil
}

// Authenticate reports whether the username/password pair is valid. A missing
// user is folded into a false result rather than an error, and a dummy bcrypt
// comparison keeps its cost level with the wrong-password path, so the two
// cases are indistinguishable to the caller except for the boolean itself.
func (s *Service) Authenticate(ctx context.Context, username, password string) (bool, error) {
	hash, err := s.repo.GetPasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return false, nil
		}
		return false, err
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// UpdateLoginTimestamp sets last_login_at to now. It is only called after a
// successful Authenticate; shared.ErrorNotFound here means the user vanished
// in between.
func (s *Service) UpdateLoginTimestamp(ctx context.Context, username string) error {
	return s.repo.UpdateLoginTimestamp(ctx, username)
}

// Get returns the full profile, never including the password hash.
func (s *Service) Get(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// All returns {username, first_name, last_name} for every user, ordered by
// last name.
func (s *Service) All(ctx context.Context) ([]Summary, error) {
	return s.repo.All(ctx)
}
