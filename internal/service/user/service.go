// Package user registers ledger owners. Passwords are stored as bcrypt hashes only.
package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

type Repo interface {
	GetUser(ctx context.Context, id uuid.UUID) (ledger.User, error)
	UserByEmail(ctx context.Context, email string) (ledger.User, error)
}

type Writer interface {
	CreateUser(ctx context.Context, u ledger.User) (ledger.User, error)
	// DeleteUser removes the user and everything it owns.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Service interface {
	Register(ctx context.Context, email, password string) (ledger.User, error)
	Get(ctx context.Context, id uuid.UUID) (ledger.User, error)
	Authenticate(ctx context.Context, email, password string) (ledger.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	cost   int
}

func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, cost: bcrypt.DefaultCost}
}

// NormalizeEmail trims and lower-cases an address; uniqueness is checked on this form.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *service) Register(ctx context.Context, email, password string) (ledger.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return ledger.User{}, errs.Unprocessable("email", "required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ledger.User{}, errs.Unprocessable("email", "invalid address")
	}
	if len(password) < MinPasswordLength {
		return ledger.User{}, errs.Unprocessable("password", "must be at least 8 characters")
	}
	if _, err := s.repo.UserByEmail(ctx, email); err == nil {
		return ledger.User{}, errs.ErrConflict
	} else if !errs.IsNotFound(err) {
		return ledger.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return ledger.User{}, errs.Unprocessable("password", err.Error())
	}
	u := ledger.User{ID: uuid.New(), Email: email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	return s.writer.CreateUser(ctx, u)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (ledger.User, error) {
	if id == uuid.Nil {
		return ledger.User{}, errs.Invalid("user_id", "required")
	}
	return s.repo.GetUser(ctx, id)
}

// Authenticate returns the user when password matches; any mismatch is ErrForbidden.
func (s *service) Authenticate(ctx context.Context, email, password string) (ledger.User, error) {
	u, err := s.repo.UserByEmail(ctx, NormalizeEmail(email))
	if errs.IsNotFound(err) {
		return ledger.User{}, errs.ErrForbidden
	}
	if err != nil {
		return ledger.User{}, err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return ledger.User{}, errs.ErrForbidden
	}
	return u, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.Invalid("user_id", "required")
	}
	return s.writer.DeleteUser(ctx, id)
}
