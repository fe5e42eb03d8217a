// Package account implements wallet rules: a user-owned name that is unique per
// user ignoring case, editable description, and deletes that are refused while
// transactions still reference the account.
package account

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

type Repo interface {
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error)
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (ledger.Account, error)
}

type Writer interface {
	CreateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	UpdateAccount(ctx context.Context, a ledger.Account) (ledger.Account, error)
	// DeleteAccount returns errs.ErrInUse while transactions reference the account.
	DeleteAccount(ctx context.Context, userID, accountID uuid.UUID) error
}

type Service interface {
	ValidateCreate(a ledger.Account) error
	Create(ctx context.Context, a ledger.Account) (ledger.Account, error)
	List(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error)
	Get(ctx context.Context, userID, accountID uuid.UUID) (ledger.Account, error)
	Update(ctx context.Context, a ledger.Account) (ledger.Account, error)
	Delete(ctx context.Context, userID, accountID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) ValidateCreate(a ledger.Account) error {
	if a.UserID == uuid.Nil {
		return errs.Invalid("user_id", "required")
	}
	if strings.TrimSpace(a.Name) == "" {
		return errs.Unprocessable("name", "required")
	}
	if utf8.RuneCountInString(a.Name) > 100 {
		return errs.Unprocessable("name", "must be at most 100 characters")
	}
	return nil
}

func (s *service) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	if err := s.ensureUniqueName(ctx, a); err != nil {
		return ledger.Account{}, err
	}
	now := time.Now().UTC()
	return s.writer.CreateAccount(ctx, ledger.Account{
		ID:          uuid.New(),
		UserID:      a.UserID,
		Name:        a.Name,
		Description: a.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ledger.Account, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	return s.repo.ListAccounts(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, accountID uuid.UUID) (ledger.Account, error) {
	if userID == uuid.Nil {
		return ledger.Account{}, errs.Invalid("user_id", "required")
	}
	return s.repo.GetAccount(ctx, userID, accountID)
}

// Update applies name/description changes to an existing account.
func (s *service) Update(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	if a.UserID == uuid.Nil || a.ID == uuid.Nil {
		return ledger.Account{}, errs.Invalid("id", "required")
	}
	current, err := s.repo.GetAccount(ctx, a.UserID, a.ID)
	if err != nil {
		return ledger.Account{}, err
	}
	a.Name = strings.TrimSpace(a.Name)
	if err := s.ValidateCreate(a); err != nil {
		return ledger.Account{}, err
	}
	if !strings.EqualFold(current.Name, a.Name) {
		if err := s.ensureUniqueName(ctx, a); err != nil {
			return ledger.Account{}, err
		}
	}
	current.Name = a.Name
	current.Description = a.Description
	current.UpdatedAt = time.Now().UTC()
	return s.writer.UpdateAccount(ctx, current)
}

func (s *service) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	if userID == uuid.Nil || accountID == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteAccount(ctx, userID, accountID)
}

func (s *service) ensureUniqueName(ctx context.Context, a ledger.Account) error {
	existing, err := s.repo.ListAccounts(ctx, a.UserID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != a.ID && strings.EqualFold(other.Name, a.Name) {
			return errs.ErrConflict
		}
	}
	return nil
}
