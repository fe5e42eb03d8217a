// Package transaction validates and records money movements. Every reference
// (account, category, tags) must belong to the transaction's user; the amount
// is always positive and the category decides the direction.
package transaction

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

// Repo defines read operations needed by the service.
type Repo interface {
	GetAccount(ctx context.Context, userID, accountID uuid.UUID) (ledger.Account, error)
	GetCategory(ctx context.Context, userID, categoryID uuid.UUID) (ledger.Category, error)
	TagsByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]ledger.Tag, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) ([]ledger.Transaction, error)
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (ledger.Transaction, error)
}

// Writer persists a transaction together with its tag links atomically.
type Writer interface {
	CreateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	UpdateTransaction(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error
}

type Service interface {
	Validate(ctx context.Context, tx ledger.Transaction) error
	Create(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) ([]ledger.Transaction, error)
	Get(ctx context.Context, userID, txID uuid.UUID) (ledger.Transaction, error)
	Update(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error)
	Delete(ctx context.Context, userID, txID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
	now    func() time.Time
}

func New(repo Repo, writer Writer) Service {
	return &service{repo: repo, writer: writer, now: time.Now}
}

func (s *service) Validate(ctx context.Context, tx ledger.Transaction) error {
	_, err := s.check(ctx, tx)
	return err
}

// check validates tx and returns the category type it resolves to.
func (s *service) check(ctx context.Context, tx ledger.Transaction) (ledger.CategoryType, error) {
	if tx.UserID == uuid.Nil {
		return "", errs.Invalid("user_id", "required")
	}
	if err := ledger.CheckTransactionAmount("amount", tx.Amount); err != nil {
		return "", err
	}
	if tx.Date.IsZero() {
		return "", errs.Unprocessable("date", "required")
	}
	if tx.Date.After(s.now()) {
		return "", errs.Unprocessable("date", "cannot be in the future")
	}
	if utf8.RuneCountInString(tx.Description) > 1000 {
		return "", errs.Unprocessable("description", "must be at most 1000 characters")
	}
	if tx.AccountID == uuid.Nil {
		return "", errs.Unprocessable("account_id", "required")
	}
	if _, err := s.repo.GetAccount(ctx, tx.UserID, tx.AccountID); err != nil {
		if errs.IsNotFound(err) {
			return "", errs.Unprocessable("account_id", "account not found for user")
		}
		return "", err
	}
	if tx.CategoryID == uuid.Nil {
		return "", errs.Unprocessable("category_id", "required")
	}
	cat, err := s.repo.GetCategory(ctx, tx.UserID, tx.CategoryID)
	if err != nil {
		if errs.IsNotFound(err) {
			return "", errs.Unprocessable("category_id", "category not found for user")
		}
		return "", err
	}
	tags := unique(tx.TagIDs)
	if len(tags) > 0 {
		found, err := s.repo.TagsByIDs(ctx, tx.UserID, tags)
		if err != nil {
			return "", err
		}
		if len(found) != len(tags) {
			return "", errs.Unprocessable("tag_ids", "unknown tags for user")
		}
	}
	return cat.Type, nil
}

func (s *service) Create(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	typ, err := s.check(ctx, tx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	now := s.now().UTC()
	return s.writer.CreateTransaction(ctx, ledger.Transaction{
		ID:           uuid.New(),
		UserID:       tx.UserID,
		AccountID:    tx.AccountID,
		CategoryID:   tx.CategoryID,
		TagIDs:       unique(tx.TagIDs),
		Amount:       ledger.Cents(tx.Amount),
		Date:         tx.Date.UTC(),
		Description:  tx.Description,
		CategoryType: typ,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *service) List(ctx context.Context, userID uuid.UUID, f ledger.TransactionFilter) ([]ledger.Transaction, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, errs.ErrInvalidRange
	}
	return s.repo.ListTransactions(ctx, userID, f)
}

func (s *service) Get(ctx context.Context, userID, txID uuid.UUID) (ledger.Transaction, error) {
	if userID == uuid.Nil {
		return ledger.Transaction{}, errs.Invalid("user_id", "required")
	}
	return s.repo.GetTransaction(ctx, userID, txID)
}

// Update replaces the editable fields of an existing transaction and revalidates it as a whole.
func (s *service) Update(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.UserID == uuid.Nil || tx.ID == uuid.Nil {
		return ledger.Transaction{}, errs.Invalid("id", "required")
	}
	current, err := s.repo.GetTransaction(ctx, tx.UserID, tx.ID)
	if err != nil {
		return ledger.Transaction{}, err
	}
	typ, err := s.check(ctx, tx)
	if err != nil {
		return ledger.Transaction{}, err
	}
	current.AccountID = tx.AccountID
	current.CategoryID = tx.CategoryID
	current.TagIDs = unique(tx.TagIDs)
	current.Amount = ledger.Cents(tx.Amount)
	current.Date = tx.Date.UTC()
	current.Description = tx.Description
	current.CategoryType = typ
	current.UpdatedAt = s.now().UTC()
	return s.writer.UpdateTransaction(ctx, current)
}

func (s *service) Delete(ctx context.Context, userID, txID uuid.UUID) error {
	if userID == uuid.Nil || txID == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteTransaction(ctx, userID, txID)
}

// unique collapses duplicate ids preserving first-seen order.
func unique(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{}
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
