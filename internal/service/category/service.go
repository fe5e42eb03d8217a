// Package category manages income/expense classifications. A category's type
// is what gives every transaction in it its sign.
package category

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
	ListCategories(ctx context.Context, userID uuid.UUID) ([]ledger.Category, error)
	GetCategory(ctx context.Context, userID, categoryID uuid.UUID) (ledger.Category, error)
}

type Writer interface {
	CreateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	UpdateCategory(ctx context.Context, c ledger.Category) (ledger.Category, error)
	// DeleteCategory returns errs.ErrInUse while transactions reference the category.
	DeleteCategory(ctx context.Context, userID, categoryID uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, c ledger.Category) (ledger.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]ledger.Category, error)
	Get(ctx context.Context, userID, categoryID uuid.UUID) (ledger.Category, error)
	Update(ctx context.Context, c ledger.Category) (ledger.Category, error)
	Delete(ctx context.Context, userID, categoryID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func validate(c ledger.Category) error {
	if c.UserID == uuid.Nil {
		return errs.Invalid("user_id", "required")
	}
	if c.Name == "" {
		return errs.Unprocessable("name", "required")
	}
	if utf8.RuneCountInString(c.Name) > 100 {
		return errs.Unprocessable("name", "must be at most 100 characters")
	}
	if !c.Type.Valid() {
		return errs.Unprocessable("category_type", "must be INCOME or EXPENSE")
	}
	return nil
}

func normalize(c ledger.Category) ledger.Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Type = ledger.CategoryType(strings.ToUpper(strings.TrimSpace(string(c.Type))))
	return c
}

func (s *service) Create(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	c = normalize(c)
	if err := validate(c); err != nil {
		return ledger.Category{}, err
	}
	if err := s.ensureUnique(ctx, c); err != nil {
		return ledger.Category{}, err
	}
	now := time.Now().UTC()
	c.ID = uuid.New()
	c.CreatedAt, c.UpdatedAt = now, now
	return s.writer.CreateCategory(ctx, c)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ledger.Category, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	return s.repo.ListCategories(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, categoryID uuid.UUID) (ledger.Category, error) {
	if userID == uuid.Nil {
		return ledger.Category{}, errs.Invalid("user_id", "required")
	}
	return s.repo.GetCategory(ctx, userID, categoryID)
}

// Update changes name, type and description. Changing the type flips the sign
// of every transaction already filed under the category.
func (s *service) Update(ctx context.Context, c ledger.Category) (ledger.Category, error) {
	if c.UserID == uuid.Nil || c.ID == uuid.Nil {
		return ledger.Category{}, errs.Invalid("id", "required")
	}
	current, err := s.repo.GetCategory(ctx, c.UserID, c.ID)
	if err != nil {
		return ledger.Category{}, err
	}
	c = normalize(c)
	if err := validate(c); err != nil {
		return ledger.Category{}, err
	}
	if err := s.ensureUnique(ctx, c); err != nil {
		return ledger.Category{}, err
	}
	current.Name, current.Type, current.Description = c.Name, c.Type, c.Description
	current.UpdatedAt = time.Now().UTC()
	return s.writer.UpdateCategory(ctx, current)
}

func (s *service) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	if userID == uuid.Nil || categoryID == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteCategory(ctx, userID, categoryID)
}

// ensureUnique enforces (user, lower(name), type).
func (s *service) ensureUnique(ctx context.Context, c ledger.Category) error {
	existing, err := s.repo.ListCategories(ctx, c.UserID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != c.ID && other.Type == c.Type && strings.EqualFold(other.Name, c.Name) {
			return errs.ErrConflict
		}
	}
	return nil
}
