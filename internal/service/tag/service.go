package tag

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tinoosan/finledger/internal/errs"
	"github.com/tinoosan/finledger/internal/ledger"
)

type Repo interface {
	ListTags(ctx context.Context, userID uuid.UUID) ([]ledger.Tag, error)
	GetTag(ctx context.Context, userID, tagID uuid.UUID) (ledger.Tag, error)
}

type Writer interface {
	CreateTag(ctx context.Context, t ledger.Tag) (ledger.Tag, error)
	UpdateTag(ctx context.Context, t ledger.Tag) (ledger.Tag, error)
	// DeleteTag detaches the tag from transactions and budgets before removing it.
	DeleteTag(ctx context.Context, userID, tagID uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, t ledger.Tag) (ledger.Tag, error)
	List(ctx context.Context, userID uuid.UUID) ([]ledger.Tag, error)
	Get(ctx context.Context, userID, tagID uuid.UUID) (ledger.Tag, error)
	Update(ctx context.Context, t ledger.Tag) (ledger.Tag, error)
	Delete(ctx context.Context, userID, tagID uuid.UUID) error
}

type service struct {
	repo   Repo
	writer Writer
}

func New(repo Repo, writer Writer) Service { return &service{repo: repo, writer: writer} }

func (s *service) validate(ctx context.Context, t ledger.Tag) error {
	if t.UserID == uuid.Nil {
		return errs.Invalid("user_id", "required")
	}
	if t.Name == "" {
		return errs.Unprocessable("name", "required")
	}
	if utf8.RuneCountInString(t.Name) > 100 {
		return errs.Unprocessable("name", "must be at most 100 characters")
	}
	existing, err := s.repo.ListTags(ctx, t.UserID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != t.ID && strings.EqualFold(other.Name, t.Name) {
			return errs.ErrConflict
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, t ledger.Tag) (ledger.Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	if err := s.validate(ctx, t); err != nil {
		return ledger.Tag{}, err
	}
	t.ID = uuid.New()
	return s.writer.CreateTag(ctx, t)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]ledger.Tag, error) {
	if userID == uuid.Nil {
		return nil, errs.Invalid("user_id", "required")
	}
	return s.repo.ListTags(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, tagID uuid.UUID) (ledger.Tag, error) {
	if userID == uuid.Nil {
		return ledger.Tag{}, errs.Invalid("user_id", "required")
	}
	return s.repo.GetTag(ctx, userID, tagID)
}

func (s *service) Update(ctx context.Context, t ledger.Tag) (ledger.Tag, error) {
	if t.UserID == uuid.Nil || t.ID == uuid.Nil {
		return ledger.Tag{}, errs.Invalid("id", "required")
	}
	if _, err := s.repo.GetTag(ctx, t.UserID, t.ID); err != nil {
		return ledger.Tag{}, err
	}
	t.Name = strings.TrimSpace(t.Name)
	if err := s.validate(ctx, t); err != nil {
		return ledger.Tag{}, err
	}
	return s.writer.UpdateTag(ctx, t)
}

func (s *service) Delete(ctx context.Context, userID, tagID uuid.UUID) error {
	if userID == uuid.Nil || tagID == uuid.Nil {
		return errs.Invalid("id", "required")
	}
	return s.writer.DeleteTag(ctx, userID, tagID)
}
