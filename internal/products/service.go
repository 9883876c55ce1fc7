package products

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service defines the behavior needed by the products controller.
type Service interface {
	List(ctx context.Context) ([]ItemView, error)
	GetBySlug(ctx context.Context, slug string) (*ItemView, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service with the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]ItemView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	views := make([]ItemView, 0, len(items))
	for i := range items {
		views = append(views, FromModel(&items[i]))
	}
	return views, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ItemView, error) {
	item, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	view := FromModel(item)
	return &view, nil
}
