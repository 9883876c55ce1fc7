package orders

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

const noActiveOrderMessage = "You do not have an active order"

// Service defines the behavior needed by the order-summary controller.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID) (*SummaryView, error)
}

type service struct {
	repo *Repository
}

// NewService constructs an orders service with the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID) (*SummaryView, error) {
	order, err := s.repo.FindOpenOrderWithItems(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, noActiveOrderMessage)
	}
	view := SummaryFromModel(order)
	return &view, nil
}
