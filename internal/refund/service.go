package refund

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	orderNotFoundMessage   = "This order does not exist."
	requestReceivedMessage = "Your request was received."
)

// Request is the typed refund form. The contact email is recorded as
// submitted; it is not matched against the order owner.
type Request struct {
	RefCode string `json:"ref_code" validate:"required"`
	Message string `json:"message" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

// Result confirms the intake.
type Result struct {
	Message string `json:"message"`
}

// Service defines the behavior needed by the refund controller.
type Service interface {
	Request(ctx context.Context, req Request) (*Result, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	orders  *orders.Repository
	refunds *Repository
	tx      txRunner
}

// ServiceParams bundles the dependencies required to build a refund service.
type ServiceParams struct {
	OrderRepo  *orders.Repository
	RefundRepo *Repository
	TxRunner   txRunner
}

// NewService constructs a refund service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.RefundRepo == nil {
		return nil, fmt.Errorf("refund repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		orders:  params.OrderRepo,
		refunds: params.RefundRepo,
		tx:      params.TxRunner,
	}, nil
}

func (s *service) Request(ctx context.Context, req Request) (*Result, error) {
	order, err := s.orders.FindByRefCode(ctx, req.RefCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order by ref code")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, orderNotFoundMessage)
	}

	record := &models.Refund{
		ID:      uuid.New(),
		OrderID: order.ID,
		Reason:  req.Message,
		Email:   req.Email,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.refunds.WithTx(tx).Create(ctx, record); err != nil {
			return err
		}
		return s.orders.WithTx(tx).SetRefundRequested(ctx, order.ID)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record refund request")
	}

	return &Result{Message: requestReceivedMessage}, nil
}
