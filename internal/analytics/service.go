// Package analytics computes the admin dashboard summary straight from the
// orders tables.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
)

const (
	defaultWindow   = 30 * 24 * time.Hour
	maxWindow       = 366 * 24 * time.Hour
	topProductLimit = 5
)

// TopProduct is one row of the best-seller table.
type TopProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Revenue   int64     `json:"revenue"`
}

// Summary is the dashboard payload. Revenue counts completed orders only.
type Summary struct {
	From              time.Time                   `json:"from"`
	To                time.Time                   `json:"to"`
	Revenue           int64                       `json:"revenue"`
	TotalOrders       int64                       `json:"total_orders"`
	OrdersByStatus    map[enums.OrderStatus]int64 `json:"orders_by_status"`
	AverageOrderValue int64                       `json:"average_order_value"`
	NewCustomers      int64                       `json:"new_customers"`
	TopProducts       []TopProduct                `json:"top_products"`
}

type customerCounter interface {
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type Service interface {
	Summary(ctx context.Context, from, to *time.Time) (*Summary, error)
}

type service struct {
	repo      *Repository
	customers customerCounter
	now       func() time.Time
}

func NewService(repo *Repository, customers customerCounter, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository is required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer counter is required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, customers: customers, now: now}, nil
}

// Summary reports on [from, to). Missing bounds default to the last 30 days.
func (s *service) Summary(ctx context.Context, from, to *time.Time) (*Summary, error) {
	end := s.now().UTC()
	if to != nil {
		end = to.UTC()
	}
	start := end.Add(-defaultWindow)
	if from != nil {
		start = from.UTC()
	}
	if !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if end.Sub(start) > maxWindow {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range may not exceed 366 days")
	}

	out := &Summary{From: start, To: end, OrdersByStatus: map[enums.OrderStatus]int64{}}
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending, enums.OrderStatusConfirmed, enums.OrderStatusShipping,
		enums.OrderStatusCompleted, enums.OrderStatusCancelled,
	} {
		out.OrdersByStatus[status] = 0
	}

	counts, err := s.repo.CountByStatus(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
	}
	var completed int64
	for _, row := range counts {
		out.OrdersByStatus[row.Status] = row.Count
		out.TotalOrders += row.Count
		if row.Status == enums.OrderStatusCompleted {
			out.Revenue = row.Amount
			completed = row.Count
		}
	}
	if completed > 0 {
		out.AverageOrderValue = out.Revenue / completed
	}

	out.TopProducts, err = s.repo.TopProducts(ctx, start, end, topProductLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: top products")
	}
	if out.TopProducts == nil {
		out.TopProducts = []TopProduct{}
	}

	out.NewCustomers, err = s.customers.CountCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count customers")
	}
	return out, nil
}
