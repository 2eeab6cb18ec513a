package services

import (
	"context"
	"errors"
	"fmt"

	"ferremas/internal/domain"
	applog "ferremas/internal/log"
	"ferremas/internal/remote"
	"ferremas/internal/repos"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrBadTransition = errors.New("illegal status transition")
)

// CheckoutService converts a non-empty cart into a durable order. Placement
// is local-first: the transaction never waits on the network, and remote
// mirroring happens afterwards on the mirror pool, best-effort.
type CheckoutService struct {
	Carts  *repos.CartRepo
	Orders *repos.OrderRepo
	Remote *remote.Client // nil in local-only mode
	Mirror *Mirror
}

func NewCheckoutService(carts *repos.CartRepo, orders *repos.OrderRepo, rc *remote.Client, m *Mirror) *CheckoutService {
	return &CheckoutService{Carts: carts, Orders: orders, Remote: rc, Mirror: m}
}

type CheckoutParams struct {
	CustomerRut     string
	CustomerName    string
	ShippingAddress string
	PaymentMethod   domain.PaymentMethod
	Courier         domain.Courier
	Subtotal        float64
	Discount        float64
	ShippingCost    float64
	Total           float64
}

// FinalizeCheckout snapshots the cart, persists the order header plus its
// full line-item set and clears the cart, all as one transaction. On any
// storage failure nothing is applied and the cart is left intact for retry.
func (s *CheckoutService) FinalizeCheckout(p CheckoutParams) (string, error) {
	items, err := s.Carts.Items()
	if err != nil {
		return "", fmt.Errorf("read cart: %w", err)
	}
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	order, err := domain.NewOrder(p.CustomerRut, p.CustomerName, p.ShippingAddress,
		p.PaymentMethod, p.Courier, p.Subtotal, p.Discount, p.ShippingCost, p.Total)
	if err != nil {
		return "", err
	}
	order.ID = uuid.NewString()

	// Freeze current catalog values onto the line items.
	lines := make([]domain.OrderLineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.OrderLineItem{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price,
			Qty:       it.Qty,
		})
	}

	if err := s.Orders.CreateWithItems(order, lines); err != nil {
		return "", err
	}

	s.mirrorCreate(domain.OrderWithItems{Order: order, Items: lines})
	return order.ID, nil
}

func (s *CheckoutService) mirrorCreate(o domain.OrderWithItems) {
	if s.Remote == nil || s.Mirror == nil {
		return
	}
	rc := s.Remote
	s.Mirror.Enqueue("mirror.order.create", func() error {
		if err := rc.CreateOrder(o); err != nil {
			return fmt.Errorf("order %s (%s): %w", o.ID, remote.Classify(err), err)
		}
		applog.Info(nil, "mirror.order.create.ok", map[string]any{"order_id": o.ID})
		return nil
	})
}

// UpdateOrderStatus moves an order along the status machine. Transitions are
// forward-only; terminal states accept nothing. The write is guarded on the
// status read here, so a concurrent transition that lands first turns this
// one into ErrBadTransition instead of a double apply.
func (s *CheckoutService) UpdateOrderStatus(orderID string, newStatus domain.OrderStatus) error {
	current, err := s.Orders.Status(orderID)
	if err != nil {
		return err
	}
	if !current.CanTransition(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, current, newStatus)
	}
	if err := s.Orders.UpdateStatus(orderID, current, newStatus); err != nil {
		if errors.Is(err, repos.ErrStatusChanged) {
			return fmt.Errorf("%w: %s -> %s", ErrBadTransition, current, newStatus)
		}
		return err
	}

	if s.Remote != nil && s.Mirror != nil {
		rc := s.Remote
		s.Mirror.Enqueue("mirror.order.status", func() error {
			if err := rc.UpdateOrderStatus(orderID, newStatus); err != nil {
				return fmt.Errorf("order %s (%s): %w", orderID, remote.Classify(err), err)
			}
			return nil
		})
	}
	return nil
}

func (s *CheckoutService) Order(orderID string) (domain.OrderWithItems, error) {
	return s.Orders.Get(orderID)
}

// ListOrders returns the one-shot ordered list; empty rut is the admin view.
func (s *CheckoutService) ListOrders(customerRut string) ([]domain.OrderWithItems, error) {
	return s.Orders.List(customerRut)
}

// WatchOrders is the live subscription, newest first, re-emitted on every
// committed order write for the lifetime of ctx.
func (s *CheckoutService) WatchOrders(ctx context.Context, customerRut string) <-chan []domain.OrderWithItems {
	return s.Orders.Watch(ctx, customerRut)
}
