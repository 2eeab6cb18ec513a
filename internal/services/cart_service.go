package services

import (
	"context"
	"errors"

	"ferremas/internal/domain"
	"ferremas/internal/repos"
)

var ErrOutOfStock = errors.New("product out of stock")

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

func (s *CartService) Add(productID string, qty int) error {
	if qty < 1 {
		qty = 1
	}
	p, err := s.Prods.Get(productID)
	if err != nil {
		return err
	}
	if !p.Available() {
		return ErrOutOfStock
	}
	return s.Carts.Upsert(productID, qty)
}

func (s *CartService) Increment(productID string) error {
	return s.Carts.Increment(productID)
}

// Decrement floors at quantity 1; it never removes the item.
func (s *CartService) Decrement(productID string) error {
	return s.Carts.Decrement(productID)
}

func (s *CartService) Remove(productID string) error {
	return s.Carts.Remove(productID)
}

func (s *CartService) Clear() error {
	return s.Carts.Clear()
}

type CartView struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func (s *CartService) View() (CartView, error) {
	items, err := s.Carts.Items()
	if err != nil {
		return CartView{}, err
	}
	total := 0.0
	for _, it := range items {
		total += it.Subtotal()
	}
	return CartView{Items: items, Total: total}, nil
}

// Watch re-emits the cart view on every committed cart write.
func (s *CartService) Watch(ctx context.Context) <-chan CartView {
	out := make(chan CartView, 1)
	go func() {
		defer close(out)
		for items := range s.Carts.Watch(ctx) {
			total := 0.0
			for _, it := range items {
				total += it.Subtotal()
			}
			cv := CartView{Items: items, Total: total}
			select {
			case out <- cv:
			default:
				select {
				case <-out:
				default:
				}
				out <- cv
			}
		}
	}()
	return out
}
