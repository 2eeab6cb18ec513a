package repos

import (
	"context"

	"ferremas/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct {
	db    *sqlx.DB
	notes *Notify
}

func NewCartRepo(db *sqlx.DB, n *Notify) *CartRepo { return &CartRepo{db: db, notes: n} }

// Upsert adds qty units of a product, accumulating onto an existing row.
func (r *CartRepo) Upsert(productID string, qty int) error {
	_, err := r.db.Exec(`
	  INSERT INTO cart_items(product_id,qty,created_at)
	  VALUES(?,?,CURRENT_TIMESTAMP)
	  ON CONFLICT(product_id) DO UPDATE
	  SET qty = cart_items.qty + excluded.qty, updated_at = CURRENT_TIMESTAMP
	`, productID, qty)
	if err != nil {
		return err
	}
	r.notes.Cart.broadcast()
	return nil
}

func (r *CartRepo) Increment(productID string) error {
	_, err := r.db.Exec(`
	  UPDATE cart_items SET qty = qty + 1, updated_at = CURRENT_TIMESTAMP
	  WHERE product_id = ?
	`, productID)
	if err != nil {
		return err
	}
	r.notes.Cart.broadcast()
	return nil
}

// Decrement lowers quantity by one, flooring at 1. A decrement at qty=1 is a
// no-op; removal is a separate explicit action.
func (r *CartRepo) Decrement(productID string) error {
	_, err := r.db.Exec(`
	  UPDATE cart_items SET qty = qty - 1, updated_at = CURRENT_TIMESTAMP
	  WHERE product_id = ? AND qty > 1
	`, productID)
	if err != nil {
		return err
	}
	r.notes.Cart.broadcast()
	return nil
}

func (r *CartRepo) Remove(productID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE product_id = ?`, productID)
	if err != nil {
		return err
	}
	r.notes.Cart.broadcast()
	return nil
}

func (r *CartRepo) Clear() error {
	_, err := r.db.Exec(`DELETE FROM cart_items`)
	if err != nil {
		return err
	}
	r.notes.Cart.broadcast()
	return nil
}

// Items is a one-shot snapshot joined against the live product rows, so
// every item carries the current catalog name/price/image.
func (r *CartRepo) Items() ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := r.db.Select(&out, `
	  SELECT ci.product_id, p.name, p.price, COALESCE(p.image,'') AS image, ci.qty
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  ORDER BY ci.created_at, ci.product_id
	`)
	return out, err
}

// Watch emits the cart snapshot after every committed cart write.
func (r *CartRepo) Watch(ctx context.Context) <-chan []domain.CartItem {
	out := make(chan []domain.CartItem, 1)
	sig, cancel := r.notes.Cart.subscribe()
	go func() {
		defer close(out)
		defer cancel()
		push := func() {
			items, err := r.Items()
			if err != nil {
				return
			}
			select {
			case out <- items:
			default:
				select {
				case <-out:
				default:
				}
				out <- items
			}
		}
		push()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				push()
			}
		}
	}()
	return out
}
