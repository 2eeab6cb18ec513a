package repos

import (
	"context"
	"database/sql"
	"errors"

	"ferremas/internal/domain"

	"github.com/jmoiron/sqlx"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type ProductRepo struct {
	db    *sqlx.DB
	notes *Notify
}

func NewProductRepo(db *sqlx.DB, n *Notify) *ProductRepo { return &ProductRepo{db: db, notes: n} }

const productCols = `id, name, COALESCE(description,'') AS description, price,
  COALESCE(image,'') AS image, COALESCE(category,'') AS category, stock,
  created_at, COALESCE(updated_at,'') AS updated_at`

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  ORDER BY created_at DESC, id
	`)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *ProductRepo) Search(q, category string) ([]domain.Product, error) {
	where := `1=1`
	args := []any{}
	if q != "" {
		where += ` AND (LOWER(name) LIKE ? OR LOWER(description) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}
	out := []domain.Product{}
	err := r.db.Select(&out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY created_at DESC, id
	`, args...)
	return out, err
}

func (r *ProductRepo) Insert(p domain.Product) error {
	_, err := r.db.Exec(`
	  INSERT INTO products(id,name,description,price,image,category,stock,created_at)
	  VALUES(?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Description, p.Price, p.Image, p.Category, p.Stock)
	if err != nil {
		return err
	}
	r.notes.Products.broadcast()
	return nil
}

func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
	  UPDATE products
	  SET name=?, description=?, price=?, image=?, category=?, stock=?, updated_at=CURRENT_TIMESTAMP
	  WHERE id=?
	`, p.Name, p.Description, p.Price, p.Image, p.Category, p.Stock, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	r.notes.Products.broadcast()
	return nil
}

// Delete removes a product together with any cart rows that weakly reference
// it, so the cart never holds dangling entries.
func (r *ProductRepo) Delete(id string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE product_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.notes.Products.broadcast()
	r.notes.Cart.broadcast()
	return nil
}

// DeleteAll is the admin bulk-clear. The cart empties with it.
func (r *ProductRepo) DeleteAll() error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM cart_items`); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM products`); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	r.notes.Products.broadcast()
	r.notes.Cart.broadcast()
	return nil
}

// decrementStock subtracts "by" units if enough stock exists. The checkout
// transaction passes its tx here so the decrement commits or rolls back with
// the order insert.
func decrementStock(e sqlx.Execer, id string, by int) error {
	res, err := e.Exec(`
	  UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
	  WHERE id = ? AND stock >= ?
	`, by, id, by)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// DecrementStock is the standalone admin-side variant.
func (r *ProductRepo) DecrementStock(id string, by int) error {
	if err := decrementStock(r.db, id, by); err != nil {
		return err
	}
	r.notes.Products.broadcast()
	return nil
}

// Watch returns a live product-list query. The current list is emitted
// immediately, then again after every committed write, until ctx ends.
// Delivery is most-recent-value: a slow consumer skips intermediate states.
func (r *ProductRepo) Watch(ctx context.Context) <-chan []domain.Product {
	out := make(chan []domain.Product, 1)
	sig, cancel := r.notes.Products.subscribe()
	go func() {
		defer close(out)
		defer cancel()
		push := func() {
			list, err := r.List()
			if err != nil {
				return
			}
			select {
			case out <- list:
			default:
				// replace the stale pending value
				select {
				case <-out:
				default:
				}
				out <- list
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
