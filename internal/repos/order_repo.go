package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ferremas/internal/domain"

	"github.com/jmoiron/sqlx"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrStatusChanged = errors.New("order status changed concurrently")
)

type OrderRepo struct {
	db    *sqlx.DB
	notes *Notify
}

func NewOrderRepo(db *sqlx.DB, n *Notify) *OrderRepo { return &OrderRepo{db: db, notes: n} }

// CreateWithItems persists the order header, its full line-item set, the
// per-line stock decrement and the cart clear as one transaction. Either the
// order exists with every line, stock reduced and the cart empty, or nothing
// changed. A line exceeding the available stock aborts the whole transaction
// with ErrInsufficientStock.
func (r *OrderRepo) CreateWithItems(o domain.Order, items []domain.OrderLineItem) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, customer_rut, customer_name, shipping_address, payment_method, courier,
	     status, subtotal, discount, shipping_cost, total, created_at)
	  VALUES (?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
	`, o.ID, o.CustomerRut, o.CustomerName, o.ShippingAddress, o.PaymentMethod, o.Courier,
		o.Status, o.Subtotal, o.Discount, o.ShippingCost, o.Total); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, li := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_line_items(order_id, product_id, name, image, price, qty)
		  VALUES(?,?,?,?,?,?)
		`, li.OrderID, li.ProductID, li.Name, li.Image, li.Price, li.Qty); err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
		if err := decrementStock(tx, li.ProductID, li.Qty); err != nil {
			return fmt.Errorf("stock for %s: %w", li.ProductID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout tx: %w", err)
	}
	r.notes.Orders.broadcast()
	r.notes.Cart.broadcast()
	r.notes.Products.broadcast()
	return nil
}

func (r *OrderRepo) Get(id string) (domain.OrderWithItems, error) {
	var o domain.Order
	if err := r.db.Get(&o, `
	  SELECT id, customer_rut, customer_name, shipping_address, payment_method, courier,
	         status, subtotal, discount, shipping_cost, total, created_at
	  FROM orders WHERE id = ?
	`, id); err != nil {
		if err == sql.ErrNoRows {
			return domain.OrderWithItems{}, ErrOrderNotFound
		}
		return domain.OrderWithItems{}, err
	}
	items, err := r.ItemsFor(id)
	if err != nil {
		return domain.OrderWithItems{}, err
	}
	return domain.OrderWithItems{Order: o, Items: items}, nil
}

func (r *OrderRepo) ItemsFor(orderID string) ([]domain.OrderLineItem, error) {
	items := []domain.OrderLineItem{}
	err := r.db.Select(&items, `
	  SELECT order_id, product_id, name, COALESCE(image,'') AS image, price, qty
	  FROM order_line_items
	  WHERE order_id = ?
	  ORDER BY name
	`, orderID)
	return items, err
}

// List returns orders with their line items, newest first. An empty rut is
// the administrative view over every order.
func (r *OrderRepo) List(customerRut string) ([]domain.OrderWithItems, error) {
	headers := []domain.Order{}
	if customerRut == "" {
		if err := r.db.Select(&headers, `
		  SELECT id, customer_rut, customer_name, shipping_address, payment_method, courier,
		         status, subtotal, discount, shipping_cost, total, created_at
		  FROM orders
		  ORDER BY datetime(created_at) DESC, id
		`); err != nil {
			return nil, err
		}
	} else {
		if err := r.db.Select(&headers, `
		  SELECT id, customer_rut, customer_name, shipping_address, payment_method, courier,
		         status, subtotal, discount, shipping_cost, total, created_at
		  FROM orders
		  WHERE customer_rut = ?
		  ORDER BY datetime(created_at) DESC, id
		`, customerRut); err != nil {
			return nil, err
		}
	}
	if len(headers) == 0 {
		return []domain.OrderWithItems{}, nil
	}

	ids := make([]string, 0, len(headers))
	for _, o := range headers {
		ids = append(ids, o.ID)
	}
	query, args, err := sqlx.In(`
	  SELECT order_id, product_id, name, COALESCE(image,'') AS image, price, qty
	  FROM order_line_items WHERE order_id IN (?)
	`, ids)
	if err != nil {
		return nil, err
	}
	lines := []domain.OrderLineItem{}
	if err := r.db.Select(&lines, query, args...); err != nil {
		return nil, err
	}
	byOrder := make(map[string][]domain.OrderLineItem, len(headers))
	for _, li := range lines {
		byOrder[li.OrderID] = append(byOrder[li.OrderID], li)
	}

	out := make([]domain.OrderWithItems, 0, len(headers))
	for _, o := range headers {
		out = append(out, domain.OrderWithItems{Order: o, Items: byOrder[o.ID]})
	}
	return out, nil
}

func (r *OrderRepo) Status(id string) (domain.OrderStatus, error) {
	var s string
	if err := r.db.Get(&s, `SELECT status FROM orders WHERE id = ?`, id); err != nil {
		if err == sql.ErrNoRows {
			return "", ErrOrderNotFound
		}
		return "", err
	}
	return domain.StatusOrDefault(s, domain.StatusEnPreparacion), nil
}

// UpdateStatus writes the status field only if the row still holds "from",
// so two racing transitions cannot both commit. A missing order is always
// ErrOrderNotFound, never a silent no-op; a row whose status moved since the
// caller read it reports ErrStatusChanged.
func (r *OrderRepo) UpdateStatus(id string, from, to domain.OrderStatus) error {
	res, err := r.db.Exec(`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Status(id); err != nil {
			return err
		}
		return ErrStatusChanged
	}
	r.notes.Orders.broadcast()
	return nil
}

// Watch is the live order-list subscription; rut filters as in List.
func (r *OrderRepo) Watch(ctx context.Context, customerRut string) <-chan []domain.OrderWithItems {
	out := make(chan []domain.OrderWithItems, 1)
	sig, cancel := r.notes.Orders.subscribe()
	go func() {
		defer close(out)
		defer cancel()
		push := func() {
			list, err := r.List(customerRut)
			if err != nil {
				return
			}
			select {
			case out <- list:
			default:
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
