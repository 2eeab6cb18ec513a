package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"ferremas/internal/domain"
	"ferremas/internal/repos"
	"ferremas/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1) // in-memory DSN is per-connection
	schema := `
	CREATE TABLE products(id TEXT PRIMARY KEY, name TEXT, description TEXT,
	  price NUMERIC, image TEXT, category TEXT, stock INTEGER, created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE cart_items(product_id TEXT PRIMARY KEY, qty INTEGER CHECK (qty >= 1),
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE orders(id TEXT PRIMARY KEY, customer_rut TEXT, customer_name TEXT,
	  shipping_address TEXT, payment_method TEXT, courier TEXT, status TEXT,
	  subtotal NUMERIC, discount NUMERIC, shipping_cost NUMERIC, total NUMERIC,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP);
	CREATE TABLE order_line_items(order_id TEXT, product_id TEXT, name TEXT, image TEXT,
	  price NUMERIC, qty INTEGER, PRIMARY KEY(order_id, product_id));

	INSERT INTO products(id,name,description,price,image,category,stock) VALUES
	  ('prod-a','Producto A','','25000','a.jpg','herramientas',10),
	  ('prod-b','Producto B','','45000','b.jpg','herramientas',10);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newCheckout(t *testing.T, db *sqlx.DB) (*services.CartService, *services.CheckoutService, *repos.OrderRepo, *repos.CartRepo, *repos.ProductRepo) {
	t.Helper()
	notes := repos.NewNotify()
	cartRepo := repos.NewCartRepo(db, notes)
	prodRepo := repos.NewProductRepo(db, notes)
	orderRepo := repos.NewOrderRepo(db, notes)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	checkoutSvc := services.NewCheckoutService(cartRepo, orderRepo, nil, nil)
	return cartSvc, checkoutSvc, orderRepo, cartRepo, prodRepo
}

func scenarioParams() services.CheckoutParams {
	return services.CheckoutParams{
		CustomerRut:     "11111111-1",
		CustomerName:    "Cliente Demo",
		ShippingAddress: "Av. Siempre Viva 742, Santiago",
		PaymentMethod:   domain.PayCredito,
		Courier:         domain.CourierChilexpress,
		Subtotal:        115000,
		Discount:        0,
		ShippingCost:    5,
		Total:           115005,
	}
}

// Scenario: (A, 25000, 1) + (B, 45000, 2), shipping 5, discount 0.
func TestCheckoutScenario(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, orderRepo, _, _ := newCheckout(t, db)

	if err := cartSvc.Add("prod-a", 1); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add("prod-b", 2); err != nil {
		t.Fatal(err)
	}
	cv, err := cartSvc.View()
	if err != nil {
		t.Fatal(err)
	}
	if cv.Total != 115000 {
		t.Fatalf("want cart total 115000, got %v", cv.Total)
	}

	oid, err := checkoutSvc.FinalizeCheckout(scenarioParams())
	if err != nil {
		t.Fatal(err)
	}
	if oid == "" {
		t.Fatal("no order id")
	}

	o, err := orderRepo.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if o.Total != 115005 {
		t.Fatalf("want order total 115005, got %v", o.Total)
	}
	if len(o.Items) != 2 {
		t.Fatalf("want 2 line items, got %d", len(o.Items))
	}
	subtotals := map[string]float64{}
	for _, li := range o.Items {
		subtotals[li.ProductID] = li.Subtotal()
	}
	if subtotals["prod-a"] != 25000 || subtotals["prod-b"] != 90000 {
		t.Fatalf("bad line-item subtotals: %+v", subtotals)
	}

	// cart empties with the same commit
	cv, err = cartSvc.View()
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %+v", cv.Items)
	}
}

// Each line item reduces the product's stock inside the checkout commit.
func TestCheckoutDecrementsStock(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, _, _, prodRepo := newCheckout(t, db)

	if err := cartSvc.Add("prod-a", 1); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add("prod-b", 2); err != nil {
		t.Fatal(err)
	}
	if _, err := checkoutSvc.FinalizeCheckout(scenarioParams()); err != nil {
		t.Fatal(err)
	}

	a, err := prodRepo.Get("prod-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := prodRepo.Get("prod-b")
	if err != nil {
		t.Fatal(err)
	}
	if a.Stock != 9 || b.Stock != 8 {
		t.Fatalf("want stocks 9 and 8 after checkout, got %d and %d", a.Stock, b.Stock)
	}
}

// A line exceeding the available stock aborts the whole checkout: no order,
// no stock change, cart intact.
func TestCheckoutInsufficientStock(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, _, _, prodRepo := newCheckout(t, db)

	if _, err := db.Exec(`UPDATE products SET stock = 1 WHERE id = 'prod-b'`); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add("prod-a", 1); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add("prod-b", 2); err != nil {
		t.Fatal(err)
	}

	_, err := checkoutSvc.FinalizeCheckout(scenarioParams())
	if !errors.Is(err, repos.ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}

	var orders int
	if err := db.Get(&orders, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if orders != 0 {
		t.Fatalf("no order may survive an oversold checkout, got %d", orders)
	}
	a, err := prodRepo.Get("prod-a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := prodRepo.Get("prod-b")
	if err != nil {
		t.Fatal(err)
	}
	if a.Stock != 10 || b.Stock != 1 {
		t.Fatalf("stock must be untouched on failure, got %d and %d", a.Stock, b.Stock)
	}
	var cartRows int
	if err := db.Get(&cartRows, `SELECT COUNT(*) FROM cart_items`); err != nil {
		t.Fatal(err)
	}
	if cartRows != 2 {
		t.Fatalf("cart must be untouched on failure, got %d rows", cartRows)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := memdb(t)
	_, checkoutSvc, _, _, _ := newCheckout(t, db)

	_, err := checkoutSvc.FinalizeCheckout(scenarioParams())
	if !errors.Is(err, services.ErrEmptyCart) {
		t.Fatalf("want ErrEmptyCart, got %v", err)
	}
}

// Injected storage failure mid-transaction: the line-item table is dropped,
// so the header insert succeeds but the batch fails. Nothing may survive.
func TestCheckoutAtomicityOnFailure(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, _, _, _ := newCheckout(t, db)

	if err := cartSvc.Add("prod-a", 1); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Add("prod-b", 2); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Exec(`DROP TABLE order_line_items`); err != nil {
		t.Fatal(err)
	}

	_, err := checkoutSvc.FinalizeCheckout(scenarioParams())
	if err == nil {
		t.Fatal("checkout should fail when line items cannot be written")
	}

	var orders int
	if err := db.Get(&orders, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if orders != 0 {
		t.Fatalf("no order header may survive a failed checkout, got %d", orders)
	}
	var cartRows int
	if err := db.Get(&cartRows, `SELECT COUNT(*) FROM cart_items`); err != nil {
		t.Fatal(err)
	}
	if cartRows != 2 {
		t.Fatalf("cart must be untouched on failure, got %d rows", cartRows)
	}
}

// Mutating the product price after checkout must not reach existing line items.
func TestLineItemPriceFrozen(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, orderRepo, _, prodRepo := newCheckout(t, db)

	if err := cartSvc.Add("prod-b", 2); err != nil {
		t.Fatal(err)
	}
	p := services.CheckoutParams{
		CustomerRut: "11111111-1", CustomerName: "Cliente", ShippingAddress: "Calle 1",
		PaymentMethod: domain.PayDebito, Courier: domain.CourierStarken,
		Subtotal: 90000, Discount: 0, ShippingCost: 0, Total: 90000,
	}
	oid, err := checkoutSvc.FinalizeCheckout(p)
	if err != nil {
		t.Fatal(err)
	}

	prod, err := prodRepo.Get("prod-b")
	if err != nil {
		t.Fatal(err)
	}
	prod.Price = 99999
	prod.Name = "Producto B v2"
	if err := prodRepo.Update(prod); err != nil {
		t.Fatal(err)
	}

	o, err := orderRepo.Get(oid)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Items) != 1 {
		t.Fatalf("want 1 line item, got %d", len(o.Items))
	}
	li := o.Items[0]
	if li.Price != 45000 || li.Name != "Producto B" || li.Subtotal() != 90000 {
		t.Fatalf("line item must keep purchase-time values, got %+v", li)
	}
}

// Decrementing below 1 is a no-op; removal is a separate action.
func TestCartDecrementFloor(t *testing.T) {
	db := memdb(t)
	cartSvc, _, _, _, _ := newCheckout(t, db)

	if err := cartSvc.Add("prod-a", 2); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Decrement("prod-a"); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Decrement("prod-a"); err != nil {
		t.Fatal(err)
	}
	if err := cartSvc.Decrement("prod-a"); err != nil {
		t.Fatal(err)
	}

	cv, err := cartSvc.View()
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Items) != 1 || cv.Items[0].Qty != 1 {
		t.Fatalf("decrement must floor at qty 1, got %+v", cv.Items)
	}

	if err := cartSvc.Remove("prod-a"); err != nil {
		t.Fatal(err)
	}
	cv, _ = cartSvc.View()
	if len(cv.Items) != 0 {
		t.Fatalf("explicit remove should empty the cart, got %+v", cv.Items)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, _, _, _ := newCheckout(t, db)

	if err := cartSvc.Add("prod-a", 1); err != nil {
		t.Fatal(err)
	}
	p := services.CheckoutParams{
		CustomerRut: "11111111-1", CustomerName: "Cliente", ShippingAddress: "Calle 1",
		PaymentMethod: domain.PayEfectivo, Courier: domain.CourierCorreos,
		Subtotal: 25000, Discount: 0, ShippingCost: 0, Total: 25000,
	}
	oid, err := checkoutSvc.FinalizeCheckout(p)
	if err != nil {
		t.Fatal(err)
	}

	// forward moves succeed
	if err := checkoutSvc.UpdateOrderStatus(oid, domain.StatusEnTransito); err != nil {
		t.Fatal(err)
	}
	if err := checkoutSvc.UpdateOrderStatus(oid, domain.StatusEntregado); err != nil {
		t.Fatal(err)
	}

	// terminal state rejects everything
	err = checkoutSvc.UpdateOrderStatus(oid, domain.StatusEnPreparacion)
	if !errors.Is(err, services.ErrBadTransition) {
		t.Fatalf("want ErrBadTransition out of ENTREGADO, got %v", err)
	}

	// unknown order is a hard not-found
	err = checkoutSvc.UpdateOrderStatus("no-such-order", domain.StatusEnTransito)
	if !errors.Is(err, repos.ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestListOrdersFilterAndOrder(t *testing.T) {
	db := memdb(t)
	cartSvc, checkoutSvc, _, _, _ := newCheckout(t, db)

	place := func(rut string, total float64) string {
		t.Helper()
		if err := cartSvc.Add("prod-a", 1); err != nil {
			t.Fatal(err)
		}
		oid, err := checkoutSvc.FinalizeCheckout(services.CheckoutParams{
			CustomerRut: rut, CustomerName: "C", ShippingAddress: "Calle 1",
			PaymentMethod: domain.PayCredito, Courier: domain.CourierChilexpress,
			Subtotal: total, Discount: 0, ShippingCost: 0, Total: total,
		})
		if err != nil {
			t.Fatal(err)
		}
		return oid
	}

	place("11111111-1", 25000)
	place("22222222-2", 25000)
	place("11111111-1", 25000)

	all, err := checkoutSvc.ListOrders("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("admin view should see 3 orders, got %d", len(all))
	}
	for _, o := range all {
		if len(o.Items) != 1 {
			t.Fatalf("every order should carry its items, got %+v", o)
		}
	}

	mine, err := checkoutSvc.ListOrders("11111111-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Fatalf("filtered view should see 2 orders, got %d", len(mine))
	}
	for _, o := range mine {
		if o.CustomerRut != "11111111-1" {
			t.Fatalf("filter leak: %+v", o.Order)
		}
	}
}
