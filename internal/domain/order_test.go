package domain_test

import (
	"errors"
	"testing"

	"ferremas/internal/domain"
)

func TestNewOrderTotalInvariant(t *testing.T) {
	o, err := domain.NewOrder("11111111-1", "Cliente Demo", "Av. Siempre Viva 742",
		domain.PayCredito, domain.CourierChilexpress, 115000, 0, 5, 115005)
	if err != nil {
		t.Fatal(err)
	}
	if o.ID != "" {
		t.Fatalf("new order must have empty id, got %q", o.ID)
	}
	if o.Status != domain.StatusEnPreparacion {
		t.Fatalf("want initial status EN_PREPARACION, got %s", o.Status)
	}
	if o.Total != 115005 {
		t.Fatalf("want total 115005, got %v", o.Total)
	}

	_, err = domain.NewOrder("11111111-1", "Cliente Demo", "Av. Siempre Viva 742",
		domain.PayCredito, domain.CourierChilexpress, 115000, 0, 5, 999999)
	if !errors.Is(err, domain.ErrTotalMismatch) {
		t.Fatalf("want ErrTotalMismatch, got %v", err)
	}
}

func TestNewOrderDiscountAndShipping(t *testing.T) {
	o, err := domain.NewOrder("11111111-1", "Cliente", "Calle 1",
		domain.PayTransferencia, domain.CourierStarken, 50000, 5000, 3000, 48000)
	if err != nil {
		t.Fatal(err)
	}
	if o.Total != o.Subtotal-o.Discount+o.ShippingCost {
		t.Fatalf("total invariant broken: %+v", o)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to domain.OrderStatus
		ok       bool
	}{
		{domain.StatusEnPreparacion, domain.StatusEnTransito, true},
		{domain.StatusEnPreparacion, domain.StatusRechazado, true},
		{domain.StatusEnPreparacion, domain.StatusEntregado, false},
		{domain.StatusEnTransito, domain.StatusEntregado, true},
		{domain.StatusEnTransito, domain.StatusRechazado, true},
		{domain.StatusEnTransito, domain.StatusEnPreparacion, false},
		{domain.StatusEntregado, domain.StatusEnTransito, false},
		{domain.StatusEntregado, domain.StatusRechazado, false},
		{domain.StatusRechazado, domain.StatusEnPreparacion, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.ok {
			t.Fatalf("%s -> %s: want %v, got %v", tc.from, tc.to, tc.ok, got)
		}
	}
	if !domain.StatusEntregado.Terminal() || !domain.StatusRechazado.Terminal() {
		t.Fatal("ENTREGADO and RECHAZADO must be terminal")
	}
	if domain.StatusEnPreparacion.Terminal() {
		t.Fatal("EN_PREPARACION must not be terminal")
	}
}

func TestParseStatusDefaulting(t *testing.T) {
	if _, ok := domain.ParseStatus("EN_TRANSITO"); !ok {
		t.Fatal("EN_TRANSITO should parse")
	}
	if _, ok := domain.ParseStatus("shipped"); ok {
		t.Fatal("unknown status should not parse")
	}
	if got := domain.StatusOrDefault("garbage", domain.StatusEnPreparacion); got != domain.StatusEnPreparacion {
		t.Fatalf("want default EN_PREPARACION, got %s", got)
	}
}

func TestParseRoleDefaulting(t *testing.T) {
	if r, ok := domain.ParseRole("ADMIN"); !ok || r != domain.RoleAdmin {
		t.Fatalf("ADMIN should parse, got %v %v", r, ok)
	}
	if _, ok := domain.ParseRole("SUPERUSER"); ok {
		t.Fatal("unknown role should not parse")
	}
	if got := domain.RoleOrDefault("SUPERUSER", domain.RoleUser); got != domain.RoleUser {
		t.Fatalf("unparseable role must decode to USER, got %s", got)
	}
}

func TestParsePaymentAndCourier(t *testing.T) {
	if _, ok := domain.ParsePaymentMethod("TARJETA_CREDITO"); !ok {
		t.Fatal("TARJETA_CREDITO should parse")
	}
	if _, ok := domain.ParsePaymentMethod("bitcoin"); ok {
		t.Fatal("unknown payment method should not parse")
	}
	if _, ok := domain.ParseCourier("STARKEN"); !ok {
		t.Fatal("STARKEN should parse")
	}
	if got := domain.CourierOrDefault("dhl", domain.CourierChilexpress); got != domain.CourierChilexpress {
		t.Fatalf("want default CHILEXPRESS, got %s", got)
	}
}

func TestLineItemSubtotal(t *testing.T) {
	li := domain.OrderLineItem{Price: 45000, Qty: 2}
	if li.Subtotal() != 90000 {
		t.Fatalf("want 90000, got %v", li.Subtotal())
	}
	ci := domain.CartItem{Price: 25000, Qty: 1}
	if ci.Subtotal() != 25000 {
		t.Fatalf("want 25000, got %v", ci.Subtotal())
	}
}

func TestProductAvailability(t *testing.T) {
	if (domain.Product{Stock: 0}).Available() {
		t.Fatal("zero stock must not be available")
	}
	if !(domain.Product{Stock: 3}).Available() {
		t.Fatal("positive stock must be available")
	}
}
