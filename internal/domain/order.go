package domain

import (
	"errors"
	"math"
)

type OrderStatus string

const (
	StatusEnPreparacion OrderStatus = "EN_PREPARACION"
	StatusEnTransito    OrderStatus = "EN_TRANSITO"
	StatusEntregado     OrderStatus = "ENTREGADO"
	StatusRechazado     OrderStatus = "RECHAZADO"
)

// ParseStatus reports whether s names a known order status.
func ParseStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusEnPreparacion, StatusEnTransito, StatusEntregado, StatusRechazado:
		return OrderStatus(s), true
	}
	return "", false
}

// StatusOrDefault decodes s, falling back to the given default. The default
// is an explicit parameter so every call site documents its own policy.
func StatusOrDefault(s string, def OrderStatus) OrderStatus {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return def
}

func (s OrderStatus) Terminal() bool {
	return s == StatusEntregado || s == StatusRechazado
}

// CanTransition enforces forward-only movement:
// EN_PREPARACION -> EN_TRANSITO -> ENTREGADO, with RECHAZADO reachable from
// any non-terminal state. Terminal states accept nothing.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	switch s {
	case StatusEnPreparacion:
		return to == StatusEnTransito || to == StatusRechazado
	case StatusEnTransito:
		return to == StatusEntregado || to == StatusRechazado
	}
	return false
}

type PaymentMethod string

const (
	PayCredito       PaymentMethod = "TARJETA_CREDITO"
	PayDebito        PaymentMethod = "TARJETA_DEBITO"
	PayTransferencia PaymentMethod = "TRANSFERENCIA"
	PayEfectivo      PaymentMethod = "EFECTIVO_RETIRO"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(s) {
	case PayCredito, PayDebito, PayTransferencia, PayEfectivo:
		return PaymentMethod(s), true
	}
	return "", false
}

func PaymentMethodOrDefault(s string, def PaymentMethod) PaymentMethod {
	if pm, ok := ParsePaymentMethod(s); ok {
		return pm
	}
	return def
}

type Courier string

const (
	CourierChilexpress Courier = "CHILEXPRESS"
	CourierStarken     Courier = "STARKEN"
	CourierCorreos     Courier = "CORREOS_CHILE"
	CourierBluexpress  Courier = "BLUE_EXPRESS"
)

func ParseCourier(s string) (Courier, bool) {
	switch Courier(s) {
	case CourierChilexpress, CourierStarken, CourierCorreos, CourierBluexpress:
		return Courier(s), true
	}
	return "", false
}

func CourierOrDefault(s string, def Courier) Courier {
	if co, ok := ParseCourier(s); ok {
		return co
	}
	return def
}

type Order struct {
	ID              string        `db:"id" json:"id"`
	CustomerRut     string        `db:"customer_rut" json:"customerRut"`
	CustomerName    string        `db:"customer_name" json:"customerName"`
	ShippingAddress string        `db:"shipping_address" json:"shippingAddress"`
	PaymentMethod   PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Courier         Courier       `db:"courier" json:"courier"`
	Status          OrderStatus   `db:"status" json:"status"`
	Subtotal        float64       `db:"subtotal" json:"subtotal"`
	Discount        float64       `db:"discount" json:"discount"`
	ShippingCost    float64       `db:"shipping_cost" json:"shippingCost"`
	Total           float64       `db:"total" json:"total"`
	CreatedAt       string        `db:"created_at" json:"createdAt"`
}

// OrderLineItem freezes product name/image/price at purchase time; later
// catalog edits must not reach these rows.
type OrderLineItem struct {
	OrderID   string  `db:"order_id" json:"orderId"`
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Image     string  `db:"image" json:"image"`
	Price     float64 `db:"price" json:"price"`
	Qty       int     `db:"qty" json:"qty"`
}

func (li OrderLineItem) Subtotal() float64 { return li.Price * float64(li.Qty) }

// OrderWithItems is the composite view joined by order id.
type OrderWithItems struct {
	Order
	Items []OrderLineItem `json:"items"`
}

var ErrTotalMismatch = errors.New("total must equal subtotal - discount + shipping cost")

const totalTolerance = 1e-6

// NewOrder builds an order header with an empty id (meaning: not yet
// persisted) and initial status EN_PREPARACION. The total invariant is
// checked here, at construction, and never recomputed afterwards.
func NewOrder(rut, name, address string, pm PaymentMethod, courier Courier, subtotal, discount, shippingCost, total float64) (Order, error) {
	if math.Abs(total-(subtotal-discount+shippingCost)) > totalTolerance {
		return Order{}, ErrTotalMismatch
	}
	return Order{
		CustomerRut:     rut,
		CustomerName:    name,
		ShippingAddress: address,
		PaymentMethod:   pm,
		Courier:         courier,
		Status:          StatusEnPreparacion,
		Subtotal:        subtotal,
		Discount:        discount,
		ShippingCost:    shippingCost,
		Total:           total,
	}, nil
}
