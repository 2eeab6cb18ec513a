package domain

// CartItem is a (product, quantity) pair. Name/price/image come from the live
// product row at read time; they are only frozen when the item becomes an
// order line at checkout.
type CartItem struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Price     float64 `db:"price" json:"price"`
	Image     string  `db:"image" json:"image"`
	Qty       int     `db:"qty" json:"qty"`
}

func (ci CartItem) Subtotal() float64 { return ci.Price * float64(ci.Qty) }
