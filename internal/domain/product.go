package domain

type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description string  `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Image       string  `db:"image" json:"image"`
	Category    string  `db:"category" json:"category"`
	Stock       int     `db:"stock" json:"stock"`
	CreatedAt   string  `db:"created_at" json:"createdAt,omitempty"`
	UpdatedAt   string  `db:"updated_at" json:"updatedAt,omitempty"`
}

// Available is derived from stock; products are never flagged directly.
func (p Product) Available() bool { return p.Stock > 0 }
