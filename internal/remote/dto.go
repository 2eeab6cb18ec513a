package remote

import "ferremas/internal/domain"

// Wire shapes for the upstream catalog/order/user service. Mapping to and
// from domain types lives here so enum defaulting happens exactly once, at
// the boundary.

type productDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

func (d productDTO) toDomain() domain.Product {
	return domain.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Image:       d.Image,
		Category:    d.Category,
		Stock:       d.Stock,
	}
}

func productToDTO(p domain.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    p.Category,
		Stock:       p.Stock,
	}
}

type lineItemDTO struct {
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

func (d lineItemDTO) toDomain() domain.OrderLineItem {
	return domain.OrderLineItem(d)
}

type orderDTO struct {
	ID              string        `json:"id"`
	CustomerRut     string        `json:"customerRut"`
	CustomerName    string        `json:"customerName"`
	ShippingAddress string        `json:"shippingAddress"`
	PaymentMethod   string        `json:"paymentMethod"`
	Courier         string        `json:"courier"`
	Status          string        `json:"status"`
	Subtotal        float64       `json:"subtotal"`
	Discount        float64       `json:"discount"`
	ShippingCost    float64       `json:"shippingCost"`
	Total           float64       `json:"total"`
	CreatedAt       string        `json:"createdAt"`
	Items           []lineItemDTO `json:"items,omitempty"`
}

func (d orderDTO) toDomain() domain.OrderWithItems {
	o := domain.Order{
		ID:              d.ID,
		CustomerRut:     d.CustomerRut,
		CustomerName:    d.CustomerName,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   domain.PaymentMethodOrDefault(d.PaymentMethod, domain.PayEfectivo),
		Courier:         domain.CourierOrDefault(d.Courier, domain.CourierChilexpress),
		Status:          domain.StatusOrDefault(d.Status, domain.StatusEnPreparacion),
		Subtotal:        d.Subtotal,
		Discount:        d.Discount,
		ShippingCost:    d.ShippingCost,
		Total:           d.Total,
		CreatedAt:       d.CreatedAt,
	}
	items := make([]domain.OrderLineItem, 0, len(d.Items))
	for _, li := range d.Items {
		items = append(items, li.toDomain())
	}
	return domain.OrderWithItems{Order: o, Items: items}
}

func orderToDTO(o domain.OrderWithItems) orderDTO {
	d := orderDTO{
		ID:              o.ID,
		CustomerRut:     o.CustomerRut,
		CustomerName:    o.CustomerName,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		Courier:         string(o.Courier),
		Status:          string(o.Status),
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
	}
	for _, li := range o.Items {
		d.Items = append(d.Items, lineItemDTO(li))
	}
	return d
}

type userDTO struct {
	ID       string `json:"id"`
	Rut      string `json:"rut"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Comuna   string `json:"comuna,omitempty"`
	Region   string `json:"region,omitempty"`
	Role     string `json:"role"`
}

// toDomain applies the USER default to unparseable role strings instead of
// failing the read.
func (d userDTO) toDomain() domain.User {
	return domain.User{
		ID:       d.ID,
		Rut:      d.Rut,
		Name:     d.Name,
		Surname:  d.Surname,
		Username: d.Username,
		Email:    d.Email,
		Hash:     d.Password,
		Phone:    d.Phone,
		Address:  d.Address,
		Comuna:   d.Comuna,
		Region:   d.Region,
		Role:     domain.RoleOrDefault(d.Role, domain.RoleUser),
	}
}

func userToDTO(u domain.User) userDTO {
	return userDTO{
		ID:       u.ID,
		Rut:      u.Rut,
		Name:     u.Name,
		Surname:  u.Surname,
		Username: u.Username,
		Email:    u.Email,
		Password: u.Hash,
		Phone:    u.Phone,
		Address:  u.Address,
		Comuna:   u.Comuna,
		Region:   u.Region,
		Role:     string(u.Role),
	}
}
