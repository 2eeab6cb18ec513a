package handlers

import (
	"ferremas/internal/remote"
	"ferremas/internal/repos"
	"ferremas/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ProductHandler *ProductHandler
	CartHandler    *CartHandler
	OrderHandler   *OrderHandler
	AdminHandler   *AdminHandler
}

// NewDeps wires every repo and service from the one injected DB handle.
// rc may be nil (local-only mode); the services degrade accordingly.
func NewDeps(db *sqlx.DB, notes *repos.Notify, rc *remote.Client, mirror *services.Mirror, auth *services.AuthService) *Deps {
	prodRepo := repos.NewProductRepo(db, notes)
	cartRepo := repos.NewCartRepo(db, notes)
	orderRepo := repos.NewOrderRepo(db, notes)

	catalogSvc := services.NewCatalogService(prodRepo, rc)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	checkoutSvc := services.NewCheckoutService(cartRepo, orderRepo, rc, mirror)

	return &Deps{
		ProductHandler: &ProductHandler{Catalog: catalogSvc},
		CartHandler:    &CartHandler{Cart: cartSvc},
		OrderHandler:   &OrderHandler{Cart: cartSvc, Checkout: checkoutSvc},
		AdminHandler:   &AdminHandler{Catalog: catalogSvc, Checkout: checkoutSvc, Auth: auth, Users: auth.Users},
	}
}
