package handlers

import (
	"github.com/jmoiron/sqlx"

	"orderdesk/internal/cache"
	"orderdesk/internal/config"
	"orderdesk/internal/repos"
	"orderdesk/internal/services"
)

type Deps struct {
	OrderHandler    *OrderHandler
	ProductHandler  *ProductHandler
	CustomerHandler *CustomerHandler
	AuthHandler     *AuthHandler
	Auth            *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	prodRepo := repos.NewProductRepo(db)
	custRepo := repos.NewCustomerRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	ownerRepo := repos.NewOwnerRepo(db)

	stockSvc := services.NewStockService(prodRepo)
	orderSvc := services.NewOrderService(db, orderRepo, custRepo, stockSvc)
	catalogSvc := services.NewCatalogService(prodRepo, cache.NewMemory(), cfg.CacheTTL)
	custSvc := services.NewCustomerService(custRepo)
	authSvc := &services.AuthService{Owners: ownerRepo}

	return &Deps{
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CustomerHandler: &CustomerHandler{Customers: custSvc},
		AuthHandler:     &AuthHandler{Auth: authSvc},
		Auth:            authSvc,
	}
}
