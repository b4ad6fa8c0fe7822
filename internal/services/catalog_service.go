package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"orderdesk/internal/cache"
	"orderdesk/internal/domain"
	"orderdesk/internal/repos"
)

// CatalogService fronts product reads with an injected cache. Every write
// path invalidates both the ID and SKU keys; there are no timer-driven
// evictions beyond the entry TTL.
type CatalogService struct {
	Products *repos.ProductRepo
	Cache    cache.Cache
	TTL      time.Duration
}

func NewCatalogService(products *repos.ProductRepo, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{Products: products, Cache: c, TTL: ttl}
}

func productKey(ownerID, token string) string {
	return "product:" + ownerID + ":" + strings.ToLower(token)
}

// Lookup resolves a product by ID or SKU, ID taking precedence.
func (s *CatalogService) Lookup(ctx context.Context, ownerID, idOrSKU string) (*domain.Product, error) {
	key := productKey(ownerID, idOrSKU)
	if v, ok := s.Cache.Get(key); ok {
		p := v.(domain.Product)
		return &p, nil
	}
	p, err := s.Products.ByIDOrSKU(ctx, ownerID, idOrSKU)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("product")
	}
	s.Cache.Set(key, *p, s.TTL)
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, ownerID string) ([]domain.Product, error) {
	return s.Products.List(ctx, ownerID)
}

func (s *CatalogService) invalidate(ownerID string, p *domain.Product) {
	s.Cache.Invalidate(productKey(ownerID, p.ID))
	s.Cache.Invalidate(productKey(ownerID, p.SKU))
}

type ProductInput struct {
	Title      string `json:"title"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Validation("title is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return domain.Validation("sku is required")
	}
	if in.PriceCents < 0 {
		return domain.Validation("price must not be negative")
	}
	if in.Stock < 0 {
		return domain.Validation("stock must not be negative")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := domain.Product{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(in.Title),
		SKU:        strings.TrimSpace(in.SKU),
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
	}
	if err := s.Products.Insert(ctx, p); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, domain.Conflict("sku " + p.SKU + " already exists")
		}
		return nil, err
	}
	s.invalidate(ownerID, &p)
	return &p, nil
}

// UpdateProduct rewrites the admin-editable fields and invalidates cache
// entries for the old and new identities.
func (s *CatalogService) UpdateProduct(ctx context.Context, ownerID, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	old, err := s.Products.ByIDOrSKU(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, domain.NotFound("product")
	}

	p := domain.Product{
		ID:         old.ID,
		OwnerID:    ownerID,
		Title:      strings.TrimSpace(in.Title),
		SKU:        strings.TrimSpace(in.SKU),
		PriceCents: in.PriceCents,
		Stock:      in.Stock,
	}
	if err := s.Products.Update(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("product")
		}
		if repos.IsUniqueViolation(err) {
			return nil, domain.Conflict("sku " + p.SKU + " already exists")
		}
		return nil, err
	}
	s.invalidate(ownerID, old)
	s.invalidate(ownerID, &p)
	return &p, nil
}
