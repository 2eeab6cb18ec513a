package services

import (
	"context"
	"database/sql"

	"ferremas/internal/domain"
	applog "ferremas/internal/log"
	"ferremas/internal/remote"
	"ferremas/internal/repos"

	"github.com/google/uuid"
)

// CatalogService resolves the product list from two sources: the remote
// service when reachable, the local store otherwise. The local store doubles
// as offline cache and last-known-good state, so remote failures never reach
// the caller as errors.
type CatalogService struct {
	Prods  *repos.ProductRepo
	Remote *remote.Client // nil in local-only mode
}

func NewCatalogService(prods *repos.ProductRepo, rc *remote.Client) *CatalogService {
	return &CatalogService{Prods: prods, Remote: rc}
}

// ObserveProducts attempts one remote fetch per subscription. Success emits
// the remote list as the sole value; any classified failure switches to the
// local store's live query for the rest of the subscription, so admin-side
// local mutations stay visible without connectivity.
func (s *CatalogService) ObserveProducts(ctx context.Context) <-chan []domain.Product {
	out := make(chan []domain.Product, 1)
	go func() {
		defer close(out)

		if s.Remote != nil {
			list, err := s.Remote.ListProducts()
			if err == nil {
				select {
				case out <- list:
				case <-ctx.Done():
					return
				}
				<-ctx.Done()
				return
			}
			applog.Info(nil, "catalog.fallback", map[string]any{
				"kind": remote.Classify(err).String(), "err": err.Error(),
			})
		}

		for list := range s.Prods.Watch(ctx) {
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
	}()
	return out
}

// Products is the one-shot read used by the HTTP surface; same precedence
// as ObserveProducts.
func (s *CatalogService) Products() ([]domain.Product, error) {
	if s.Remote != nil {
		if list, err := s.Remote.ListProducts(); err == nil {
			return list, nil
		} else {
			applog.Info(nil, "catalog.fallback", map[string]any{
				"kind": remote.Classify(err).String(), "err": err.Error(),
			})
		}
	}
	return s.Prods.List()
}

func (s *CatalogService) GetProduct(id string) (domain.Product, error) {
	if s.Remote != nil {
		if p, err := s.Remote.GetProduct(id); err == nil {
			return p, nil
		}
	}
	return s.Prods.Get(id)
}

func (s *CatalogService) Search(q, category string) ([]domain.Product, error) {
	return s.Prods.Search(q, category)
}

// CreateProduct attempts the remote create first; whatever the remote
// outcome, the local store is always updated as the durable record. The
// returned id is the local storage id (server-assigned when the remote
// create succeeded).
func (s *CatalogService) CreateProduct(p domain.Product) (string, error) {
	if s.Remote != nil {
		if created, err := s.Remote.CreateProduct(p); err == nil && created.ID != "" {
			p.ID = created.ID
		} else if err != nil {
			applog.Info(nil, "catalog.create.local_only", map[string]any{
				"kind": remote.Classify(err).String(), "err": err.Error(),
			})
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.Prods.Insert(p); err != nil {
		return "", err
	}
	return p.ID, nil
}

func (s *CatalogService) UpdateProduct(p domain.Product) error {
	if s.Remote != nil {
		if err := s.Remote.UpdateProduct(p); err != nil {
			applog.Info(nil, "catalog.update.local_only", map[string]any{
				"id": p.ID, "kind": remote.Classify(err).String(),
			})
		}
	}
	return s.Prods.Update(p)
}

func (s *CatalogService) DeleteProduct(id string) error {
	if s.Remote != nil {
		if err := s.Remote.DeleteProduct(id); err != nil {
			applog.Info(nil, "catalog.delete.local_only", map[string]any{
				"id": id, "kind": remote.Classify(err).String(),
			})
		}
	}
	if err := s.Prods.Delete(id); err != nil && err != sql.ErrNoRows {
		return err
	}
	return nil
}

// ClearProducts is the admin bulk-clear; local only, the upstream catalog is
// never mass-deleted from here.
func (s *CatalogService) ClearProducts() error {
	return s.Prods.DeleteAll()
}
