package services

import (
	"context"
	"encoding/json"
	"errors"

	"golang.org/x/sync/singleflight"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/cache"
	"vitrine_admin/internal/models"
	"vitrine_admin/internal/session"
)

// ErrNotReady signale une lecture retenue : pas de session, donc la requête
// n'est simplement pas émise. Ce n'est pas un échec réseau.
var ErrNotReady = errors.New("session non prête")

type ProductAPI interface {
	ListProducts(ctx context.Context, ident session.Identity) ([]models.Product, error)
	GetProduct(ctx context.Context, ident session.Identity, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, ident session.Identity, in apiclient.CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, ident session.Identity, in apiclient.UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, ident session.Identity, id string) error
}

// ProductService est la couche d'accès aux produits : lectures en cache avec
// une seule requête en vol par clé, écritures suivies de l'invalidation des
// lectures concernées.
type ProductService struct {
	api    ProductAPI
	cache  cache.Store
	flight singleflight.Group
}

func NewProductService(api ProductAPI, store cache.Store) *ProductService {
	return &ProductService{api: api, cache: store}
}

func (s *ProductService) List(ctx context.Context, ident session.Identity) ([]models.Product, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotReady
	}

	if raw, ok := s.cache.Get(ctx, cache.KeyProducts); ok {
		var products []models.Product
		if json.Unmarshal([]byte(raw), &products) == nil {
			return products, nil
		}
	}

	v, err, _ := s.flight.Do(cache.KeyProducts, func() (interface{}, error) {
		products, err := s.api.ListProducts(ctx, ident)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(products); err == nil {
			s.cache.Set(ctx, cache.KeyProducts, string(data), cache.ProductCacheTTL)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func (s *ProductService) Get(ctx context.Context, ident session.Identity, id string) (*models.Product, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotReady
	}
	if id == "" {
		return nil, apiclient.ErrNotFound
	}

	key := cache.KeyProduct + id

	if raw, ok := s.cache.Get(ctx, key); ok {
		var p models.Product
		if json.Unmarshal([]byte(raw), &p) == nil {
			return &p, nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		p, err := s.api.GetProduct(ctx, ident, id)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(p); err == nil {
			s.cache.Set(ctx, key, string(data), cache.ProductCacheTTL)
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

func (s *ProductService) Create(ctx context.Context, ident session.Identity, in apiclient.CreateProductInput) (*models.Product, error) {
	p, err := s.api.CreateProduct(ctx, ident, in)
	if err != nil {
		return nil, err
	}

	// L'invalidation vient après le succès de l'écriture : la prochaine
	// lecture de la liste refera un aller au backend.
	s.cache.Invalidate(ctx, cache.KeyProducts)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, ident session.Identity, in apiclient.UpdateProductInput) (*models.Product, error) {
	p, err := s.api.UpdateProduct(ctx, ident, in)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyProducts, cache.KeyProduct+in.ID)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, ident session.Identity, id string) error {
	if err := s.api.DeleteProduct(ctx, ident, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyProducts)
	return nil
}
