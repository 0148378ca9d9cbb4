package services

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/singleflight"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/cache"
	"vitrine_admin/internal/models"
	"vitrine_admin/internal/session"
)

type CartAPI interface {
	GetCart(ctx context.Context, ident session.Identity) (*models.Cart, error)
	AddToCart(ctx context.Context, ident session.Identity, productID string, quantity int) (*models.Cart, error)
	UpdateCartItem(ctx context.Context, ident session.Identity, productID string, quantity int) (*models.Cart, error)
	RemoveCartItem(ctx context.Context, ident session.Identity, productID, itemID string) (*models.Cart, error)
}

// Notifier pousse les notifications transitoires (toasts) vers le navigateur.
type Notifier interface {
	Success(userID, message string)
	Error(userID, message string)
}

type CartService struct {
	api    CartAPI
	cache  cache.Store
	notify Notifier
	flight singleflight.Group
}

func NewCartService(api CartAPI, store cache.Store, notify Notifier) *CartService {
	return &CartService{api: api, cache: store, notify: notify}
}

func (s *CartService) Get(ctx context.Context, ident session.Identity) (*models.Cart, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotReady
	}

	key := cache.KeyCart + ident.UserID

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cart models.Cart
		if json.Unmarshal([]byte(raw), &cart) == nil {
			return &cart, nil
		}
	}

	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		cart, err := s.api.GetCart(ctx, ident)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(cart); err == nil {
			s.cache.Set(ctx, key, string(data), cache.CartCacheTTL)
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// Add ajoute un produit au panier, quantité 1 par défaut. Succès ou échec,
// l'utilisateur est notifié ; le cache n'est invalidé qu'en cas de succès.
func (s *CartService) Add(ctx context.Context, ident session.Identity, productID string, quantity int) (*models.Cart, error) {
	if !ident.LoggedIn() {
		return nil, apiclient.ErrNotAuthenticated
	}
	if quantity <= 0 {
		quantity = 1
	}

	cart, err := s.api.AddToCart(ctx, ident, productID, quantity)
	if err != nil {
		if s.notify != nil {
			s.notify.Error(ident.UserID, "Échec de l'ajout du produit.")
		}
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyCart+ident.UserID)
	if s.notify != nil {
		s.notify.Success(ident.UserID, "Produit ajouté au panier !")
	}
	return cart, nil
}

// ChangeQuantity applique une intention de changement de quantité : une valeur
// finale ≤ 0 devient une suppression, jamais un update à quantité non positive.
func (s *CartService) ChangeQuantity(ctx context.Context, ident session.Identity, productID, itemID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, ident, productID, itemID)
	}

	if !ident.LoggedIn() {
		return nil, apiclient.ErrNotAuthenticated
	}

	cart, err := s.api.UpdateCartItem(ctx, ident, productID, quantity)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyCart+ident.UserID)
	return cart, nil
}

func (s *CartService) Remove(ctx context.Context, ident session.Identity, productID, itemID string) (*models.Cart, error) {
	if !ident.LoggedIn() {
		return nil, apiclient.ErrNotAuthenticated
	}

	cart, err := s.api.RemoveCartItem(ctx, ident, productID, itemID)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyCart+ident.UserID)
	return cart, nil
}
