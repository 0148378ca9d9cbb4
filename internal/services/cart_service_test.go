package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/cache"
	"vitrine_admin/internal/models"
	"vitrine_admin/internal/session"
)

type mockCartAPI struct {
	m sync.RWMutex

	cart *models.Cart
	err  error

	getCalls    int
	addQuantity int
	updateCalls int
	removeCalls int

	removedProductID string
	removedItemID    string
}

func (a *mockCartAPI) GetCart(_ context.Context, ident session.Identity) (*models.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.getCalls++
	if a.err != nil {
		return nil, a.err
	}
	if a.cart != nil {
		return a.cart, nil
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

func (a *mockCartAPI) AddToCart(_ context.Context, ident session.Identity, _ string, quantity int) (*models.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.addQuantity = quantity
	if a.err != nil {
		return nil, a.err
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

func (a *mockCartAPI) UpdateCartItem(_ context.Context, ident session.Identity, _ string, _ int) (*models.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.updateCalls++
	if a.err != nil {
		return nil, a.err
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

func (a *mockCartAPI) RemoveCartItem(_ context.Context, ident session.Identity, productID, itemID string) (*models.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.removeCalls++
	a.removedProductID = productID
	a.removedItemID = itemID
	if a.err != nil {
		return nil, a.err
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

type mockNotifier struct {
	m sync.RWMutex

	successes []string
	errors    []string
}

func (n *mockNotifier) Success(_, message string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.successes = append(n.successes, message)
}

func (n *mockNotifier) Error(_, message string) {
	n.m.Lock()
	defer n.m.Unlock()
	n.errors = append(n.errors, message)
}

func TestCartGet_WithheldWithoutSession(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.Get(context.Background(), session.Identity{})
	require.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, 0, mockAPI.getCalls)
}

func TestCartGet_CachesResult(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.Get(context.Background(), testIdent)
	require.NoError(t, err)
	_, err = sut.Get(context.Background(), testIdent)
	require.NoError(t, err)

	assert.Equal(t, 1, mockAPI.getCalls)
}

func TestCartAdd_DefaultsQuantityToOne(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.Add(context.Background(), testIdent, "p1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, mockAPI.addQuantity)
}

func TestCartAdd_SuccessNotifiesAndInvalidates(t *testing.T) {
	mockAPI := &mockCartAPI{}
	notifier := &mockNotifier{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), notifier)

	// Amorcer le cache pour constater son invalidation
	_, err := sut.Get(context.Background(), testIdent)
	require.NoError(t, err)
	require.Equal(t, 1, mockAPI.getCalls)

	_, err = sut.Add(context.Background(), testIdent, "p1", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Produit ajouté au panier !"}, notifier.successes)
	assert.Empty(t, notifier.errors)

	_, err = sut.Get(context.Background(), testIdent)
	require.NoError(t, err)
	assert.Equal(t, 2, mockAPI.getCalls, "le panier doit être relu après l'ajout")
}

func TestCartAdd_FailureNotifiesAndKeepsCache(t *testing.T) {
	mockAPI := &mockCartAPI{}
	notifier := &mockNotifier{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), notifier)

	_, err := sut.Get(context.Background(), testIdent)
	require.NoError(t, err)

	mockAPI.m.Lock()
	mockAPI.err = fmt.Errorf("panne réseau")
	mockAPI.m.Unlock()

	_, err = sut.Add(context.Background(), testIdent, "p1", 1)
	require.Error(t, err)

	assert.Equal(t, []string{"Échec de l'ajout du produit."}, notifier.errors)
	assert.Empty(t, notifier.successes)

	mockAPI.m.Lock()
	mockAPI.err = nil
	mockAPI.m.Unlock()

	_, err = sut.Get(context.Background(), testIdent)
	require.NoError(t, err)
	assert.Equal(t, 1, mockAPI.getCalls, "un ajout échoué ne doit pas invalider le cache")
}

func TestCartChangeQuantity_PositiveUpdates(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.ChangeQuantity(context.Background(), testIdent, "p1", "i1", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, mockAPI.updateCalls)
	assert.Equal(t, 0, mockAPI.removeCalls)
}

func TestCartChangeQuantity_ZeroBecomesRemove(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.ChangeQuantity(context.Background(), testIdent, "p1", "i1", 0)
	require.NoError(t, err)

	assert.Equal(t, 0, mockAPI.updateCalls, "jamais d'update à quantité non positive")
	assert.Equal(t, 1, mockAPI.removeCalls)
	assert.Equal(t, "p1", mockAPI.removedProductID)
	assert.Equal(t, "i1", mockAPI.removedItemID)
}

func TestCartChangeQuantity_NegativeBecomesRemove(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.ChangeQuantity(context.Background(), testIdent, "p1", "i1", -2)
	require.NoError(t, err)

	assert.Equal(t, 0, mockAPI.updateCalls)
	assert.Equal(t, 1, mockAPI.removeCalls)
}

func TestCartRemove_InvalidatesCache(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})

	_, err := sut.Get(context.Background(), testIdent)
	require.NoError(t, err)

	_, err = sut.Remove(context.Background(), testIdent, "p1", "i1")
	require.NoError(t, err)

	_, err = sut.Get(context.Background(), testIdent)
	require.NoError(t, err)
	assert.Equal(t, 2, mockAPI.getCalls)
}

func TestCartMutations_RequireIdentity(t *testing.T) {
	mockAPI := &mockCartAPI{}
	sut := NewCartService(mockAPI, cache.NewMemoryStore(), &mockNotifier{})
	anonymous := session.Identity{}

	_, err := sut.Add(context.Background(), anonymous, "p1", 1)
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)

	_, err = sut.ChangeQuantity(context.Background(), anonymous, "p1", "i1", 2)
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)

	_, err = sut.Remove(context.Background(), anonymous, "p1", "i1")
	assert.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
}
