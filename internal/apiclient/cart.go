package apiclient

import (
	"context"
	"net/http"

	"vitrine_admin/internal/models"
	"vitrine_admin/internal/session"
)

// GetCart retourne le panier de l'utilisateur courant, items peuplés.
// Si l'utilisateur n'a pas encore de panier, le backend garantit un panier
// vide bien formé, pas une erreur.
func (c *Client) GetCart(ctx context.Context, ident session.Identity) (*models.Cart, error) {
	resp, err := c.do(ctx, ident, http.MethodGet, "/cart", "", nil)
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := decode(resp, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (c *Client) AddToCart(ctx context.Context, ident session.Identity, productID string, quantity int) (*models.Cart, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotAuthenticated
	}

	payload := struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}

	var cart models.Cart
	if err := c.postJSON(ctx, ident, "/cart/add", payload, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, ident session.Identity, productID string, quantity int) (*models.Cart, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotAuthenticated
	}

	payload := struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}

	var cart models.Cart
	if err := c.postJSON(ctx, ident, "/cart/update", payload, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem supprime une ligne du panier. Le payload porte itemId en plus
// de productId : quand la référence produit n'est plus résolvable, c'est
// l'identifiant de la ligne qui permet au backend de la retrouver proprement.
func (c *Client) RemoveCartItem(ctx context.Context, ident session.Identity, productID, itemID string) (*models.Cart, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotAuthenticated
	}

	payload := struct {
		ProductID string `json:"productId"`
		ItemID    string `json:"itemId,omitempty"`
	}{ProductID: productID, ItemID: itemID}

	var cart models.Cart
	if err := c.postJSON(ctx, ident, "/cart/remove", payload, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}
