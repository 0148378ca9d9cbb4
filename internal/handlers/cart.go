package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/session"
	"vitrine_admin/internal/utils"
)

// cartRow est la ligne de panier telle que le dashboard l'affiche. Une ligne
// dont le produit n'existe plus reste affichée et supprimable, elle ne fait
// jamais échouer la vue.
type cartRow struct {
	ItemID    string  `json:"itemId"`
	Available bool    `json:"available"`
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

func GetCart(c *gin.Context) {
	ident := session.FromContext(c)

	cart, err := carts.Get(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([]cartRow, 0, len(cart.Items))
	total := 0.0

	for _, item := range cart.Items {
		if !item.Product.Resolved() {
			// Contribue zéro au total mais reste supprimable par itemId
			rows = append(rows, cartRow{
				ItemID:    item.ID,
				Available: false,
				ProductID: item.Product.RawID(),
				Name:      "Produit indisponible",
				Quantity:  item.Quantity,
			})
			continue
		}

		p := item.Product.Product
		line := p.Price * float64(item.Quantity)
		total += line

		image := ""
		if len(p.Images) > 0 {
			image = utils.DisplayURL(p.Images[0], 160, 160)
		}

		rows = append(rows, cartRow{
			ItemID:    item.ID,
			Available: true,
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
			LineTotal: line,
			ImageURL:  image,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"userId": cart.UserID,
		"items":  rows,
		"total":  total,
	})
}

func AddToCart(c *gin.Context) {
	ident := session.FromContext(c)

	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId requis"})
		return
	}

	cart, err := carts.Add(c.Request.Context(), ident, input.ProductID, input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"cart":    cart,
	})
}

// UpdateCartItem applique le pas de quantité du front : une quantité finale
// ≤ 0 est traduite en suppression par la couche panier, jamais envoyée telle
// quelle au backend.
func UpdateCartItem(c *gin.Context) {
	ident := session.FromContext(c)

	var input struct {
		ProductID string `json:"productId"`
		ItemID    string `json:"itemId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId requis"})
		return
	}

	cart, err := carts.ChangeQuantity(c.Request.Context(), ident, input.ProductID, input.ItemID, input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cart": cart})
}

func RemoveFromCart(c *gin.Context) {
	ident := session.FromContext(c)

	var input struct {
		ProductID string `json:"productId"`
		ItemID    string `json:"itemId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || (input.ProductID == "" && input.ItemID == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId ou itemId requis"})
		return
	}

	cart, err := carts.Remove(c.Request.Context(), ident, input.ProductID, input.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit supprimé du panier",
		"cart":    cart,
	})
}
