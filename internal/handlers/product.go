package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/models"
	"vitrine_admin/internal/session"
)

func GetAllProducts(c *gin.Context) {
	ident := session.FromContext(c)

	list, err := products.List(c.Request.Context(), ident)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Product{} // jamais null côté front
	}

	c.JSON(http.StatusOK, list)
}

func GetProduct(c *gin.Context) {
	ident := session.FromContext(c)

	p, err := products.Get(c.Request.Context(), ident, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func DeleteProduct(c *gin.Context) {
	ident := session.FromContext(c)

	if err := products.Delete(c.Request.Context(), ident, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
