package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/forms"
	"vitrine_admin/internal/services"
	"vitrine_admin/internal/utils"
)

var (
	products *services.ProductService
	carts    *services.CartService
	registry *forms.Registry
	previews services.PreviewStore
	hub      *utils.Hub
)

// Init câble les dépendances des handlers, appelé une fois au démarrage.
func Init(p *services.ProductService, c *services.CartService, r *forms.Registry, pv services.PreviewStore, h *utils.Hub) {
	products = p
	carts = c
	registry = r
	previews = pv
	hub = h
}

// respondError traduit la taxonomie d'erreurs en réponse HTTP.
func respondError(c *gin.Context, err error) {
	var validation forms.Errors

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": validation})
	case errors.Is(err, services.ErrNotReady), errors.Is(err, apiclient.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
	case errors.Is(err, apiclient.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ressource introuvable"})
	case errors.Is(err, forms.ErrFormClosed):
		c.JSON(http.StatusGone, gin.H{"error": "Formulaire expiré"})
	case errors.Is(err, apiclient.ErrRemote):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Le service distant ne répond pas"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
