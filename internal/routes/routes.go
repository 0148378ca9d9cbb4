package routes

import (
	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/handlers"
	"vitrine_admin/internal/middleware"
)

// RegisterRoutes enregistre la surface HTTP du dashboard. previewDir est le
// dossier des prévisualisations locales, vide quand elles sont sur MinIO.
func RegisterRoutes(r *gin.Engine, previewDir string) {
	if previewDir != "" {
		r.Static("/previews", previewDir)
	}

	api := r.Group("/api", middleware.AuthRequired(), middleware.APIRateLimit())

	// Produits
	api.GET("/products", handlers.GetAllProducts)
	api.GET("/products/:id", handlers.GetProduct)
	api.DELETE("/products/:id", handlers.DeleteProduct)

	// Formulaires produit (création et édition)
	api.POST("/product-forms", handlers.OpenProductForm)
	api.POST("/product-forms/:id/images", handlers.AddFormImages)
	api.DELETE("/product-forms/:id/images/:imageId", handlers.RemoveFormImage)
	api.POST("/product-forms/:id/submit", handlers.SubmitProductForm)
	api.DELETE("/product-forms/:id", handlers.CloseProductForm)

	// Panier
	api.GET("/cart", handlers.GetCart)
	api.POST("/cart/add", handlers.AddToCart)
	api.POST("/cart/update", handlers.UpdateCartItem)
	api.POST("/cart/remove", handlers.RemoveFromCart)

	// Notifications temps réel
	api.GET("/ws/notifications", handlers.NotificationsWebSocket)
}
