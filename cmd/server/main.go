package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/cache"
	"vitrine_admin/internal/config"
	"vitrine_admin/internal/forms"
	"vitrine_admin/internal/handlers"
	"vitrine_admin/internal/middleware"
	"vitrine_admin/internal/routes"
	"vitrine_admin/internal/services"
	"vitrine_admin/internal/utils"
)

func main() {
	config.Load()

	store := cache.NewStore()

	services.ConnectMinio()
	previews, err := services.NewPreviewStore()
	if err != nil {
		log.Fatal("❌ Impossible d'initialiser les prévisualisations :", err)
	}

	api := apiclient.New(config.APIBaseURL())
	log.Println("✅ API catalogue :", config.APIBaseURL())

	hub := utils.NewHub()
	productService := services.NewProductService(api, store)
	cartService := services.NewCartService(api, store, hub)
	registry := forms.NewRegistry(30 * time.Minute)

	handlers.Init(productService, cartService, registry, previews, hub)

	r := gin.Default()
	r.Use(middleware.CORS())
	routes.RegisterRoutes(r, previews.LocalDir())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Dashboard Vitrine lancé sur le port", port)
	r.Run(":" + port)
}
