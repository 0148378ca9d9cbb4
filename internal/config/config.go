package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// APIBaseURL retourne la base de l'API catalogue distante.
// Le suffixe /api fait partie du contrat, tout comme le fallback.
func APIBaseURL() string {
	if base := os.Getenv("API_URL"); base != "" {
		return base + "/api"
	}
	return "https://ourapp.space/api"
}
