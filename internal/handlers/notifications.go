package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// NotificationsWebSocket pousse les toasts transitoires (ajout au panier
// réussi ou échoué) vers le navigateur de l'utilisateur connecté.
func NotificationsWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Notifications activées",
	})

	for {
		select {
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(n); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
