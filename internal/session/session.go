package session

import "github.com/gin-gonic/gin"

// Identity porte l'identifiant de l'utilisateur connecté, extrait du token de
// session par le middleware d'authentification. On le passe explicitement aux
// couches d'accès aux données plutôt que de relire le contexte à chaque appel.
type Identity struct {
	UserID string
}

func (i Identity) LoggedIn() bool {
	return i.UserID != ""
}

// FromContext relit l'identité posée dans le contexte Gin par AuthRequired.
// Retourne une identité vide si la requête n'est pas authentifiée.
func FromContext(c *gin.Context) Identity {
	return Identity{UserID: c.GetString("user_id")}
}
