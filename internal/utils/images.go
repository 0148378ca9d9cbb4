package utils

import (
	"fmt"
	"strings"
)

const uploadSegment = "/upload/"

// DisplayURL insère les paramètres de redimensionnement dans l'URL d'une
// image pour l'affichage (recadrage, qualité et format automatiques). Pur
// confort de rendu : l'URL d'origine reste celle du contrat de données.
func DisplayURL(url string, width, height int) string {
	if url == "" || !strings.Contains(url, uploadSegment) {
		return url
	}
	transform := fmt.Sprintf("%sc_fill,w_%d,h_%d,q_auto,f_auto/", uploadSegment, width, height)
	return strings.Replace(url, uploadSegment, transform, 1)
}
