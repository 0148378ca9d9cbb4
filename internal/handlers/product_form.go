package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/forms"
	"vitrine_admin/internal/session"
)

// OpenProductForm ouvre un formulaire produit. Avec ?product=<id>, la
// variante édition est hydratée depuis le produit chargé ; sans, c'est la
// variante création qui part d'une sélection vide.
func OpenProductForm(c *gin.Context) {
	ident := session.FromContext(c)
	productID := c.Query("product")

	form := registry.Open(productID)

	if productID != "" {
		p, err := products.Get(c.Request.Context(), ident, productID)
		if err != nil {
			registry.Close(form.ID)
			respondError(c, err)
			return
		}
		form.HydrateFrom(p)
	}

	c.JSON(http.StatusOK, form.View())
}

// AddFormImages ajoute les fichiers du champ multipart "images" à la
// sélection. Le champ parallèle "lastModified" porte, par fichier, la date de
// modification que le navigateur connaît ; elle entre dans la clé de
// dédoublonnage (nom, taille, date).
func AddFormImages(c *gin.Context) {
	form, ok := registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Formulaire introuvable"})
		return
	}

	mf, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données multipart invalides"})
		return
	}

	headers := mf.File["images"]
	lastModified := mf.Value["lastModified"]

	selected := make([]forms.SelectedFile, 0, len(headers))
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for i, header := range headers {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier illisible : " + header.Filename})
			return
		}
		opened = append(opened, file)

		var modified int64
		if i < len(lastModified) {
			modified, _ = strconv.ParseInt(lastModified[i], 10, 64)
		}

		selected = append(selected, forms.SelectedFile{
			Filename:     header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Size:         header.Size,
			LastModified: modified,
			Reader:       file,
		})
	}

	if err := form.AddFiles(c.Request.Context(), previews, selected); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, form.View())
}

func RemoveFormImage(c *gin.Context) {
	form, ok := registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Formulaire introuvable"})
		return
	}

	if !form.Remove(c.Param("imageId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image introuvable"})
		return
	}

	c.JSON(http.StatusOK, form.View())
}

// SubmitProductForm pose les champs texte puis soumet le formulaire. Les
// erreurs de validation reviennent collectées en 422 et le formulaire reste
// éditable ; en cas de succès le front est renvoyé vers la liste des produits.
func SubmitProductForm(c *gin.Context) {
	ident := session.FromContext(c)

	form, ok := registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Formulaire introuvable"})
		return
	}

	var input struct {
		Name        string `json:"name"`
		Price       string `json:"price"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	form.SetFields(input.Name, input.Price, input.Description)

	product, err := form.Submit(c.Request.Context(), ident, products)
	if err != nil {
		respondError(c, err)
		return
	}

	registry.Close(form.ID)
	c.JSON(http.StatusOK, gin.H{
		"product":  product,
		"redirect": "/dashboard/products",
	})
}

// CloseProductForm démonte un formulaire sans soumettre : ses
// prévisualisations sont relâchées immédiatement.
func CloseProductForm(c *gin.Context) {
	registry.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Formulaire fermé"})
}
