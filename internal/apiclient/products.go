package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"vitrine_admin/internal/models"
	"vitrine_admin/internal/session"
)

// Upload est un fichier brut à envoyer au backend dans une entrée multipart.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type CreateProductInput struct {
	Name        string
	Price       float64
	Description string
	Images      []Upload
}

type UpdateProductInput struct {
	ID          string
	Name        string
	Price       float64
	Description string
	// URLs des images déjà persistées à conserver
	KeptExistingURLs []string
	// Nouveaux fichiers à uploader
	NewImages []Upload
}

func (c *Client) ListProducts(ctx context.Context, ident session.Identity) ([]models.Product, error) {
	resp, err := c.do(ctx, ident, http.MethodGet, "/products", "", nil)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := decode(resp, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, ident session.Identity, id string) (*models.Product, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: identifiant produit manquant", ErrNotFound)
	}

	resp, err := c.do(ctx, ident, http.MethodGet, "/products/"+url.PathEscape(id), "", nil)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := decode(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, ident session.Identity, in CreateProductInput) (*models.Product, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotAuthenticated
	}

	body, contentType, err := encodeProductForm(in.Name, in.Price, in.Description, nil, in.Images)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ident, http.MethodPost, "/products", contentType, body)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := decode(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, ident session.Identity, in UpdateProductInput) (*models.Product, error) {
	if !ident.LoggedIn() {
		return nil, ErrNotAuthenticated
	}

	kept := in.KeptExistingURLs
	if kept == nil {
		kept = []string{}
	}

	body, contentType, err := encodeProductForm(in.Name, in.Price, in.Description, kept, in.NewImages)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, ident, http.MethodPut, "/products/"+url.PathEscape(in.ID), contentType, body)
	if err != nil {
		return nil, err
	}

	var p models.Product
	if err := decode(resp, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, ident session.Identity, id string) error {
	if !ident.LoggedIn() {
		return ErrNotAuthenticated
	}

	resp, err := c.do(ctx, ident, http.MethodDelete, "/products/"+url.PathEscape(id), "", nil)
	if err != nil {
		return err
	}
	return decode(resp, nil)
}

// encodeProductForm construit le corps multipart attendu par le backend :
// champs name/price/description, les URLs conservées dans "existingImages"
// (tableau JSON, uniquement pour la mise à jour) et chaque nouveau fichier
// dans une entrée "images" répétée.
func encodeProductForm(name string, price float64, description string, keptExistingURLs []string, images []Upload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	w.WriteField("name", name)
	w.WriteField("price", strconv.FormatFloat(price, 'f', -1, 64))
	w.WriteField("description", description)

	if keptExistingURLs != nil {
		data, err := json.Marshal(keptExistingURLs)
		if err != nil {
			return nil, "", fmt.Errorf("%w: encodage existingImages: %v", ErrRemote, err)
		}
		w.WriteField("existingImages", string(data))
	}

	for _, img := range images {
		part, err := createImagePart(w, img)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, img.Reader); err != nil {
			return nil, "", fmt.Errorf("%w: lecture image %s: %v", ErrRemote, img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func createImagePart(w *multipart.Writer, img Upload) (io.Writer, error) {
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(img.Filename)))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	return part, nil
}
