package forms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/models"
	"vitrine_admin/internal/services"
	"vitrine_admin/internal/session"
)

// Bornes de la sélection d'images, validées à la soumission.
const (
	MinImages = 3
	MaxImages = 3
)

var ErrFormClosed = errors.New("formulaire fermé")

// Errors porte les erreurs de validation collectées champ par champ. Toutes
// les règles violées sont rapportées d'un coup, pas seulement la première.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation: " + strings.Join(parts, "; ")
}

type EntryKind string

const (
	// EntryExisting : URL déjà persistée côté backend, rien à uploader.
	EntryExisting EntryKind = "existing"
	// EntryNew : fichier local mis en attente avec une prévisualisation.
	EntryNew EntryKind = "new"
)

// ImageEntry est un élément de la sélection d'images du formulaire.
type ImageEntry struct {
	ID   string
	Kind EntryKind
	URL  string

	filename    string
	contentType string
	dedupeKey   string
	staged      *services.Staged
}

// EntryView est la projection d'une entrée pour l'affichage.
type EntryView struct {
	ID   string    `json:"id"`
	Kind EntryKind `json:"type"`
	URL  string    `json:"url"`
}

// SelectedFile est un fichier choisi par l'utilisateur, accompagné des
// métadonnées que le navigateur connaît du fichier d'origine.
type SelectedFile struct {
	Filename     string
	ContentType  string
	Size         int64
	LastModified int64
	Reader       io.Reader
}

// DedupeKey identifie un fichier côté client : deux sélections du même
// fichier dans la même session produisent la même clé.
func (f SelectedFile) DedupeKey() string {
	return fmt.Sprintf("%s-%d-%d", f.Filename, f.Size, f.LastModified)
}

// ProductForm est l'état d'un formulaire produit (création ou édition) côté
// serveur. Les champs texte sont écrasés à chaque requête ; la sélection
// d'images vit entre les requêtes et possède ses prévisualisations, relâchées
// au retrait d'une entrée, à la soumission réussie ou au démontage.
type ProductForm struct {
	mu sync.Mutex

	ID string
	// ProductID vide = variante création
	ProductID string

	Name        string
	Price       string
	Description string

	entries    []*ImageEntry
	lastActive time.Time
	closed     bool
}

func newProductForm(productID string) *ProductForm {
	return &ProductForm{
		ID:         uuid.NewString(),
		ProductID:  productID,
		lastActive: time.Now(),
	}
}

// HydrateFrom initialise la variante édition depuis le produit chargé :
// les images persistées deviennent des entrées "existing" de la sélection.
func (f *ProductForm) HydrateFrom(p *models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Name = p.Name
	f.Price = strconv.FormatFloat(p.Price, 'f', -1, 64)
	f.Description = p.Description

	f.entries = f.entries[:0]
	for _, url := range p.Images {
		f.entries = append(f.entries, &ImageEntry{
			ID:   uuid.NewString(),
			Kind: EntryExisting,
			URL:  url,
		})
	}
	f.lastActive = time.Now()
}

func (f *ProductForm) SetFields(name, price, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Name = name
	f.Price = price
	f.Description = description
	f.lastActive = time.Now()
}

// AddFiles ajoute des fichiers à la sélection. Un fichier déjà sélectionné
// (même nom, même taille, même date de modification) est ignoré ; au-delà des
// emplacements restants, les fichiers surnuméraires sont ignorés aussi.
func (f *ProductForm) AddFiles(ctx context.Context, previews services.PreviewStore, files []SelectedFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFormClosed
	}
	f.lastActive = time.Now()

	seen := make(map[string]bool)
	for _, entry := range f.entries {
		if entry.Kind == EntryNew {
			seen[entry.dedupeKey] = true
		}
	}

	for _, file := range files {
		if len(f.entries) >= MaxImages {
			break
		}

		key := file.DedupeKey()
		if seen[key] {
			continue
		}

		staged, err := previews.Stage(ctx, file.Filename, file.ContentType, file.Reader, file.Size)
		if err != nil {
			return err
		}

		f.entries = append(f.entries, &ImageEntry{
			ID:          uuid.NewString(),
			Kind:        EntryNew,
			URL:         staged.URL,
			filename:    file.Filename,
			contentType: file.ContentType,
			dedupeKey:   key,
			staged:      staged,
		})
		seen[key] = true
	}

	return nil
}

// Remove retire une entrée de la sélection et relâche sa prévisualisation.
func (f *ProductForm) Remove(entryID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastActive = time.Now()
	for i, entry := range f.entries {
		if entry.ID == entryID {
			if entry.staged != nil {
				entry.staged.Release()
			}
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return true
		}
	}
	return false
}

// View est la projection complète du formulaire pour le front.
type View struct {
	ID          string      `json:"id"`
	ProductID   string      `json:"productId,omitempty"`
	Name        string      `json:"name"`
	Price       string      `json:"price"`
	Description string      `json:"description"`
	Images      []EntryView `json:"images"`
}

func (f *ProductForm) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	images := make([]EntryView, 0, len(f.entries))
	for _, entry := range f.entries {
		images = append(images, EntryView{ID: entry.ID, Kind: entry.Kind, URL: entry.URL})
	}
	return View{
		ID:          f.ID,
		ProductID:   f.ProductID,
		Name:        f.Name,
		Price:       f.Price,
		Description: f.Description,
		Images:      images,
	}
}

// Entries retourne la sélection dans l'ordre, pour l'affichage.
func (f *ProductForm) Entries() []EntryView {
	f.mu.Lock()
	defer f.mu.Unlock()

	views := make([]EntryView, 0, len(f.entries))
	for _, entry := range f.entries {
		views = append(views, EntryView{ID: entry.ID, Kind: entry.Kind, URL: entry.URL})
	}
	return views
}

// validate évalue toutes les règles d'un coup ; à appeler sous verrou.
func (f *ProductForm) validate() (float64, Errors) {
	errs := Errors{}

	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "Le nom est requis"
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || price <= 0 {
		errs["price"] = "Un prix valide est requis"
	}

	if len(f.entries) < MinImages {
		errs["images"] = fmt.Sprintf("Au moins %d images sont requises", MinImages)
	} else if len(f.entries) > MaxImages {
		errs["images"] = fmt.Sprintf("Maximum %d images autorisées", MaxImages)
	}

	if len(errs) > 0 {
		return 0, errs
	}
	return price, nil
}

// Submit valide le formulaire puis délègue à la couche produits. En cas
// d'erreur de validation, aucun appel réseau n'est émis et le formulaire reste
// éditable. En cas de succès, le formulaire est fermé et ses prévisualisations
// relâchées ; en cas d'échec distant, tout reste en place pour réessayer.
func (f *ProductForm) Submit(ctx context.Context, ident session.Identity, products *services.ProductService) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFormClosed
	}
	f.lastActive = time.Now()

	price, errs := f.validate()
	if errs != nil {
		return nil, errs
	}

	// Partition de la sélection : URLs conservées d'un côté, nouveaux
	// fichiers à uploader de l'autre, dans l'ordre de la sélection.
	var kept []string
	var uploads []apiclient.Upload
	var readers []io.Closer
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()

	for _, entry := range f.entries {
		switch entry.Kind {
		case EntryExisting:
			kept = append(kept, entry.URL)
		case EntryNew:
			rc, err := entry.staged.Open()
			if err != nil {
				return nil, fmt.Errorf("relecture de l'image %s: %v", entry.filename, err)
			}
			readers = append(readers, rc)
			uploads = append(uploads, apiclient.Upload{
				Filename:    entry.filename,
				ContentType: entry.contentType,
				Size:        entry.staged.Size,
				Reader:      rc,
			})
		}
	}

	var (
		product *models.Product
		err     error
	)
	if f.ProductID == "" {
		product, err = products.Create(ctx, ident, apiclient.CreateProductInput{
			Name:        strings.TrimSpace(f.Name),
			Price:       price,
			Description: strings.TrimSpace(f.Description),
			Images:      uploads,
		})
	} else {
		product, err = products.Update(ctx, ident, apiclient.UpdateProductInput{
			ID:               f.ProductID,
			Name:             strings.TrimSpace(f.Name),
			Price:            price,
			Description:      strings.TrimSpace(f.Description),
			KeptExistingURLs: kept,
			NewImages:        uploads,
		})
	}
	if err != nil {
		return nil, err
	}

	f.closeLocked()
	return product, nil
}

// Close relâche toutes les prévisualisations restantes. Idempotent ; appelé
// au démontage explicite, après une soumission réussie et par le balayage des
// formulaires abandonnés.
func (f *ProductForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

func (f *ProductForm) closeLocked() {
	if f.closed {
		return
	}
	for _, entry := range f.entries {
		if entry.staged != nil {
			entry.staged.Release()
		}
	}
	f.entries = nil
	f.closed = true
}

func (f *ProductForm) expired(now time.Time, ttl time.Duration) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return now.Sub(f.lastActive) > ttl
}
