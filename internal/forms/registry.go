package forms

import (
	"log"
	"sync"
	"time"
)

// Registry tient les formulaires produit ouverts, indexés par identifiant.
// Un balayage périodique ferme les formulaires abandonnés pour garantir que
// leurs prévisualisations sont relâchées même sans démontage explicite.
type Registry struct {
	mu    sync.Mutex
	forms map[string]*ProductForm
	ttl   time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		forms: make(map[string]*ProductForm),
		ttl:   ttl,
	}
	go r.sweepLoop()
	return r
}

// Open crée un formulaire ; productID vide pour la variante création.
func (r *Registry) Open(productID string) *ProductForm {
	form := newProductForm(productID)

	r.mu.Lock()
	r.forms[form.ID] = form
	r.mu.Unlock()

	return form
}

func (r *Registry) Get(id string) (*ProductForm, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, ok := r.forms[id]
	return form, ok
}

// Close ferme un formulaire et l'oublie. Sans effet s'il n'existe pas.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	form, ok := r.forms[id]
	delete(r.forms, id)
	r.mu.Unlock()

	if ok {
		form.Close()
	}
}

// SweepExpired ferme les formulaires inactifs depuis plus longtemps que le
// TTL et retourne le nombre de formulaires fermés.
func (r *Registry) SweepExpired(now time.Time) int {
	r.mu.Lock()
	var expired []*ProductForm
	for id, form := range r.forms {
		if form.expired(now, r.ttl) {
			expired = append(expired, form)
			delete(r.forms, id)
		}
	}
	r.mu.Unlock()

	for _, form := range expired {
		form.Close()
	}
	if len(expired) > 0 {
		log.Printf("🧹 %d formulaire(s) abandonné(s) fermé(s)", len(expired))
	}
	return len(expired)
}

func (r *Registry) sweepLoop() {
	interval := r.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		r.SweepExpired(time.Now())
	}
}
