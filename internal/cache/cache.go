package cache

import (
	"context"
	"time"
)

// TTL des lectures mises en cache. L'invalidation explicite après écriture
// reste la règle ; le TTL n'est qu'un filet de sécurité.
const (
	ProductCacheTTL = 10 * time.Minute
	CartCacheTTL    = 5 * time.Minute
)

// Clés de cache, alignées sur les entités du dashboard.
const (
	KeyProducts = "products"
	KeyProduct  = "product:" // + id produit
	KeyCart     = "cart:"    // + id utilisateur
)

// Store est le cache de lecture du dashboard : un simple get/set/invalidate.
// L'état est partagé entre toutes les requêtes ; on n'y écrit qu'au travers
// des invalidations déclenchées après le succès d'une mutation.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// NewStore choisit l'implémentation : Redis quand REDIS_HOST est configuré,
// sinon un cache mémoire local au processus.
func NewStore() Store {
	if store, err := InitRedis(); err == nil {
		return store
	}
	return NewMemoryStore()
}
