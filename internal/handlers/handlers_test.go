package handlers

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vitrine_admin/internal/apiclient"
	"vitrine_admin/internal/cache"
	"vitrine_admin/internal/forms"
	"vitrine_admin/internal/models"
	"vitrine_admin/internal/services"
	"vitrine_admin/internal/session"
	"vitrine_admin/internal/utils"
)

// fakeAPI joue le backend distant pour les deux couches d'accès.
type fakeAPI struct {
	m sync.RWMutex

	productList []models.Product
	cart        *models.Cart
	err         error

	updateCalls int
	removeCalls int

	removedProductID string
	removedItemID    string
}

func (a *fakeAPI) ListProducts(_ context.Context, _ session.Identity) ([]models.Product, error) {
	a.m.RLock()
	defer a.m.RUnlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.productList, nil
}

func (a *fakeAPI) GetProduct(_ context.Context, _ session.Identity, id string) (*models.Product, error) {
	a.m.RLock()
	defer a.m.RUnlock()
	if a.err != nil {
		return nil, a.err
	}
	for i := range a.productList {
		if a.productList[i].ID == id {
			return &a.productList[i], nil
		}
	}
	return nil, apiclient.ErrNotFound
}

func (a *fakeAPI) CreateProduct(_ context.Context, _ session.Identity, in apiclient.CreateProductInput) (*models.Product, error) {
	a.m.Lock()
	defer a.m.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	p := models.Product{ID: "nouveau", Name: in.Name, Price: in.Price, Description: in.Description}
	a.productList = append(a.productList, p)
	return &p, nil
}

func (a *fakeAPI) UpdateProduct(_ context.Context, _ session.Identity, in apiclient.UpdateProductInput) (*models.Product, error) {
	a.m.Lock()
	defer a.m.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return &models.Product{ID: in.ID, Name: in.Name, Price: in.Price}, nil
}

func (a *fakeAPI) DeleteProduct(_ context.Context, _ session.Identity, _ string) error {
	a.m.RLock()
	defer a.m.RUnlock()
	return a.err
}

func (a *fakeAPI) GetCart(_ context.Context, ident session.Identity) (*models.Cart, error) {
	a.m.RLock()
	defer a.m.RUnlock()
	if a.err != nil {
		return nil, a.err
	}
	if a.cart != nil {
		return a.cart, nil
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

func (a *fakeAPI) AddToCart(_ context.Context, ident session.Identity, _ string, _ int) (*models.Cart, error) {
	a.m.RLock()
	defer a.m.RUnlock()
	if a.err != nil {
		return nil, a.err
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

func (a *fakeAPI) UpdateCartItem(_ context.Context, ident session.Identity, _ string, _ int) (*models.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.updateCalls++
	if a.err != nil {
		return nil, a.err
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

func (a *fakeAPI) RemoveCartItem(_ context.Context, ident session.Identity, productID, itemID string) (*models.Cart, error) {
	a.m.Lock()
	defer a.m.Unlock()
	a.removeCalls++
	a.removedProductID = productID
	a.removedItemID = itemID
	if a.err != nil {
		return nil, a.err
	}
	return &models.Cart{UserID: ident.UserID, Items: []models.CartItem{}}, nil
}

type fakePreviews struct {
	m sync.Mutex

	staged   int
	released int
}

func (f *fakePreviews) Stage(_ context.Context, filename, _ string, r io.Reader, size int64) (*services.Staged, error) {
	f.m.Lock()
	defer f.m.Unlock()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.staged++

	return services.NewStaged("/previews/"+filename, size,
		func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
		func() {
			f.m.Lock()
			f.released++
			f.m.Unlock()
		}), nil
}

func (f *fakePreviews) LocalDir() string { return "" }

// setupRouter câble les handlers sur le faux backend et retourne un moteur de
// test où chaque requête porte l'identité u1.
func setupRouter(t *testing.T, api *fakeAPI) (*gin.Engine, *fakePreviews) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.NewMemoryStore()
	pv := &fakePreviews{}
	h := utils.NewHub()

	Init(
		services.NewProductService(api, store),
		services.NewCartService(api, store, h),
		forms.NewRegistry(time.Hour),
		pv,
		h,
	)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", "u1") })

	r.GET("/api/products", GetAllProducts)
	r.GET("/api/products/:id", GetProduct)
	r.DELETE("/api/products/:id", DeleteProduct)

	r.POST("/api/product-forms", OpenProductForm)
	r.POST("/api/product-forms/:id/images", AddFormImages)
	r.DELETE("/api/product-forms/:id/images/:imageId", RemoveFormImage)
	r.POST("/api/product-forms/:id/submit", SubmitProductForm)
	r.DELETE("/api/product-forms/:id", CloseProductForm)

	r.GET("/api/cart", GetCart)
	r.POST("/api/cart/add", AddToCart)
	r.POST("/api/cart/update", UpdateCartItem)
	r.POST("/api/cart/remove", RemoveFromCart)

	return r, pv
}
