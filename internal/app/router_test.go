package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/belekbox-shop/internal/app"
	"github.com/linemk/belekbox-shop/internal/assets"
	"github.com/linemk/belekbox-shop/internal/auth"
	"github.com/linemk/belekbox-shop/internal/domain/models"
	"github.com/linemk/belekbox-shop/internal/lib/logger"
	"github.com/linemk/belekbox-shop/internal/service"
)

// stubCatalog считает вызовы, чтобы убедиться, что запрос не дошёл до сервиса
type stubCatalog struct {
	products []*models.Product
	calls    int
}

var _ service.CatalogService = (*stubCatalog)(nil)

func (s *stubCatalog) ListAvailable(ctx context.Context) ([]*models.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) ListAll(ctx context.Context) ([]*models.Product, error) {
	s.calls++
	return s.products, nil
}

func (s *stubCatalog) Create(ctx context.Context, input models.NewProduct, image *assets.Upload) (int64, error) {
	s.calls++
	return 1, nil
}

func (s *stubCatalog) Update(ctx context.Context, id int64, patch models.ProductPatch, image *assets.Upload) error {
	s.calls++
	return nil
}

func (s *stubCatalog) Delete(ctx context.Context, id int64) error {
	s.calls++
	return nil
}

func (s *stubCatalog) SetAllVisibility(ctx context.Context, visible bool) (int64, error) {
	s.calls++
	return 0, nil
}

type stubOrders struct {
	calls int
}

var _ service.OrderService = (*stubOrders)(nil)

func (s *stubOrders) Create(ctx context.Context, input service.CreateOrderInput) (*service.OrderResult, error) {
	return &service.OrderResult{}, nil
}

func (s *stubOrders) ListAll(ctx context.Context) ([]*models.Order, error) {
	s.calls++
	return nil, nil
}

type testServer struct {
	*httptest.Server
	dir     string
	catalog *stubCatalog
	orders  *stubOrders
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	store, err := assets.NewLocalStore(logger.Discard(), dir, "/uploads/products", assets.Policy{})
	require.NoError(t, err)

	catalog := &stubCatalog{products: []*models.Product{{ID: 1, Name: "Бокс", Description: "d", Price: 100, IsAvailable: true}}}
	orders := &stubOrders{}
	router := app.NewRouter(logger.Discard(), app.Services{
		Catalog:  catalog,
		Orders:   orders,
		Verifier: auth.NewSecretVerifier(auth.Credentials{Password: "admin123"}),
		Images:   store,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, dir: dir, catalog: catalog, orders: orders}
}

func do(t *testing.T, method, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	return do(t, http.MethodGet, url, token)
}

func TestRouter_PublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/health", "").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/products", "").StatusCode)
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/products"},
		{http.MethodPost, "/api/admin/products"},
		{http.MethodPut, "/api/admin/products/1"},
		{http.MethodDelete, "/api/admin/products/1"},
		{http.MethodGet, "/api/admin/orders"},
		{http.MethodPost, "/api/admin/hide-all"},
		{http.MethodPost, "/api/admin/show-all"},
	}
	tokens := map[string]string{
		"no header":   "",
		"wrong token": "wrong",
		"prefix only": "admin",
	}

	srv := newTestServer(t)
	for _, route := range routes {
		for name, token := range tokens {
			t.Run(route.method+" "+route.path+" "+name, func(t *testing.T) {
				resp := do(t, route.method, srv.URL+route.path, token)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

				var body struct {
					Success bool   `json:"success"`
					Error   string `json:"error"`
				}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.False(t, body.Success)
				assert.NotEmpty(t, body.Error)
			})
		}
	}
	assert.Zero(t, srv.catalog.calls, "catalog must not be reached without a valid token")
	assert.Zero(t, srv.orders.calls, "orders must not be reached without a valid token")
}

func TestRouter_AdminRoutesWithToken(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/admin/products", "admin123").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, srv.URL+"/api/admin/orders", "admin123").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, http.MethodDelete, srv.URL+"/api/admin/products/1", "admin123").StatusCode)
	assert.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/admin/hide-all", "admin123").StatusCode)
	assert.Equal(t, 3, srv.catalog.calls)
	assert.Equal(t, 1, srv.orders.calls)
}

func TestRouter_ServesUploads(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.dir, "abc.png"), []byte("png-bytes"), 0o644))

	resp := get(t, srv.URL+"/uploads/products/abc.png", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(body))

	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/uploads/products/", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, get(t, srv.URL+"/uploads/products/missing.png", "").StatusCode)
}
