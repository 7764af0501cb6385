// Package e2e runs the shop HTTP API end to end against file-backed collections.
// Each test gets fresh products and carts files in its own temp directory, and the
// real application handler is served by an httptest.Server.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/abgdnv/flatshop/internal/app"
	"github.com/abgdnv/flatshop/internal/cart"
	"github.com/abgdnv/flatshop/internal/config"
	"github.com/abgdnv/flatshop/internal/product"
	pkgconfig "github.com/abgdnv/flatshop/pkg/config"
	"github.com/abgdnv/flatshop/pkg/messaging"
	"github.com/abgdnv/flatshop/pkg/money"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "SHOP_SKIP_E2E_TESTS"

const (
	productsURL = "/api/products"
	cartsURL    = "/api/carts"
)

type ShopE2ESuite struct {
	suite.Suite
	ctx          context.Context
	logger       *slog.Logger
	dir          string
	server       *httptest.Server
	httpClient   *http.Client
	closeStorage func()
}

func TestShopE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(ShopE2ESuite))
}

func (s *ShopE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// SetupTest starts a lenient server over empty collections.
func (s *ShopE2ESuite) SetupTest() {
	s.startServer(false)
}

func (s *ShopE2ESuite) TearDownTest() {
	s.stopServer()
}

func (s *ShopE2ESuite) startServer(strict bool) {
	s.T().Helper()
	s.dir = s.T().TempDir()

	var storageCfg pkgconfig.StorageConfig
	storageCfg.Driver = pkgconfig.StorageDriverFile
	storageCfg.File.Products = filepath.Join(s.dir, "products.json")
	storageCfg.File.Carts = filepath.Join(s.dir, "carts.json")

	repos, closeStorage, err := app.SetupRepositories(s.ctx, storageCfg, s.logger)
	require.NoError(s.T(), err, "Failed to set up file repositories")

	var cfg config.Config
	cfg.Storage = storageCfg
	cfg.API.StrictErrors = strict

	deps := app.SetupDependencies(repos, messaging.NopPublisher{}, &cfg, s.logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
	s.closeStorage = closeStorage
}

func (s *ShopE2ESuite) stopServer() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
	if s.closeStorage != nil {
		s.closeStorage()
		s.closeStorage = nil
	}
}

// restartStrict swaps the running server for a strict one over new collections.
func (s *ShopE2ESuite) restartStrict() {
	s.stopServer()
	s.startServer(true)
}

// ---------- helpers ----------

func (s *ShopE2ESuite) doRequest(method, path string, body []byte) ([]byte, int) {
	s.T().Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(s.ctx, method, s.server.URL+path, reader)
	require.NoError(s.T(), err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err, "HTTP request failed")
	defer func() {
		require.NoError(s.T(), resp.Body.Close(), "Failed to close response body")
	}()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err, "Failed to read response body")
	return respBody, resp.StatusCode
}

func (s *ShopE2ESuite) doJSON(method, path string, payload any) ([]byte, int) {
	s.T().Helper()
	body, err := json.Marshal(payload)
	require.NoError(s.T(), err)
	return s.doRequest(method, path, body)
}

func (s *ShopE2ESuite) listProducts() []product.Product {
	s.T().Helper()
	body, status := s.doRequest(http.MethodGet, productsURL, nil)
	require.Equal(s.T(), http.StatusOK, status)
	var products []product.Product
	require.NoError(s.T(), json.Unmarshal(body, &products))
	return products
}

func (s *ShopE2ESuite) createCart() cart.Cart {
	s.T().Helper()
	body, status := s.doRequest(http.MethodPost, cartsURL, nil)
	require.Contains(s.T(), []int{http.StatusOK, http.StatusCreated}, status)
	var created cart.Cart
	require.NoError(s.T(), json.Unmarshal(body, &created))
	return created
}

func (s *ShopE2ESuite) cartItems(id string) ([]cart.Item, int) {
	s.T().Helper()
	body, status := s.doRequest(http.MethodGet, cartsURL+"/"+id, nil)
	var items []cart.Item
	if status == http.StatusOK {
		require.NoError(s.T(), json.Unmarshal(body, &items))
	}
	return items, status
}

func productPayload(code string) map[string]any {
	return map[string]any{
		"title":       "Widget",
		"description": "A widget",
		"price":       9.99,
		"thumbnail":   "widget.png",
		"code":        code,
		"stock":       5,
		"category":    "tools",
		"thumbnails":  []string{"a.png", "b.png"},
	}
}

// ---------- products ----------

func (s *ShopE2ESuite) TestProducts_AddThenList() {
	// given
	payload := productPayload("W-1")

	// when
	body, status := s.doJSON(http.MethodPost, productsURL, payload)

	// then
	s.Equal(http.StatusOK, status)
	expected, _ := json.Marshal(payload)
	s.JSONEq(string(expected), string(body), "lenient add echoes the submitted body")

	products := s.listProducts()
	s.Require().Len(products, 1)
	got := products[0]
	s.NotEmpty(got.ID)
	s.Equal("Widget", got.Title)
	s.Equal("A widget", got.Description)
	s.True(money.RequireFromString("9.99").Equal(got.Price.Decimal))
	s.Equal("widget.png", got.Thumbnail)
	s.Equal("W-1", got.Code)
	s.Equal(5.0, got.Stock)
	s.Equal("tools", got.Category)
	s.Equal([]string{"a.png", "b.png"}, got.Thumbnails)

	fetched, status := s.doRequest(http.MethodGet, productsURL+"/"+got.ID, nil)
	s.Equal(http.StatusOK, status)
	var byID product.Product
	s.Require().NoError(json.Unmarshal(fetched, &byID))
	s.Equal(got.ID, byID.ID)
}

func (s *ShopE2ESuite) TestProducts_PersistedToFile() {
	// given
	_, status := s.doJSON(http.MethodPost, productsURL, productPayload("W-1"))
	s.Require().Equal(http.StatusOK, status)

	// when
	raw, err := os.ReadFile(filepath.Join(s.dir, "products.json"))

	// then
	s.Require().NoError(err)
	var onDisk []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &onDisk))
	s.Require().Len(onDisk, 1)
	s.Equal("W-1", onDisk[0]["code"])
	s.Equal(9.99, onDisk[0]["price"], "price is stored as a JSON number")
}

func (s *ShopE2ESuite) TestProducts_LenientRejectionsAreSilent() {
	// given
	_, status := s.doJSON(http.MethodPost, productsURL, productPayload("W-1"))
	s.Require().Equal(http.StatusOK, status)
	missingTitle := productPayload("W-2")
	delete(missingTitle, "title")

	// when
	_, duplicateStatus := s.doJSON(http.MethodPost, productsURL, productPayload("W-1"))
	_, invalidStatus := s.doJSON(http.MethodPost, productsURL, missingTitle)
	_, deleteStatus := s.doRequest(http.MethodDelete, productsURL+"/does-not-exist", nil)
	_, malformedStatus := s.doRequest(http.MethodPost, productsURL, []byte(`{"title":`))

	// then
	s.Equal(http.StatusOK, duplicateStatus)
	s.Equal(http.StatusOK, invalidStatus)
	s.Equal(http.StatusNoContent, deleteStatus)
	s.Equal(http.StatusBadRequest, malformedStatus)
	s.Len(s.listProducts(), 1)
}

func (s *ShopE2ESuite) TestProducts_LenientNumericAndTyping() {
	// given
	fractional := productPayload("W-1")
	fractional["stock"] = 5.5
	stringTyped := []byte(`{"title":"T","stock":"5"}`)

	// when
	_, fractionalStatus := s.doJSON(http.MethodPost, productsURL, fractional)
	typedBody, typedStatus := s.doRequest(http.MethodPost, productsURL, stringTyped)
	emptyBody, emptyStatus := s.doRequest(http.MethodPost, productsURL, []byte{})

	// then
	s.Equal(http.StatusOK, fractionalStatus)
	s.Equal(http.StatusOK, typedStatus)
	s.JSONEq(string(stringTyped), string(typedBody))
	s.Equal(http.StatusOK, emptyStatus)
	s.JSONEq(`{}`, string(emptyBody))

	products := s.listProducts()
	s.Require().Len(products, 1)
	s.Equal(5.5, products[0].Stock)
}

func (s *ShopE2ESuite) TestProducts_UpdateAndDelete() {
	// given
	_, status := s.doJSON(http.MethodPost, productsURL, productPayload("W-1"))
	s.Require().Equal(http.StatusOK, status)
	id := s.listProducts()[0].ID

	// when
	body, status := s.doJSON(http.MethodPut, productsURL+"/"+id, map[string]any{"stock": 1, "id": "hijack"})

	// then
	s.Require().Equal(http.StatusOK, status)
	var updated product.Product
	s.Require().NoError(json.Unmarshal(body, &updated))
	s.Equal(id, updated.ID, "identifier never changes")
	s.Equal(1.0, updated.Stock)
	s.Equal("Widget", updated.Title)

	_, status = s.doRequest(http.MethodDelete, productsURL+"/"+id, nil)
	s.Equal(http.StatusNoContent, status)
	s.Empty(s.listProducts())

	_, status = s.doRequest(http.MethodGet, productsURL+"/"+id, nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *ShopE2ESuite) TestProducts_Strict() {
	// given
	s.restartStrict()
	missingStock := productPayload("W-2")
	delete(missingStock, "stock")

	// when
	created, createdStatus := s.doJSON(http.MethodPost, productsURL, productPayload("W-1"))
	_, duplicateStatus := s.doJSON(http.MethodPost, productsURL, productPayload("W-1"))
	invalid, invalidStatus := s.doJSON(http.MethodPost, productsURL, missingStock)
	_, deleteStatus := s.doRequest(http.MethodDelete, productsURL+"/does-not-exist", nil)
	typed, typedStatus := s.doRequest(http.MethodPost, productsURL, []byte(`{"title":"T","stock":"5"}`))

	// then
	s.Equal(http.StatusCreated, createdStatus)
	s.Equal(http.StatusBadRequest, typedStatus)
	s.JSONEq(`{"validation_errors":{"stock":"failed on rule: type"}}`, string(typed))
	var p product.Product
	s.Require().NoError(json.Unmarshal(created, &p))
	s.NotEmpty(p.ID)
	s.Equal(http.StatusConflict, duplicateStatus)
	s.Equal(http.StatusBadRequest, invalidStatus)
	s.Contains(string(invalid), "validation_errors")
	s.Equal(http.StatusNotFound, deleteStatus)
	s.Len(s.listProducts(), 1)
}

// ---------- carts ----------

func (s *ShopE2ESuite) TestCarts_AddItemAccumulates() {
	// given
	created := s.createCart()
	s.Require().NotEmpty(created.ID)
	s.Empty(created.Products)
	itemURL := cartsURL + "/" + created.ID + "/product/"

	// when
	_, first := s.doJSON(http.MethodPost, itemURL+"p1", map[string]int{"quantity": 2})
	_, second := s.doJSON(http.MethodPost, itemURL+"p1", map[string]int{"quantity": 3})
	_, third := s.doJSON(http.MethodPost, itemURL+"p2", map[string]int{"quantity": 1})

	// then
	s.Equal(http.StatusOK, first)
	s.Equal(http.StatusOK, second)
	s.Equal(http.StatusOK, third)
	items, status := s.cartItems(created.ID)
	s.Require().Equal(http.StatusOK, status)
	s.Equal([]cart.Item{{ProductID: "p1", Quantity: 5}, {ProductID: "p2", Quantity: 1}}, items)
}

func (s *ShopE2ESuite) TestCarts_AddItemNumericForms() {
	// given
	created := s.createCart()
	itemURL := cartsURL + "/" + created.ID + "/product/p1"

	// when
	_, quoted := s.doRequest(http.MethodPost, itemURL, []byte(`{"quantity":"2"}`))
	_, fractional := s.doRequest(http.MethodPost, itemURL, []byte(`{"quantity":0.5}`))
	_, nonNumeric := s.doRequest(http.MethodPost, itemURL, []byte(`{"quantity":true}`))

	// then
	s.Equal(http.StatusOK, quoted)
	s.Equal(http.StatusOK, fractional)
	s.Equal(http.StatusOK, nonNumeric)
	items, status := s.cartItems(created.ID)
	s.Require().Equal(http.StatusOK, status)
	s.Equal([]cart.Item{{ProductID: "p1", Quantity: 2.5}}, items)
}

func (s *ShopE2ESuite) TestCarts_ListAndUpdate() {
	// given
	first := s.createCart()
	s.createCart()

	// when
	body, status := s.doJSON(http.MethodPut, cartsURL+"/"+first.ID,
		map[string]any{"products": []map[string]any{{"productId": "p9", "quantity": 4}}})

	// then
	s.Require().Equal(http.StatusOK, status)
	var updated cart.Cart
	s.Require().NoError(json.Unmarshal(body, &updated))
	s.Equal(first.ID, updated.ID)
	s.Equal([]cart.Item{{ProductID: "p9", Quantity: 4}}, updated.Products)

	listBody, status := s.doRequest(http.MethodGet, cartsURL, nil)
	s.Require().Equal(http.StatusOK, status)
	var carts []cart.Cart
	s.Require().NoError(json.Unmarshal(listBody, &carts))
	s.Len(carts, 2)

	_, status = s.doJSON(http.MethodPut, cartsURL+"/"+first.ID,
		map[string]any{"products": []map[string]any{{"productId": "p1"}, {"productId": "p1"}}})
	s.Equal(http.StatusBadRequest, status)
}

func (s *ShopE2ESuite) TestCarts_UnknownCart() {
	// when
	_, getStatus := s.cartItems("missing")
	_, addStatus := s.doJSON(http.MethodPost, cartsURL+"/missing/product/p1", map[string]int{"quantity": 1})

	// then
	s.Equal(http.StatusNotFound, getStatus)
	s.Equal(http.StatusOK, addStatus, "lenient add reports success for unknown carts")

	body, status := s.doRequest(http.MethodGet, cartsURL, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`[]`, string(body))
}

func (s *ShopE2ESuite) TestCarts_Strict() {
	// given
	s.restartStrict()
	created := s.createCart()

	// when
	_, missingStatus := s.doJSON(http.MethodPost, cartsURL+"/missing/product/p1", map[string]int{"quantity": 1})
	_, zeroStatus := s.doJSON(http.MethodPost, cartsURL+"/"+created.ID+"/product/p1", map[string]int{"quantity": 0})
	_, okStatus := s.doJSON(http.MethodPost, cartsURL+"/"+created.ID+"/product/p1", map[string]int{"quantity": 2})

	// then
	s.Equal(http.StatusNotFound, missingStatus)
	s.Equal(http.StatusBadRequest, zeroStatus)
	s.Equal(http.StatusOK, okStatus)
	items, _ := s.cartItems(created.ID)
	s.Equal([]cart.Item{{ProductID: "p1", Quantity: 2}}, items)
}

func (s *ShopE2ESuite) TestHealthz() {
	_, status := s.doRequest(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, status)
}
