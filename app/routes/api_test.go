package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/ritahmida/boutique/app/controllers"
	"github.com/ritahmida/boutique/app/models"
	"github.com/ritahmida/boutique/app/routes"
	"github.com/ritahmida/boutique/app/services"
	"github.com/ritahmida/boutique/pkg/auth"
	"github.com/ritahmida/boutique/pkg/router"
	"github.com/ritahmida/boutique/pkg/ws"
)

type staticCredentials map[string]string

func (s staticCredentials) Lookup(username string) (string, bool) {
	hash, ok := s[username]
	return hash, ok
}

type testEnv struct {
	db  *gorm.DB
	srv *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.MediaLink{}, &models.Variant{}, &models.Order{},
	))

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	r := router.New()
	hub := ws.NewHub()
	go hub.Run()

	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(services.NewAuthService(staticCredentials{"rita": string(hash)})),
		Product:  controllers.NewProductController(services.NewProductService(db)),
		Order:    controllers.NewOrderController(services.NewOrderService(db)),
		Delivery: controllers.NewDeliveryController(),
	}, hub)

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{db: db, srv: srv}
}

func (e *testEnv) seedProduct(t *testing.T, variants ...models.Variant) models.Product {
	t.Helper()
	product := models.Product{
		Name:     "Robe Test",
		Category: models.CategoryRobe,
		Price:    100,
		Variants: variants,
	}
	require.NoError(t, e.db.Create(&product).Error)
	return product
}

type apiResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Count   *int              `json:"count"`
	Errors  map[string]string `json:"errors"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("rita", "admin")
	require.NoError(t, err)
	return token
}

func orderBody(productID uint) map[string]interface{} {
	return map[string]interface{}{
		"product_id":   productID,
		"color":        "noir",
		"size":         "M",
		"full_name":    "Amina Ben Salah",
		"phone_number": "21612345",
		"state":        "Tunis",
		"delivery":     "home",
	}
}

func TestPublicCatalog(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, models.Variant{Size: "M", Color: "noir", Quantity: 2})

	status, resp := env.do(t, http.MethodGet, "/api/product", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)

	status, resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/product/%d", product.ID), nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)

	status, _ = env.do(t, http.MethodGet, "/api/product/999", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/product/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPublicOrderPlacement(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, models.Variant{Size: "M", Color: "noir", Quantity: 2})

	status, resp := env.do(t, http.MethodPost, "/api/order", orderBody(product.ID), "")
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, resp.Success)

	var order models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, models.StatusWaiting, order.Status)

	var v models.Variant
	require.NoError(t, env.db.Where("product_id = ?", product.ID).First(&v).Error)
	assert.Equal(t, 1, v.Quantity)
}

func TestPublicOrderCannotChooseStatus(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, models.Variant{Size: "M", Color: "noir", Quantity: 2})

	body := orderBody(product.ID)
	body["status"] = "delivered"

	status, resp := env.do(t, http.MethodPost, "/api/order", body, "")
	assert.Equal(t, http.StatusCreated, status)

	var order models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, models.StatusWaiting, order.Status, "the storefront cannot pick a starting status")
}

func TestOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, models.Variant{Size: "M", Color: "noir", Quantity: 2})

	t.Run("missing fields", func(t *testing.T) {
		status, resp := env.do(t, http.MethodPost, "/api/order", map[string]interface{}{}, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Errors)
	})

	t.Run("unknown state", func(t *testing.T) {
		body := orderBody(product.ID)
		body["state"] = "Atlantis"
		status, resp := env.do(t, http.MethodPost, "/api/order", body, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp.Errors, "state")
	})

	t.Run("unknown variant", func(t *testing.T) {
		body := orderBody(product.ID)
		body["size"] = "XXL"
		status, resp := env.do(t, http.MethodPost, "/api/order", body, "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, resp.Message, "variant not found")
	})

	t.Run("malformed json", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/order", bytes.NewBufferString("{"))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodGet, "/api/order", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/order", nil, "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp := env.do(t, http.MethodGet, "/api/order", nil, adminToken(t))
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
}

func TestAdminOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, models.Variant{Size: "M", Color: "noir", Quantity: 3})
	token := adminToken(t)

	status, resp := env.do(t, http.MethodPost, "/api/order", orderBody(product.ID), "")
	require.Equal(t, http.StatusCreated, status)
	var order models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &order))

	// waiting → delivering (number 2)
	status, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/order/%d", order.ID),
		map[string]interface{}{"status_number": 2}, token)
	assert.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	assert.Equal(t, models.StatusProcessing, order.Status)

	// processing → delivered is not a legal move
	status, _ = env.do(t, http.MethodPut, fmt.Sprintf("/api/order/%d", order.ID),
		map[string]interface{}{"status_number": 3}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	// status summary counts the single processing order
	status, resp = env.do(t, http.MethodGet, "/api/order/summary", nil, token)
	assert.Equal(t, http.StatusOK, status)
	var counts map[string]int64
	require.NoError(t, json.Unmarshal(resp.Data, &counts))
	assert.Equal(t, int64(1), counts["processing"])

	status, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/order/%d", order.ID), nil, token)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/order/%d", order.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminProductManagement(t *testing.T) {
	env := newTestEnv(t)
	token := adminToken(t)

	body := map[string]interface{}{
		"name":     "Jupe Plissée",
		"category": "jupe",
		"price":    65,
		"variants": []map[string]interface{}{
			{"size": "S", "color": "camel", "quantity": 4},
		},
	}
	status, resp := env.do(t, http.MethodPost, "/api/product", body, token)
	require.Equal(t, http.StatusCreated, status)

	var product models.Product
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	require.NotZero(t, product.ID)

	// anonymous writes are rejected
	status, _ = env.do(t, http.MethodPost, "/api/product", body, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// bulk variant replace
	status, resp = env.do(t, http.MethodPut, fmt.Sprintf("/api/product/%d/variants", product.ID),
		map[string]interface{}{"variants": []map[string]interface{}{
			{"size": "M", "color": "vert", "quantity": 2},
		}}, token)
	assert.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	require.Len(t, product.Variants, 1)
	assert.Equal(t, "vert", product.Variants[0].Color)

	// invalid category
	bad := map[string]interface{}{"name": "X", "category": "pantalon", "price": 10}
	status, _ = env.do(t, http.MethodPost, "/api/product", bad, token)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]interface{}{"username": "rita", "password": "s3cret-pass"}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &payload))
	require.NotEmpty(t, payload.Token)

	status, resp = env.do(t, http.MethodGet, "/api/auth/check", nil, payload.Token)
	assert.Equal(t, http.StatusOK, status)

	// login mints both the token cookie and the dashboard session cookie
	raw, err := http.Post(env.srv.URL+"/api/auth/login", "application/json",
		bytes.NewReader([]byte(`{"username":"rita","password":"s3cret-pass"}`)))
	require.NoError(t, err)
	raw.Body.Close()

	var cookies []string
	for _, c := range raw.Cookies() {
		cookies = append(cookies, c.Name)
	}
	assert.Contains(t, cookies, auth.CookieName)
	assert.Contains(t, cookies, "boutique_session")

	status, _ = env.do(t, http.MethodPost, "/api/auth/login",
		map[string]interface{}{"username": "rita", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCatalogCards(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t,
		models.Variant{Size: "S", Color: "noir", Quantity: 2},
		models.Variant{Size: "M", Color: "noir", Quantity: 0},
	)

	resp, err := http.Get(env.srv.URL + "/api/catalog?per_page=10")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data []struct {
			Name    string   `json:"name"`
			Colors  []string `json:"colors"`
			Sizes   []string `json:"sizes"`
			InStock bool     `json:"in_stock"`
			Cover   string   `json:"cover"`
		} `json:"data"`
		Pagination struct {
			Page       int   `json:"page"`
			PerPage    int   `json:"per_page"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Data, 1)
	card := body.Data[0]
	assert.Equal(t, "Robe Test", card.Name)
	assert.Equal(t, []string{"noir"}, card.Colors)
	assert.Equal(t, []string{"S", "M"}, card.Sizes)
	assert.True(t, card.InStock)

	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, int64(1), body.Pagination.Total)
	assert.Equal(t, 1, body.Pagination.TotalPages)

	// category filter with no matches returns an empty page
	resp2, err := http.Get(env.srv.URL + "/api/catalog?category=jupe")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var empty struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&empty))
	assert.Empty(t, empty.Data)

	// unknown category is rejected
	resp3, err := http.Get(env.srv.URL + "/api/catalog?category=pantalon")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestDeliveryTables(t *testing.T) {
	env := newTestEnv(t)

	status, resp := env.do(t, http.MethodGet, "/api/delivery/prices", nil, "")
	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, resp.Count)
	assert.Equal(t, len(models.States), *resp.Count)

	status, resp = env.do(t, http.MethodGet, "/api/delivery/regions", nil, "")
	assert.Equal(t, http.StatusOK, status)

	var regions []string
	require.NoError(t, json.Unmarshal(resp.Data, &regions))
	assert.Equal(t, models.States, regions)
}
