package cartControllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marketbay/storefront-api/auth"
	"github.com/marketbay/storefront-api/models"
	"github.com/marketbay/storefront-api/routes"
	"github.com/marketbay/storefront-api/store"
)

type cartLine struct {
	ProductID uint    `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
}

type cartSnapshot struct {
	Items []cartLine `json:"items"`
}

// newTestServer wires the real routes over an in-memory database and returns
// a bearer token for a registered user.
func newTestServer(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CartLine{},
		&models.ContactMessage{},
		&models.RefreshToken{},
	))

	stores := routes.Stores{
		Users:    store.NewUserStore(db),
		Carts:    store.NewCartStore(db),
		Contacts: store.NewContactStore(db),
		Tokens:   store.NewRefreshTokenStore(db),
	}
	r := gin.New()
	routes.SetupRoutes(r, stores)

	user, err := stores.Users.Create(context.Background(), "shopper@example.com", "s3cretpass", "Shopper")
	require.NoError(t, err)
	token, err := auth.IssueAccessToken(user.ID, user.Email)
	require.NoError(t, err)

	return r, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) cartSnapshot {
	t.Helper()
	var snap cartSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestFetchEmptyCart(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/user/cart/", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestCartRequiresToken(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/user/cart/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDoubleUpsertSameProduct(t *testing.T) {
	r, token := newTestServer(t)

	item := map[string]interface{}{"productId": 42, "title": "Lamp", "price": 9.99, "quantity": 1}
	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, item)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/user/cart/", token, item)
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, uint(42), snap.Items[0].ProductID)
	assert.Equal(t, 2, snap.Items[0].Quantity)
	assert.Equal(t, 9.99, snap.Items[0].Price)
}

func TestUpsertDefaultsQuantityToOne(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"productId": 5, "title": "Mug", "price": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 1, snap.Items[0].Quantity)
}

func TestUpsertMissingProductID(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"title": "No product", "price": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetQuantity(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"productId": 42, "title": "Lamp", "price": 9.99, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/user/cart/42", token, map[string]int{"quantity": 7})
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 7, snap.Items[0].Quantity)
}

func TestSetQuantityMissingLine(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPut, "/user/cart/99", token, map[string]int{"quantity": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Cart untouched.
	w = doJSON(t, r, http.MethodGet, "/user/cart/", token, nil)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestSetQuantityRejectsNonPositive(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"productId": 42, "title": "Lamp", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	for _, q := range []int{0, -1} {
		w = doJSON(t, r, http.MethodPut, "/user/cart/42", token, map[string]int{"quantity": q})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/user/cart/", token, nil)
	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
}

func TestSetQuantityBadProductID(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPut, "/user/cart/not-a-number", token, map[string]int{"quantity": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteItem(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodDelete, "/user/cart/42", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"productId": 42, "title": "Lamp", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/user/cart/42", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestClearAlreadyEmptyCart(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodDelete, "/user/cart/", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())
}

func TestReplaceCart(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"productId": 1, "title": "Old", "quantity": 4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/user/cart/", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": 2, "title": "Two", "quantity": 1},
			{"productId": 3, "title": "Three", "quantity": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, uint(2), snap.Items[0].ProductID)
	assert.Equal(t, uint(3), snap.Items[1].ProductID)
}

func TestReplaceCartMalformedItemKeepsOldCart(t *testing.T) {
	r, token := newTestServer(t)

	w := doJSON(t, r, http.MethodPost, "/user/cart/", token, map[string]interface{}{
		"productId": 1, "title": "Keep", "quantity": 4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/user/cart/", token, map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": 2, "quantity": 1},
			{"productId": 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/user/cart/", token, nil)
	snap := decodeSnapshot(t, w)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, uint(1), snap.Items[0].ProductID)
	assert.Equal(t, 4, snap.Items[0].Quantity)
}
