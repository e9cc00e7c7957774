package userControllers_test

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

func newUserEngine(t *testing.T) (*gin.Engine, string) {
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

func TestGetProfile(t *testing.T) {
	r, token := newUserEngine(t)

	req := httptest.NewRequest(http.MethodGet, "/user/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shopper@example.com")
	assert.NotContains(t, w.Body.String(), "s3cretpass")
	assert.NotContains(t, w.Body.String(), "PasswordHash")
}

func TestUpdateProfile(t *testing.T) {
	r, token := newUserEngine(t)

	raw, err := json.Marshal(map[string]string{"bio": "I like lamps", "location": "Lisbon"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/user/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "I like lamps")
	assert.Contains(t, w.Body.String(), "Lisbon")
	assert.Contains(t, w.Body.String(), "Shopper") // name untouched
}
