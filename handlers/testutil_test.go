package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant-platform-api/config"
	"restaurant-platform-api/models"
	"restaurant-platform-api/routes"
	"restaurant-platform-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAdminKey = "test-admin-key"

func setupRouter(t *testing.T, uploader storage.Uploader) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.PanicLevel)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection of an in-memory sqlite DB would otherwise
	// see its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Location{},
		&models.Event{},
		&models.Order{},
		&models.OrderItem{},
		&models.DailyQueueCounter{},
		&models.Reservation{},
	))

	config.DB = db
	config.App = config.AppConfig{
		AdminAPIKey: testAdminKey,
		DraftTTL:    time.Hour,
	}

	r := gin.New()
	routes.SetupRoutes(r, uploader, nil, config.App)
	return r
}

func doRequest(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func adminHeaders() map[string]string {
	return map[string]string{"X-API-Key": testAdminKey}
}

func visitorHeaders(token string) map[string]string {
	return map[string]string{"X-Visitor-Token": token}
}

func seedCategory(t *testing.T, name string) models.MenuCategory {
	t.Helper()
	var cat models.MenuCategory
	require.NoError(t, config.DB.Where(models.MenuCategory{Name: name}).FirstOrCreate(&cat).Error)
	return cat
}

func seedMenuItem(t *testing.T, title string, price int, active bool) models.MenuItem {
	t.Helper()
	cat := seedCategory(t, "Mains")
	item := models.MenuItem{
		CategoryID: cat.ID,
		Title:      title,
		Price:      price,
		IsActive:   active,
	}
	require.NoError(t, config.DB.Create(&item).Error)
	return item
}

func seedLocation(t *testing.T, name string) models.Location {
	t.Helper()
	loc := models.Location{
		Name:     name,
		Lat:      -6.2,
		Lng:      106.8,
		Address:  "Jl. Example No. 1",
		IsActive: true,
	}
	require.NoError(t, config.DB.Create(&loc).Error)
	return loc
}

type draftResponse struct {
	OrderID      uint      `json:"order_id"`
	VisitorToken string    `json:"visitor_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func createDraft(t *testing.T, r http.Handler) draftResponse {
	t.Helper()
	w := doRequest(r, http.MethodPost, "/orders/draft", nil, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp draftResponse
	decodeBody(t, w, &resp)
	require.NotZero(t, resp.OrderID)
	require.NotEmpty(t, resp.VisitorToken)
	return resp
}
