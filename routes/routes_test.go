package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tableorder-backend/models"
	"tableorder-backend/services"
	"tableorder-backend/store"
	"tableorder-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.BcryptCost = bcrypt.MinCost

	log := utils.DiscardLogger()
	db := store.NewMemoryStore()
	tokens, err := utils.NewTokenManager("router-secret", time.Hour)
	s.Require().NoError(err)

	s.router = SetupRouter(Deps{
		Store:         db,
		Auth:          services.NewAuthService(db, tokens, log),
		Menu:          services.NewMenuService(db, log),
		Orders:        services.NewOrderService(db, nil, log),
		Dashboard:     services.NewDashboardService(db),
		ClientBaseURL: "https://order.example.com",
		CORSOrigins:   []string{"http://localhost:3000"},
		Logger:        log,
	})

	w := s.do(http.MethodPost, "/api/manager/register", map[string]string{
		"username": "chef",
		"email":    "chef@example.com",
		"password": "secret123",
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res))
	s.token = res.Token
}

func (s *RouterSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) doRaw(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type menuItemJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

type orderJSON struct {
	ID          string  `json:"id"`
	TableNumber int     `json:"tableNumber"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
	Items       []struct {
		MenuItemID      string        `json:"menuItemId"`
		Quantity        int           `json:"quantity"`
		MenuItem        *menuItemJSON `json:"menuItem"`
		MenuItemDeleted bool          `json:"menuItemDeleted"`
	} `json:"items"`
}

func (s *RouterSuite) createBurger() menuItemJSON {
	w := s.do(http.MethodPost, "/api/menu", map[string]interface{}{
		"name":     "Burger",
		"price":    9.99,
		"category": "main-course",
		"image":    "https://cdn.example.com/burger.png",
	}, s.token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[struct {
		MenuItem menuItemJSON `json:"menuItem"`
	}](s.T(), w).MenuItem
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (s *RouterSuite) TestOrderLifecycle() {
	burger := s.createBurger()
	s.True(burger.Available)

	w := s.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"tableNumber": 5,
		"items":       []map[string]interface{}{{"menuItem": burger.ID, "quantity": 2}},
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Message string    `json:"message"`
		Order   orderJSON `json:"order"`
	}](s.T(), w)
	s.Equal("Order placed successfully", created.Message)
	s.Equal("pending", created.Order.Status)
	s.InDelta(19.98, created.Order.TotalAmount, 1e-9)
	s.Require().Len(created.Order.Items, 1)
	s.Require().NotNil(created.Order.Items[0].MenuItem)
	s.Equal("Burger", created.Order.Items[0].MenuItem.Name)

	statusPath := "/api/orders/" + created.Order.ID + "/status"
	w = s.do(http.MethodPatch, statusPath, map[string]string{"status": "served"}, "")
	s.Equal(http.StatusConflict, w.Code, w.Body.String())
	s.Contains(decode[map[string]string](s.T(), w)["error"], "pending to served")

	w = s.do(http.MethodPatch, statusPath, map[string]string{"status": "preparing"}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("preparing", decode[struct {
		Order orderJSON `json:"order"`
	}](s.T(), w).Order.Status)

	w = s.do(http.MethodPatch, statusPath, map[string]string{"status": "finished"}, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/orders/table/5", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(decode[[]orderJSON](s.T(), w), 1)

	w = s.do(http.MethodGet, "/api/orders/"+created.Order.ID, nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestBurgerScenarioWithRawBodies() {
	w := s.doRaw(http.MethodPost, "/api/menu",
		`{"name":"Burger","price":9.99,"category":"main-course","image":"x.png"}`, s.token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	burger := decode[struct {
		MenuItem menuItemJSON `json:"menuItem"`
	}](s.T(), w).MenuItem
	s.True(burger.Available)

	w = s.doRaw(http.MethodPost, "/api/orders",
		`{"tableNumber":5,"items":[{"menuItem":"`+burger.ID+`","quantity":2}]}`, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	order := decode[struct {
		Order orderJSON `json:"order"`
	}](s.T(), w).Order
	s.InDelta(19.98, order.TotalAmount, 1e-9)
	s.Equal("pending", order.Status)
	s.Require().Len(order.Items, 1)
	s.Equal(burger.ID, order.Items[0].MenuItemID)

	w = s.doRaw(http.MethodPatch, "/api/orders/"+order.ID+"/status", `{"status":"preparing"}`, "")
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.doRaw(http.MethodPost, "/api/orders",
		`{"tableNumber":5,"items":[{"menuItem":"`+burger.ID+`","quantity":1}]}`, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	second := decode[struct {
		Order orderJSON `json:"order"`
	}](s.T(), w).Order

	// Monotonic policy: pending cannot jump to served.
	w = s.doRaw(http.MethodPatch, "/api/orders/"+second.ID+"/status", `{"status":"served"}`, "")
	s.Equal(http.StatusConflict, w.Code, w.Body.String())
}

func (s *RouterSuite) TestMenuRejectsSubCentPrice() {
	w := s.doRaw(http.MethodPost, "/api/menu",
		`{"name":"Burger","price":9.999,"category":"main-course","image":"x.png"}`, s.token)
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
}

func (s *RouterSuite) TestOrderErrors() {
	burger := s.createBurger()

	w := s.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"tableNumber": 1,
		"items":       []map[string]interface{}{},
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"tableNumber": 1,
		"items":       []map[string]interface{}{{"menuItem": "6f1c54e8-0000-4000-8000-000000000000", "quantity": 1}},
	}, "")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPatch, "/api/menu/"+burger.ID+"/toggle", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Menu item disabled successfully", decode[map[string]interface{}](s.T(), w)["message"])

	w = s.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"tableNumber": 1,
		"items":       []map[string]interface{}{{"menuItem": burger.ID, "quantity": 1}},
	}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"Item not available: Burger"}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/orders/table/abc", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/orders/not-a-uuid", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestMenuRequiresManager() {
	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/menu"},
		{http.MethodGet, "/api/menu/all"},
		{http.MethodPut, "/api/menu/6f1c54e8-0000-4000-8000-000000000000"},
		{http.MethodDelete, "/api/menu/6f1c54e8-0000-4000-8000-000000000000"},
		{http.MethodPatch, "/api/menu/6f1c54e8-0000-4000-8000-000000000000/toggle"},
		{http.MethodGet, "/api/manager/profile"},
		{http.MethodGet, "/api/manager/dashboard"},
		{http.MethodGet, "/api/tables/links"},
	}
	for _, tc := range cases {
		w := s.do(tc.method, tc.path, nil, "")
		s.Equal(http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		w = s.do(tc.method, tc.path, nil, "garbage")
		s.Equal(http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func (s *RouterSuite) TestMenuListings() {
	burger := s.createBurger()

	w := s.do(http.MethodPut, "/api/menu/"+burger.ID, map[string]interface{}{"price": 12.5}, s.token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("Menu item updated successfully", decode[map[string]interface{}](s.T(), w)["message"])

	w = s.do(http.MethodPatch, "/api/menu/"+burger.ID+"/toggle", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/menu", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Empty(decode[[]menuItemJSON](s.T(), w))

	w = s.do(http.MethodGet, "/api/menu/all", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	all := decode[[]menuItemJSON](s.T(), w)
	s.Require().Len(all, 1)
	s.InDelta(12.5, all[0].Price, 1e-9)

	w = s.do(http.MethodGet, "/api/menu?category=soup", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/menu/"+burger.ID, nil, "")
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterSuite) TestDeletedMenuItemInOrder() {
	burger := s.createBurger()
	w := s.do(http.MethodPost, "/api/orders", map[string]interface{}{
		"tableNumber": 3,
		"items":       []map[string]interface{}{{"menuItem": burger.ID, "quantity": 1}},
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodDelete, "/api/menu/"+burger.ID, nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"message":"Menu item deleted successfully"}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/menu/"+burger.ID, nil, s.token)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/orders", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	orders := decode[[]orderJSON](s.T(), w)
	s.Require().Len(orders, 1)
	s.Nil(orders[0].Items[0].MenuItem)
	s.True(orders[0].Items[0].MenuItemDeleted)
}

func (s *RouterSuite) TestManagerEndpoints() {
	w := s.do(http.MethodPost, "/api/manager/register", map[string]string{
		"username": "chef",
		"email":    "other@example.com",
		"password": "secret123",
	}, "")
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/manager/login", map[string]string{"username": "chef", "password": "wrong"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)
	s.JSONEq(`{"error":"Invalid credentials"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/manager/login", map[string]string{"username": "chef", "password": "secret123"}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	login := decode[map[string]interface{}](s.T(), w)
	s.NotEmpty(login["token"])

	w = s.do(http.MethodGet, "/api/manager/profile", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	profile := decode[map[string]interface{}](s.T(), w)
	s.Equal("chef", profile["username"])
	s.NotContains(profile, "password")

	w = s.do(http.MethodGet, "/api/manager/dashboard", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(decode[map[string]interface{}](s.T(), w), "totalRevenue")

	w = s.do(http.MethodGet, "/api/tables/links?count=2", nil, s.token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "https://order.example.com/menu?table=2")
}

type brokenManagers struct {
	store.ManagerRepository
}

func (brokenManagers) Get(ctx context.Context, id uuid.UUID) (*models.Manager, error) {
	return nil, errors.New("connection refused")
}

type managerOutageStore struct {
	*store.MemoryStore
}

func (s managerOutageStore) Managers() store.ManagerRepository {
	return brokenManagers{s.MemoryStore.Managers()}
}

func TestAuthStoreOutageIsServerError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := utils.DiscardLogger()
	db := managerOutageStore{store.NewMemoryStore()}
	tokens, err := utils.NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	token, _, err := tokens.Generate(uuid.New(), models.RoleManager)
	require.NoError(t, err)

	r := SetupRouter(Deps{
		Store:       db,
		Auth:        services.NewAuthService(db, tokens, log),
		Menu:        services.NewMenuService(db, log),
		Orders:      services.NewOrderService(db, nil, log),
		Dashboard:   services.NewDashboardService(db),
		CORSOrigins: []string{"http://localhost:3000"},
		Logger:      log,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/manager/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := utils.DiscardLogger()
	db := store.NewMemoryStore()
	tokens, err := utils.NewTokenManager("secret", time.Hour)
	require.NoError(t, err)
	r := SetupRouter(Deps{
		Store:       db,
		Auth:        services.NewAuthService(db, tokens, log),
		Menu:        services.NewMenuService(db, log),
		Orders:      services.NewOrderService(db, nil, log),
		Dashboard:   services.NewDashboardService(db),
		CORSOrigins: []string{"http://localhost:3000"},
		Logger:      log,
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/orders", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
