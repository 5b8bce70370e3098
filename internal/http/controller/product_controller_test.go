package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog-api/internal/model"
	"github.com/iyhunko/product-catalog-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) CreateProduct(ctx context.Context, product model.Product) (model.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductService) GetProduct(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductService) ListProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductService) UpdateProduct(ctx context.Context, id string, fields model.Product) (model.Product, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Product), args.Error(1)
}

func newTestRouter(svc ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	ctr := NewProductController(svc)
	router.POST("/products", ctr.CreateProduct)
	router.GET("/products", ctr.ListProducts)
	router.GET("/products/:id", ctr.GetProduct)
	router.PUT("/products/:id", ctr.UpdateProduct)
	router.DELETE("/products/:id", ctr.DeleteProduct)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func TestProductController_CreateProduct(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(mockProductService)
		stored := model.Product{"id": "1", "name": "Widget", "price": 9.99, "createdAt": "t0", "updatedAt": "t0"}
		svc.On("CreateProduct", mock.Anything, model.Product{"id": "1", "name": "Widget", "price": 9.99}).Return(stored, nil)

		w := doRequest(newTestRouter(svc), http.MethodPost, "/products", `{"id":"1","name":"Widget","price":9.99}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "1", body["id"])
		assert.Equal(t, 9.99, body["price"])
		assert.Equal(t, "t0", body["createdAt"])
		svc.AssertExpectations(t)
	})

	for name, payload := range map[string]string{
		"missing body":   "",
		"empty object":   "{}",
		"malformed JSON": `{"id":`,
		"JSON array":     `[{"id":"1"}]`,
		"JSON null":      "null",
	} {
		t.Run(name, func(t *testing.T) {
			svc := new(mockProductService)

			w := doRequest(newTestRouter(svc), http.MethodPost, "/products", payload)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "No product data provided", decodeBody(t, w)["error"])
			svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
		})
	}

	t.Run("store rejection", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("CreateProduct", mock.Anything, mock.Anything).Return(nil, repository.ErrMissingID)

		w := doRequest(newTestRouter(svc), http.MethodPost, "/products", `{"name":"Widget"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "product ID is required", decodeBody(t, w)["error"])
	})
}

func TestProductController_GetProduct(t *testing.T) {
	svc := new(mockProductService)
	svc.On("GetProduct", mock.Anything, "1").Return(model.Product{"id": "1", "name": "Widget"}, nil)
	svc.On("GetProduct", mock.Anything, "999").Return(nil, repository.ErrNotFound)
	svc.On("GetProduct", mock.Anything, "boom").Return(nil, repository.NewStorageError("GetItem", "Requested resource not found", errors.New("x")))
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Widget", decodeBody(t, w)["name"])

	w = doRequest(router, http.MethodGet, "/products/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/products/boom", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"dynamodb error: Requested resource not found"}`, w.Body.String())
}

func TestProductController_ListProducts(t *testing.T) {
	t.Run("returns array", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("ListProducts", mock.Anything).Return([]model.Product{{"id": "1"}, {"id": "2"}}, nil)

		w := doRequest(newTestRouter(svc), http.MethodGet, "/products", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"id":"1"},{"id":"2"}]`, w.Body.String())
	})

	t.Run("empty list renders as empty array", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("ListProducts", mock.Anything).Return([]model.Product(nil), nil)

		w := doRequest(newTestRouter(svc), http.MethodGet, "/products", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("ListProducts", mock.Anything).Return(nil, errors.New("dynamodb error: throttled"))

		w := doRequest(newTestRouter(svc), http.MethodGet, "/products", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"dynamodb error: throttled"}`, w.Body.String())
	})
}

func TestProductController_UpdateProduct(t *testing.T) {
	t.Run("updated", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("UpdateProduct", mock.Anything, "1", model.Product{"price": 12.5}).
			Return(model.Product{"id": "1", "name": "Widget", "price": 12.5}, nil)

		w := doRequest(newTestRouter(svc), http.MethodPut, "/products/1", `{"price":12.50}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, 12.5, body["price"])
		assert.Equal(t, "Widget", body["name"])
		svc.AssertExpectations(t)
	})

	t.Run("no data", func(t *testing.T) {
		svc := new(mockProductService)

		w := doRequest(newTestRouter(svc), http.MethodPut, "/products/1", "{}")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No update data provided", decodeBody(t, w)["error"])
		svc.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(mockProductService)
		svc.On("UpdateProduct", mock.Anything, "999", mock.Anything).Return(nil, repository.ErrNotFound)

		w := doRequest(newTestRouter(svc), http.MethodPut, "/products/999", `{"name":"Ghost"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Product not found", decodeBody(t, w)["error"])
	})
}

func TestProductController_DeleteProduct(t *testing.T) {
	svc := new(mockProductService)
	svc.On("DeleteProduct", mock.Anything, "1").Return(model.Product{"id": "1"}, nil)
	svc.On("DeleteProduct", mock.Anything, "999").Return(nil, repository.ErrNotFound)
	router := newTestRouter(svc)

	w := doRequest(router, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Product deleted successfully"}`, w.Body.String())

	w = doRequest(router, http.MethodDelete, "/products/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())
}

func TestHealthController(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	hc := NewHealthController()
	router.GET("/healthz", hc.Health)
	router.GET("/livez", hc.Live)

	w := doRequest(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/livez", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"live":true}`, w.Body.String())
}
