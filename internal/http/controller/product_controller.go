package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog-api/internal/model"
	"github.com/iyhunko/product-catalog-api/internal/repository"
)

const (
	msgNoProductData  = "No product data provided"
	msgNoUpdateData   = "No update data provided"
	msgNotFound       = "Product not found"
	msgProductDeleted = "Product deleted successfully"
)

// ProductService is the product API consumed by ProductController.
type ProductService interface {
	CreateProduct(ctx context.Context, product model.Product) (model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, fields model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) (model.Product, error)
}

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	product, ok := bindProduct(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoProductData})
		return
	}

	created, err := pc.productService.CreateProduct(c.Request.Context(), product)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// ListProducts handles the HTTP GET request for listing every product.
func (pc *ProductController) ListProducts(c *gin.Context) {
	products, err := pc.productService.ListProducts(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// UpdateProduct handles the HTTP PUT request. Only the fields present in the
// body are changed.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	fields, ok := bindProduct(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoUpdateData})
		return
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	deleted, err := pc.productService.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	slog.Debug("product deleted", slog.String("product_id", c.Param("id")), slog.Any("snapshot", deleted))
	c.JSON(http.StatusOK, gin.H{"message": msgProductDeleted})
}

// bindProduct decodes a JSON object body. Missing, malformed, non-object and
// empty bodies are all reported as no data.
func bindProduct(c *gin.Context) (model.Product, bool) {
	var product model.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		slog.Debug("invalid request body", slog.Any("err", err), slog.String("path", c.Request.URL.Path))
		return nil, false
	}
	if len(product) == 0 {
		return nil, false
	}
	return product, true
}

// renderError maps a store outcome to a response: not found is 404, anything
// else is 400 carrying the error message.
func renderError(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
