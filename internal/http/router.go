package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog-api/internal/http/controller"
	"github.com/iyhunko/product-catalog-api/internal/http/middleware"
)

// InitRouter registers middleware, probes and the product API on server.
func InitRouter(server *gin.Engine, healthCtr *controller.HealthController, productCtr *controller.ProductController) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(
		middleware.Recovery(),
		middleware.RequestIDs(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(),
	)

	server.GET("/health", healthCtr.Health)
	server.GET("/healthz", healthCtr.Health)
	server.GET("/livez", healthCtr.Live)

	// Product endpoints
	products := server.Group("/api/products")
	{
		products.POST("", productCtr.CreateProduct)
		products.GET("", productCtr.ListProducts)
		products.GET("/:id", productCtr.GetProduct)
		products.PUT("/:id", productCtr.UpdateProduct)
		products.DELETE("/:id", productCtr.DeleteProduct)
	}

	return server
}

// NewServer builds a gin engine without gin's default logger and recovery,
// which InitRouter replaces with structured equivalents.
func NewServer(debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.New()
}
