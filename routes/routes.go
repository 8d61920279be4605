package routes

import (
	"net/http"
	"time"

	"storefront-backend/cache"
	"storefront-backend/cart"
	"storefront-backend/config"
	"storefront-backend/firebase"
	"storefront-backend/handlers"
	"storefront-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient, cartSvc *cart.Service, productCache *cache.Cache) {
	authHandler := &handlers.AuthHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db, Storage: storage, Cache: productCache}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	cartHandler := &handlers.CartHandler{
		Cart:          cartSvc,
		WhatsAppPhone: config.GetEnv("WHATSAPP_PHONE", ""),
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Public routes
	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.Use(authLimiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/:id", productHandler.GetProduct)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)

		// Guest cart. Identified by a client-generated guest id, no auth.
		api.GET("/cart/:guestId", cartHandler.GetCart)
		api.POST("/cart/:guestId/items", cartHandler.AddItem)
		api.DELETE("/cart/:guestId/items/:productId", cartHandler.RemoveItem)
		api.DELETE("/cart/:guestId", cartHandler.ClearCart)
		api.GET("/cart/:guestId/whatsapp", cartHandler.WhatsAppCheckout)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.POST("/products/:id/images", productHandler.UploadProductImage)
		admin.DELETE("/products/:id/images/:imageId", productHandler.DeleteProductImage)

		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)
	}
}
