package handlers

import (
	"net/http"

	"storefront-backend/cache"
	"storefront-backend/firebase"
	"storefront-backend/logger"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productListCacheKey caches the unfiltered public listing only; filtered
// queries go straight to the database.
const productListCacheKey = "products:all"

type ProductHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
	Cache   *cache.Cache
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	categoryID := c.Query("category_id")
	search := c.Query("search")

	unfiltered := categoryID == "" && search == ""
	if unfiltered {
		var cached []models.Product
		if hit, err := h.Cache.Get(c.Request.Context(), productListCacheKey, &cached); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	var products []models.Product
	query := h.DB.Preload("Category").Preload("Images")

	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}

	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	if unfiltered {
		if err := h.Cache.Set(c.Request.Context(), productListCacheKey, products); err != nil {
			logger.Log.Warn().Err(err).Msg("failed to cache product listing")
		}
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product

	if err := h.DB.Preload("Category").Preload("Images").Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Brand       string  `json:"brand"`
	CategoryID  string  `json:"category_id" binding:"required"`
	Stock       int     `json:"stock"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}

	if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	product := models.Product{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Brand:       req.Brand,
		CategoryID:  categoryID,
		Stock:       req.Stock,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), productListCacheKey)
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return
	}
	if err := h.DB.First(&models.Category{}, "id = ?", categoryID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Price = req.Price
	product.Brand = req.Brand
	product.CategoryID = categoryID
	product.Stock = req.Stock

	if err := h.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), productListCacheKey)
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), productListCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadProductImage accepts a multipart "image" field, stores the file, and
// records it against the product. The first image of a product becomes primary
// unless is_primary is sent explicitly.
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	id := c.Param("id")
	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
		return
	}
	defer file.Close()

	imageURL, objectPath, err := h.Storage.UploadProductImage(
		file,
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		logger.Log.Error().Err(err).Str("product_id", id).Msg("image upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
		return
	}

	var existing int64
	h.DB.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&existing)

	image := models.ProductImage{
		ProductID:  product.ID,
		ImageURL:   imageURL,
		ObjectPath: objectPath,
		IsPrimary:  existing == 0 || c.PostForm("is_primary") == "true",
	}

	if err := h.DB.Create(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save product image"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), productListCacheKey)
	c.JSON(http.StatusCreated, image)
}

func (h *ProductHandler) DeleteProductImage(c *gin.Context) {
	id := c.Param("id")
	imageID := c.Param("imageId")

	var image models.ProductImage
	if err := h.DB.Where("id = ? AND product_id = ?", imageID, id).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if image.ObjectPath != "" {
		if err := h.Storage.DeleteFile(image.ObjectPath); err != nil {
			logger.Log.Warn().Err(err).Str("object", image.ObjectPath).Msg("failed to delete stored image")
		}
	}

	if err := h.DB.Delete(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}

	h.Cache.Invalidate(c.Request.Context(), productListCacheKey)
	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
