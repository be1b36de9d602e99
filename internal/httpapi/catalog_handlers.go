package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"corredora-platform/internal/auth"
	"corredora-platform/internal/catalog"
	"corredora-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

func isAdmin(c *gin.Context) bool {
	p, err := auth.PrincipalFrom(c.Request.Context())
	return err == nil && rbac.IsAdmin(p.Role)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h Handlers) ListProducts(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context(), isAdmin(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h Handlers) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	p, err := h.Catalog.Get(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not load product"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) CreateProduct(c *gin.Context) {
	var req catalog.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	p, err := h.Catalog.Create(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidProduct) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not create product"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	var req catalog.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	req.ID = id

	p, err := h.Catalog.Update(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, catalog.ErrInvalidProduct):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not update product"})
		}
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) DeactivateProduct(c *gin.Context) {
	id, ok := pathID(c, "product_id")
	if !ok {
		return
	}

	p, err := h.Catalog.Deactivate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not deactivate product"})
		return
	}
	c.JSON(http.StatusOK, p)
}
