package main

import (
	"database/sql"
	"time"

	"corredora-platform/internal/httpapi"
	"corredora-platform/internal/rbac"
	"corredora-platform/pkg/utils"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc, db *sql.DB) {
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), db, 2*time.Second); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Session lifecycle. Refresh and logout identify the caller by the
	// HTTP-only cookie, not a bearer token.
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/forgot", h.ForgotPassword)
		authGroup.POST("/reset", h.ResetPassword)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/user", authMW, h.CurrentUser)
	}

	// Catalog reads are public; writes are admin-only.
	products := r.Group("/api/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:product_id", h.GetProduct)
		products.POST("", authMW, rbac.RequireAdmin(), h.CreateProduct)
		products.PUT("/:product_id", authMW, rbac.RequireAdmin(), h.UpdateProduct)
		products.DELETE("/:product_id", authMW, rbac.RequireAdmin(), h.DeactivateProduct)
	}

	solicitudes := r.Group("/api/solicitudes")
	solicitudes.Use(authMW)
	{
		solicitudes.POST("", h.CreateSolicitud)
		solicitudes.GET("", h.ListSolicitudes)
		solicitudes.GET("/:solicitud_id", h.GetSolicitud)
		solicitudes.PATCH("/:solicitud_id/estado", h.ChangeSolicitudEstado)
	}

	polizas := r.Group("/api/polizas")
	polizas.Use(authMW)
	{
		polizas.POST("", rbac.RequireAdmin(), h.EmitPoliza)
		polizas.GET("", h.ListPolizas)
		polizas.GET("/:poliza_id", h.GetPoliza)
	}
}
