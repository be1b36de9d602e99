package httpapi

import (
	"errors"
	"net/http"

	"corredora-platform/internal/auth"
	"corredora-platform/internal/poliza"
	"corredora-platform/internal/rbac"
	"corredora-platform/internal/solicitud"

	"github.com/gin-gonic/gin"
)

type createSolicitudRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

func (h Handlers) CreateSolicitud(c *gin.Context) {
	p, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}

	var req createSolicitudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sol, err := h.Solicitudes.Create(c.Request.Context(), p.ID, req.ProductIDs)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sol)
}

func (h Handlers) ListSolicitudes(c *gin.Context) {
	p, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}

	var (
		out     []solicitud.Solicitud
		listErr error
	)
	if rbac.IsAdmin(p.Role) {
		out, listErr = h.Solicitudes.ListAll(c.Request.Context())
	} else {
		out, listErr = h.Solicitudes.ListMine(c.Request.Context(), p.ID)
	}
	if listErr != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not list solicitudes"})
		return
	}
	if out == nil {
		out = []solicitud.Solicitud{}
	}
	c.JSON(http.StatusOK, gin.H{"solicitudes": out})
}

func (h Handlers) GetSolicitud(c *gin.Context) {
	p, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}
	id, ok := pathID(c, "solicitud_id")
	if !ok {
		return
	}

	sol, err := h.Solicitudes.Get(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "solicitud not found"})
		return
	}
	if sol.UserID != p.ID && !rbac.IsAdmin(p.Role) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "solicitud not found"})
		return
	}
	c.JSON(http.StatusOK, sol)
}

type estadoRequest struct {
	Estado solicitud.Estado `json:"estado"`
	Notas  string           `json:"notas"`
}

func (h Handlers) ChangeSolicitudEstado(c *gin.Context) {
	p, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}
	id, ok := pathID(c, "solicitud_id")
	if !ok {
		return
	}

	var req estadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sol, err := h.Solicitudes.ChangeEstado(c.Request.Context(), id, req.Estado, req.Notas, p.ID, rbac.IsAdmin(p.Role))
	if err != nil {
		switch {
		case errors.Is(err, solicitud.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "solicitud not found"})
		case errors.Is(err, solicitud.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, solicitud.ErrInvalidTransition):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not update solicitud"})
		}
		return
	}
	c.JSON(http.StatusOK, sol)
}

/* ===================== POLIZAS ===================== */

func (h Handlers) EmitPoliza(c *gin.Context) {
	var req poliza.EmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	p, err := h.Polizas.Emit(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, solicitud.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "solicitud not found"})
		case errors.Is(err, poliza.ErrSolicitudNotApproved), errors.Is(err, poliza.ErrAlreadyEmitted):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, poliza.ErrInvalidPoliza):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not emit poliza"})
		}
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Handlers) GetPoliza(c *gin.Context) {
	principal, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}
	id, ok := pathID(c, "poliza_id")
	if !ok {
		return
	}

	p, err := h.Polizas.Get(c.Request.Context(), id, principal.ID, rbac.IsAdmin(principal.Role))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "poliza not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Handlers) ListPolizas(c *gin.Context) {
	principal, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}

	out, err := h.Polizas.ListMine(c.Request.Context(), principal.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not list polizas"})
		return
	}
	if out == nil {
		out = []poliza.Poliza{}
	}
	c.JSON(http.StatusOK, gin.H{"polizas": out})
}
