package httpapi

import (
	"errors"
	"net/http"
	"time"

	"corredora-platform/internal/auth"
	"corredora-platform/internal/catalog"
	"corredora-platform/internal/poliza"
	"corredora-platform/internal/rbac"
	"corredora-platform/internal/solicitud"
	"corredora-platform/internal/users"
	"corredora-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// RefreshCookieName is the HTTP-only cookie carrying the refresh token. The
// token is transport-restricted to this cookie; it never appears in
// localStorage-visible responses alone.
const RefreshCookieName = "refresh_token"

// CookieConfig controls the refresh cookie attributes.
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth         *auth.Service
	Users        users.Repository
	Catalog      *catalog.Service
	Solicitudes  *solicitud.Service
	Polizas      *poliza.Service
	Cookie       CookieConfig

	// DefaultOrigin is used for reset links when the client sends none.
	DefaultOrigin string
}

func (h Handlers) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(RefreshCookieName, token, int(h.Cookie.MaxAge.Seconds()), "/api/auth", h.Cookie.Domain, h.Cookie.Secure, true)
}

func (h Handlers) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(RefreshCookieName, "", -1, "/api/auth", h.Cookie.Domain, h.Cookie.Secure, true)
}

// abortWithAuthError maps domain errors to their HTTP status.
func abortWithAuthError(c *gin.Context, err error) {
	var ae *auth.Error
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(ae.Status, gin.H{"error": ae.Message})
		return
	}
	logger.FromGin(c).Error("auth flow failed", "err", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

/* ===================== AUTH ===================== */

func (h Handlers) Login(c *gin.Context) {
	var req auth.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusOK, res)
}

func (h Handlers) Refresh(c *gin.Context) {
	old, err := c.Cookie(RefreshCookieName)
	if err != nil || old == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}

	res, err := h.Auth.Refresh(c.Request.Context(), old)
	if err != nil {
		h.clearRefreshCookie(c)
		abortWithAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusOK, res)
}

type forgotRequest struct {
	Email  string `json:"mail"`
	Origin string `json:"origin"`
}

func (h Handlers) ForgotPassword(c *gin.Context) {
	var req forgotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	origin := req.Origin
	if origin == "" {
		origin = h.DefaultOrigin
	}

	res, err := h.Auth.ForgotPassword(c.Request.Context(), req.Email, origin)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}

	// Explicit nulls on the no-match path keep the response shape stable.
	out := gin.H{"ok": true, "resetToken": nil, "resetUrl": nil}
	if res.ResetToken != "" {
		out["resetToken"] = res.ResetToken
		out["resetUrl"] = res.ResetURL
	}
	c.JSON(http.StatusOK, out)
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h Handlers) ResetPassword(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := h.Auth.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h Handlers) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h Handlers) CurrentUser(c *gin.Context) {
	p, err := auth.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidToken.Message})
		return
	}

	u, err := h.Auth.CurrentUser(c.Request.Context(), p.ID)
	if err != nil {
		abortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"mail"`
	Password string `json:"password"`
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
}

func (h Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Email == "" || len(req.Password) < 8 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username, mail and a password of at least 8 characters are required"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if _, err := h.Users.Create(c.Request.Context(), users.User{
		Username:     req.Username,
		Email:        req.Email,
		Nombre:       req.Nombre,
		Telefono:     req.Telefono,
		Role:         rbac.RoleUsuario,
		PasswordHash: string(hash),
	}); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not create account"})
		return
	}

	// Auto-login after registration.
	res, err := h.Auth.Login(c.Request.Context(), auth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		abortWithAuthError(c, err)
		return
	}
	h.setRefreshCookie(c, res.RefreshToken)
	c.JSON(http.StatusCreated, res)
}
