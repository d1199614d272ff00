package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	. "room-access-control/internal/config"
	. "room-access-control/internal/jwt"
	"room-access-control/internal/storage"
	"room-access-control/internal/utils"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// accountRole derives the account role from the email domain. Staff addresses
// become admins; everything else is a regular account whose capabilities the
// booking policy decides per request.
func accountRole(email string) string {
	if strings.HasSuffix(strings.ToLower(email), strings.ToLower(Cfg.Policy.ApproverSuffix)) {
		return "admin"
	}
	return "user"
}

func (a *API) AuthRoutes(r *gin.RouterGroup) {

	r.POST("/register", func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		if existing, err := a.Provider.GetAdminUserByEmail(c.Request.Context(), req.Email); err == nil && existing != nil {
			AbortWithHTTPError(c, http.StatusConflict, nil, "Account already exists", "ACCOUNT_EXISTS")
			return
		} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrDatabaseError)
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			AbortWithError(c, ErrInternalServer)
			return
		}

		account := storage.AdminUser{
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			PasswordHash: hash,
			Role:         accountRole(req.Email),
			IsActive:     true,
		}
		id, err := a.Provider.CreateAdminUser(c.Request.Context(), account)
		if err != nil {
			AbortWithError(c, ErrDatabaseError)
			return
		}

		slog.Info("Account registered", "id", id, "email", req.Email, "role", account.Role)
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Account created",
		})
	})

	r.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		account, err := a.Provider.GetAdminUserByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}
		if err != nil {
			AbortWithError(c, ErrDatabaseError)
			return
		}
		if !account.IsActive {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}

		ok, err := utils.VerifyPassword(req.Password, account.PasswordHash)
		if err != nil || !ok {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}

		claim := NewAuthClaim(strconv.FormatInt(account.ID, 10), account.Email, account.Role)
		token, err := GenerateJWT(claim)
		if err != nil {
			AbortWithError(c, ErrInternalServer)
			return
		}

		if err := a.Provider.TouchAdminLastLogin(c.Request.Context(), account.ID); err != nil {
			slog.Warn("Failed to record last login", "id", account.ID, "error", err)
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"token":   token,
			"role":    account.Role,
			"email":   account.Email,
		})
	})
}
