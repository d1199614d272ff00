package routes

import (
	"net/http"
	"strconv"

	"room-access-control/internal/booking"
	"room-access-control/internal/storage"

	"github.com/gin-gonic/gin"
)

type userPayload struct {
	UUID      string `json:"uuid"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (p userPayload) toUser() storage.User {
	return storage.User{
		UUID:      p.UUID,
		UserID:    p.UserID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Role:      p.Role,
	}
}

// requireAdmin gates registry management to admin accounts.
func requireAdmin(c *gin.Context) bool {
	if CurrentIdentity(c).Role != "admin" {
		AbortWithError(c, booking.ErrNotAuthorized)
		return false
	}
	return true
}

func parseRecordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

func (a *API) UserRoutes(r *gin.RouterGroup) {

	r.POST("/users", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		var payload userPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		user, err := a.Registry.Add(c.Request.Context(), payload.toUser())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User registered",
			"user":    user,
		})
	})

	r.GET("/users", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		users, err := a.Registry.List(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"users":   users,
		})
	})

	// Export before the :id route so "export" is not parsed as a record id
	r.GET("/users/export", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="users.csv"`)
		if err := a.Registry.ExportCSV(c.Request.Context(), c.Writer); err != nil {
			AbortWithError(c, err)
		}
	})

	r.GET("/users/:id", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, ok := parseRecordID(c)
		if !ok {
			return
		}
		user, err := a.Registry.Get(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    user,
		})
	})

	r.PUT("/users/:id", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, ok := parseRecordID(c)
		if !ok {
			return
		}
		var payload userPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		user := payload.toUser()
		user.ID = id
		updated, err := a.Registry.Update(c.Request.Context(), user)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User updated",
			"user":    updated,
		})
	})

	r.DELETE("/users/:id", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		id, ok := parseRecordID(c)
		if !ok {
			return
		}
		if err := a.Registry.Remove(c.Request.Context(), id); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "User removed",
		})
	})
}
