package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	. "room-access-control/internal/config"
	"room-access-control/internal/registry"
	"room-access-control/internal/storage"
	"room-access-control/internal/utils"

	"room-access-control/internal/door"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

const readerIDHeader = "X-Reader-ID"

type scanPayload struct {
	CardUID string `json:"card_uid" binding:"required"`
}

// lookupDoor resolves the :door path parameter against the door registry.
func (a *API) lookupDoor(c *gin.Context) (*storage.Door, bool) {
	d, err := a.Provider.GetDoorByName(c.Request.Context(), c.Param("door"))
	if errors.Is(err, storage.ErrNotFound) {
		AbortWithError(c, ErrDoorNotFound)
		return nil, false
	}
	if err != nil {
		AbortWithError(c, ErrDatabaseError)
		return nil, false
	}
	return d, true
}

// bookingPageURL builds the absolute booking-form link a printed QR code
// points at. A relative configured base (the "/" default included) falls
// back to the request host.
func bookingPageURL(c *gin.Context, base, room string) string {
	if base == "" || strings.HasPrefix(base, "/") {
		return utils.UrlFor(c, "/book") + "?room=" + url.QueryEscape(room)
	}
	return strings.TrimSuffix(base, "/") + "/book?room=" + url.QueryEscape(room)
}

// verifyReader checks the controller's signed reader id header. Controllers
// cannot carry user credentials, so this is their only authentication.
func verifyReader(c *gin.Context) bool {
	readerID := c.GetHeader(readerIDHeader)
	if readerID == "" || !utils.VerifyReaderID(readerID, []byte(Cfg.Secret)) {
		AbortWithError(c, ErrReaderNotVerified)
		return false
	}
	return true
}

// DoorRoutes registers the door bridge. Controller endpoints (polling and
// scan reporting) go on the public group behind reader id verification;
// administrative commands require an authenticated admin.
func (a *API) DoorRoutes(public, authed *gin.RouterGroup) {

	// Controller polls its pending command. Delivered at most once.
	public.GET("/door/:door/command", func(c *gin.Context) {
		if !verifyReader(c) {
			return
		}
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"command": a.Doors.Poll(d.Name),
		})
	})

	// Controller reports a card scan. The card is resolved against the
	// registry and access is granted or denied on the spot; the scan is
	// also latched so the registration UI can pick up unknown cards.
	public.POST("/door/:door/scan", func(c *gin.Context) {
		if !verifyReader(c) {
			return
		}
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}
		var payload scanPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		var userID, userName string
		granted := false
		user, err := a.Registry.GetByCard(c.Request.Context(), payload.CardUID)
		switch {
		case err == nil:
			granted = true
			userID = user.UserID
			userName = user.Name
		case errors.Is(err, registry.ErrUserNotFound):
			// Unknown card: denied, but still latched for registration
		default:
			AbortWithError(c, ErrDatabaseError)
			return
		}

		scan := a.Scans.Record(d.Name, payload.CardUID, userID, userName, granted)
		slog.Info("Card scan", "door", d.Name, "card_uid", payload.CardUID, "granted", granted)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"granted": granted,
			"scan_id": scan.ID,
		})
	})

	// QR code linking to the booking page for the door's room, for printing
	// next to the door.
	public.GET("/door/:door/qr", func(c *gin.Context) {
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}

		target := bookingPageURL(c, Cfg.BaseURL, d.Room)
		png, err := qrcode.Encode(target, qrcode.Medium, 256)
		if err != nil {
			AbortWithError(c, ErrInternalServer)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	})

	// Admin commands

	authed.POST("/door/:door/open", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}
		a.Doors.Set(d.Name, door.CommandOpen)
		slog.Info("Door open requested", "door", d.Name, "by", CurrentIdentity(c).Email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Door will open on next poll",
		})
	})

	authed.POST("/door/:door/close", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}
		a.Doors.Set(d.Name, door.CommandClose)
		slog.Info("Door close requested", "door", d.Name, "by", CurrentIdentity(c).Email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Door will close on next poll",
		})
	})

	// Latest scan for the registration UI
	authed.GET("/door/:door/scan", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}
		scan, ok := a.Scans.Latest(d.Name)
		if !ok {
			AbortWithError(c, ErrNoScanPending)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"scan":    scan,
		})
	})

	authed.DELETE("/door/:door/scan", func(c *gin.Context) {
		if !requireAdmin(c) {
			return
		}
		d, ok := a.lookupDoor(c)
		if !ok {
			return
		}
		a.Scans.Reset(d.Name)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Pending scan cleared",
		})
	})
}
