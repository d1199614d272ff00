package routes

import (
	"room-access-control/internal/booking"
	"room-access-control/internal/door"
	"room-access-control/internal/registry"
	"room-access-control/internal/storage"

	"github.com/gin-gonic/gin"
)

// API bundles the services the HTTP handlers operate on.
type API struct {
	Provider storage.Provider
	Bookings *booking.Service
	Registry *registry.Service
	Doors    *door.Bridge
	Scans    *door.ScanStore
}

// Register wires all API routes onto the group. Booking and registry routes
// sit behind the auth middleware; the door bridge endpoints are split between
// authenticated admin actions and unauthenticated controller polling.
func (a *API) Register(r *gin.RouterGroup) {
	Health(r)
	a.AuthRoutes(r)

	authed := r.Group("", AuthMiddleware())
	a.BookingRoutes(authed)
	a.UserRoutes(authed)
	a.DoorRoutes(r, authed)
}
