package routes

import (
	"net/http"

	"room-access-control/internal/booking"

	"github.com/gin-gonic/gin"
)

// bookingPayload accepts both snake_case and camelCase field names; clients
// in the wild send either.
type bookingPayload struct {
	Room         string `json:"room"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	StartTimeAlt string `json:"startTime"`
	EndTime      string `json:"end_time"`
	EndTimeAlt   string `json:"endTime"`
	Detail       string `json:"detail"`
}

func (p bookingPayload) normalize() booking.Request {
	start := p.StartTime
	if start == "" {
		start = p.StartTimeAlt
	}
	end := p.EndTime
	if end == "" {
		end = p.EndTimeAlt
	}
	return booking.Request{
		Room:      p.Room,
		Date:      p.Date,
		StartTime: start,
		EndTime:   end,
		Detail:    p.Detail,
	}
}

// createBookingRequest is either a single payload or a batch under "bookings".
type createBookingRequest struct {
	bookingPayload
	Bookings []bookingPayload `json:"bookings"`
}

func (r createBookingRequest) requests() []booking.Request {
	if len(r.Bookings) > 0 {
		out := make([]booking.Request, 0, len(r.Bookings))
		for _, p := range r.Bookings {
			out = append(out, p.normalize())
		}
		return out
	}
	return []booking.Request{r.bookingPayload.normalize()}
}

type remarkPayload struct {
	Remark string `json:"remark"`
}

func (a *API) BookingRoutes(r *gin.RouterGroup) {

	r.POST("/bookings", func(c *gin.Context) {
		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		created, err := a.Bookings.Submit(c.Request.Context(), CurrentIdentity(c), req.requests())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Booking request submitted",
			"bookings": created,
		})
	})

	r.GET("/bookings/my", func(c *gin.Context) {
		bookings, err := a.Bookings.ListForOwner(c.Request.Context(), CurrentIdentity(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"bookings": bookings,
		})
	})

	r.GET("/bookings", func(c *gin.Context) {
		bookings, err := a.Bookings.ListAll(c.Request.Context(), CurrentIdentity(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"bookings": bookings,
		})
	})

	r.POST("/bookings/:id/approve", func(c *gin.Context) {
		id, err := booking.ParseBookingID(c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		var remark remarkPayload
		_ = c.ShouldBindJSON(&remark) // body is optional

		if err := a.Bookings.Approve(c.Request.Context(), CurrentIdentity(c), id, remark.Remark); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking approved",
		})
	})

	r.POST("/bookings/:id/reject", func(c *gin.Context) {
		id, err := booking.ParseBookingID(c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		var remark remarkPayload
		_ = c.ShouldBindJSON(&remark)

		if err := a.Bookings.Reject(c.Request.Context(), CurrentIdentity(c), id, remark.Remark); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking rejected",
		})
	})

	r.DELETE("/bookings/:id", func(c *gin.Context) {
		id, err := booking.ParseBookingID(c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if err := a.Bookings.Delete(c.Request.Context(), CurrentIdentity(c), id); err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Booking deleted",
		})
	})
}
