package app

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"room-access-control/internal/booking"
	. "room-access-control/internal/config"
	"room-access-control/internal/door"
	"room-access-control/internal/identity"
	"room-access-control/internal/registry"
	"room-access-control/internal/routes"
	"room-access-control/internal/storage"
	"room-access-control/internal/utils"

	"github.com/gin-gonic/gin"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")

	// Disable caching
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

// Middleware to check if the IP is allowed.
func IPAccessControl(allowedCIDRs []string) gin.HandlerFunc {
	var parsedCIDRs []*net.IPNet

	// Allow local networks in debug mode
	if os.Getenv("GIN_MODE") != "release" {
		localhostCIDRs := []string{"127.0.0.1/8", "::1/128"}
		allowedCIDRs = append(allowedCIDRs, localhostCIDRs...)
	}

	for _, cidr := range allowedCIDRs {
		_, net, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("Invalid CIDR", "cidr", cidr)
			continue
		}
		slog.Debug("Allowed CIDR", "cidr", cidr)
		parsedCIDRs = append(parsedCIDRs, net)
	}

	return func(c *gin.Context) {
		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil {
			// Should not happen
			slog.Warn("Invalid client IP", "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		for _, cidr := range parsedCIDRs {
			if cidr.Contains(clientIP) {
				c.Next()
				return
			}
		}
		slog.Warn("IP not allowed", "ip", clientIP)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// loadPolicy builds the booking policy, preferring the configured policy
// file over the suffix settings.
func loadPolicy() *identity.Policy {
	if Cfg.Policy.PolicyFile != "" {
		policy, err := identity.LoadPolicy(Cfg.Policy.PolicyFile)
		if err == nil {
			slog.Info("Loaded booking policy", "file", Cfg.Policy.PolicyFile)
			return policy
		}
		slog.Error("Failed to load policy file, falling back to configured suffixes",
			"file", Cfg.Policy.PolicyFile, "error", err)
	}
	return identity.NewPolicy(Cfg.Policy.MemberSuffix, Cfg.Policy.ApproverSuffix)
}

// HTTPServer assembles the gin engine with all services wired in.
func HTTPServer(provider storage.Provider) *gin.Engine {
	r := gin.Default()

	if Cfg.AllowedNetworks != "" {
		slog.Debug("Enabling IP access control", "allowed_networks", Cfg.AllowedNetworks)
		var allowedCIDRs []string

		for _, cidr := range strings.Split(Cfg.AllowedNetworks, ",") {
			// Remove spaces and ignore empty sets
			if cidr := strings.TrimSpace(cidr); cidr != "" {
				allowedCIDRs = append(allowedCIDRs, cidr)
			}
		}

		r.Use(IPAccessControl(allowedCIDRs))
	}
	r.Use(securityHeaders)
	r.Use(routes.ErrorHandler())

	r.GET("/ping", func(c *gin.Context) {
		msg := c.Query("ping")
		if msg == "" {
			msg = "pong"
		}
		c.JSON(http.StatusOK, gin.H{
			"message": msg,
			"version": utils.GetVersion(),
		})
	})

	api := &routes.API{
		Provider: provider,
		Bookings: booking.NewService(provider, loadPolicy(), Cfg.Booking.Quota),
		Registry: registry.NewService(provider),
		Doors:    door.NewBridge(),
		Scans:    door.NewScanStore(time.Duration(Cfg.ScanTTL) * time.Second),
	}

	rg := r.Group("/api")
	api.Register(rg)

	return r
}
