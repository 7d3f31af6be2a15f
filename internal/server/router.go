// Package server wires the HTTP routes and runs the API server.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/auth"
	"github.com/ukydev/mobile-garage/internal/handlers"
	"github.com/ukydev/mobile-garage/internal/middleware"
	"github.com/ukydev/mobile-garage/internal/models"
	"github.com/ukydev/mobile-garage/internal/notify"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators the router hands to its handlers.
type Dependencies struct {
	AuthService    *auth.Service
	Stores         handlers.Stores
	Notifier       notify.Notifier
	Mailer         notify.Mailer
	ContactMailbox string
	Health         Pinger

	CORSOrigins []string
	// TrustedProxies are the peers allowed to set X-Forwarded-For. With
	// none, the client IP is the connection's remote address.
	TrustedProxies []string
	// PublicRateLimit caps requests per client IP per minute on the
	// unauthenticated endpoints. Zero disables the limit.
	PublicRateLimit int
}

const (
	admin    = models.RoleAdmin
	customer = models.RoleCustomer
	mechanic = models.RoleMechanic
)

// NewRouter builds the gin engine with every API route.
func NewRouter(d Dependencies) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		log.WithError(err).Warn("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/health", healthHandler(d.Health))

	authH := handlers.NewAuthHandler(d.AuthService, d.Stores, d.Notifier)
	contactH := handlers.NewContactHandler(d.Mailer, d.ContactMailbox)

	limiter := middleware.NewRateLimiter()
	public := r.Group("/", limiter.Limit(d.PublicRateLimit, time.Minute))
	{
		public.POST("/signup", authH.Signup)
		public.POST("/login", authH.Login)
		public.POST("/contact", contactH.Submit)
	}

	authMw := middleware.NewAuthMiddleware(d.AuthService)
	api := r.Group("/", authMw.Authenticate())

	api.POST("/logout", authH.Logout)
	api.GET("/user/me", authH.Me)

	customers := handlers.NewCustomerHandler(d.Stores)
	{
		g := api.Group("/customers")
		g.GET("", middleware.RequireRole(admin), customers.List)
		g.POST("", middleware.RequireRole(admin), customers.Create)
		g.GET("/:customer_id", middleware.RequireRole(admin, customer), customers.Get)
		g.PUT("/:customer_id", middleware.RequireRole(admin, customer), customers.Update)
		g.DELETE("/:customer_id", middleware.RequireRole(admin), customers.Delete)
	}

	vehicles := handlers.NewVehicleHandler(d.Stores)
	{
		g := api.Group("/vehicles")
		g.GET("", middleware.RequireRole(admin), vehicles.List)
		g.POST("", middleware.RequireRole(customer), vehicles.Create)
		g.GET("/customer/:customer_id", middleware.RequireRole(customer), vehicles.ListByCustomer)
		g.GET("/:vehicle_id", middleware.RequireRole(admin, customer), vehicles.Get)
		g.PUT("/:vehicle_id", middleware.RequireRole(customer), vehicles.Update)
		g.DELETE("/:vehicle_id", middleware.RequireRole(admin), vehicles.Delete)
	}

	admins := handlers.NewAdminHandler(d.AuthService, d.Stores)
	{
		g := api.Group("/admins", middleware.RequireRole(admin))
		g.GET("", admins.List)
		g.POST("", admins.Create)
		g.GET("/:admin_id", admins.Get)
		g.PUT("/:admin_id", admins.Update)
		g.DELETE("/:admin_id", admins.Delete)
	}

	dashboard := handlers.NewDashboardHandler(d.Stores)
	api.GET("/dashboard-stats", middleware.RequireRole(admin), dashboard.Stats)

	mechanics := handlers.NewMechanicHandler(d.AuthService, d.Stores)
	{
		g := api.Group("/mechanics")
		g.GET("", middleware.RequireRole(admin), mechanics.List)
		g.POST("", middleware.RequireRole(admin), mechanics.Create)
		g.GET("/dashboard", middleware.RequireRole(mechanic), dashboard.Mechanic)
		g.GET("/:mechanic_id", middleware.RequireRole(admin, mechanic), mechanics.Get)
		g.PUT("/:mechanic_id", middleware.RequireRole(admin), mechanics.Update)
		g.DELETE("/:mechanic_id", middleware.RequireRole(admin), mechanics.Delete)
	}

	requests := handlers.NewServiceRequestHandler(d.Stores, d.Notifier)
	{
		g := api.Group("/service_requests")
		g.GET("", requests.List)
		g.POST("", middleware.RequireRole(customer), requests.Create)
		g.GET("/:request_id", requests.Get)
		g.PUT("/:request_id", middleware.RequireRole(admin, customer), requests.Update)
		g.DELETE("/:request_id", middleware.RequireRole(admin), requests.Delete)
	}

	inventories := handlers.NewInventoryHandler(d.Stores)
	{
		g := api.Group("/inventories")
		g.GET("", middleware.RequireRole(admin, mechanic), inventories.List)
		g.POST("", middleware.RequireRole(admin), inventories.Create)
		g.GET("/:inventory_id", middleware.RequireRole(admin, mechanic), inventories.Get)
		g.PUT("/:inventory_id", middleware.RequireRole(admin, mechanic), inventories.Update)
		g.DELETE("/:inventory_id", middleware.RequireRole(admin), inventories.Delete)
		g.PATCH("/:inventory_id/restock", middleware.RequireRole(admin), inventories.Restock)
		g.PATCH("/:inventory_id/reduce", middleware.RequireRole(admin, mechanic), inventories.Reduce)
	}

	ledger := handlers.NewLedgerHandler(d.Stores)
	{
		g := api.Group("/service_request_inventories")
		g.POST("", middleware.RequireRole(admin, mechanic), ledger.Create)
		g.GET("", middleware.RequireRole(admin), ledger.List)
		g.GET("/:sri_id", middleware.RequireRole(admin), ledger.Get)
		g.PUT("/:sri_id", middleware.RequireRole(admin), ledger.Update)
		g.DELETE("/:sri_id", middleware.RequireRole(admin), ledger.Delete)
	}

	users := handlers.NewUserHandler(d.AuthService, d.Stores)
	{
		g := api.Group("/users", middleware.RequireRole(admin))
		g.GET("", users.List)
		g.POST("", users.Create)
		g.GET("/:user_id", users.Get)
		g.PUT("/:user_id", users.Update)
		g.DELETE("/:user_id", users.Delete)
	}

	return r
}

func healthHandler(p Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				log.WithError(err).Warn("health check: store unreachable")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
