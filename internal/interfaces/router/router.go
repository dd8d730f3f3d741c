package router

import (
	"time"

	"plotsure-backend/internal/application/auth"
	"plotsure-backend/internal/config"
	"plotsure-backend/internal/domain"
	adminhandlers "plotsure-backend/internal/interfaces/handlers/admin"
	authhandlers "plotsure-backend/internal/interfaces/handlers/auth"
	contacthandlers "plotsure-backend/internal/interfaces/handlers/contacts"
	healthhandlers "plotsure-backend/internal/interfaces/handlers/health"
	inquiryhandlers "plotsure-backend/internal/interfaces/handlers/inquiries"
	listinghandlers "plotsure-backend/internal/interfaces/handlers/listings"
	mediahandlers "plotsure-backend/internal/interfaces/handlers/media"
	"plotsure-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps collects everything the router mounts.
type Deps struct {
	Cfg       *config.Config
	Auth      *auth.Service
	AuthH     *authhandlers.Handlers
	Listings  *listinghandlers.Handlers
	Inquiries *inquiryhandlers.Handlers
	Contacts  *contacthandlers.Handlers
	Media     *mediahandlers.Handlers
	Admin     *adminhandlers.Handlers
	Health    *healthhandlers.Handlers
}

// New builds the fiber app with all routes and middleware mounted.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "PlotSure Connect API",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    60 << 20, // videos cap at 50MB
	})

	app.Use(recover.New())
	app.Use(middleware.Tracing())
	app.Use(middleware.CORS(d.Cfg.FrontendURL))
	app.Use(middleware.RouteLogger())
	app.Use(limiter.New(limiter.Config{
		Max:        d.Cfg.RateLimitMax,
		Expiration: time.Duration(d.Cfg.RateLimitWindowMin) * time.Minute,
	}))

	app.Get("/health", d.Health.Live)
	app.Get("/health/ready", d.Health.Ready)

	api := app.Group("/api")

	// Public submission endpoints get a tighter limit than general traffic.
	submitLimit := limiter.New(limiter.Config{
		Max:        10,
		Expiration: time.Hour,
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/register", d.AuthH.Register)
	authGroup.Post("/login", d.AuthH.Login)
	authGroup.Post("/logout", middleware.RequireAuth(d.Auth), d.AuthH.Logout)
	authGroup.Get("/me", middleware.RequireAuth(d.Auth), d.AuthH.Me)
	authGroup.Put("/me", middleware.RequireAuth(d.Auth), d.AuthH.UpdateProfile)
	authGroup.Put("/me/password", middleware.RequireAuth(d.Auth), d.AuthH.ChangePassword)

	listings := api.Group("/listings")
	listings.Get("/", middleware.OptionalAuth(d.Auth), d.Listings.List)
	listings.Get("/stats", middleware.RequireAuth(d.Auth), d.Listings.Stats)
	listings.Get("/my", middleware.RequireAuth(d.Auth), d.Listings.My)
	listings.Get("/reference/:reference", d.Listings.GetByReference)
	listings.Get("/:id", middleware.OptionalAuth(d.Auth), d.Listings.Get)
	listings.Post("/", middleware.RequireAuth(d.Auth), d.Listings.Create)
	listings.Put("/:id", middleware.RequireAuth(d.Auth), d.Listings.Update)
	listings.Delete("/:id", middleware.RequireAuth(d.Auth), d.Listings.Delete)
	listings.Patch("/:id/verify", middleware.RequireAuth(d.Auth), middleware.RequireRole(domain.RoleAdmin), d.Listings.Verify)
	listings.Patch("/:id/feature", middleware.RequireAuth(d.Auth), middleware.RequireRole(domain.RoleAdmin), d.Listings.ToggleFeatured)

	listings.Post("/:id/documents", middleware.RequireAuth(d.Auth), d.Media.UploadDocument)
	listings.Post("/:id/media", middleware.RequireAuth(d.Auth), d.Media.UploadMedia)
	listings.Patch("/:id/media/order", middleware.RequireAuth(d.Auth), d.Media.Reorder)

	documents := api.Group("/documents", middleware.RequireAuth(d.Auth))
	documents.Patch("/:id/verify", middleware.RequireRole(domain.RoleAdmin), d.Media.VerifyDocument)
	documents.Delete("/:id", d.Media.DeleteDocument)

	mediaGroup := api.Group("/media", middleware.RequireAuth(d.Auth))
	mediaGroup.Patch("/:id/primary", d.Media.SetPrimary)
	mediaGroup.Delete("/:id", d.Media.DeleteMedia)

	inquiries := api.Group("/inquiries")
	inquiries.Post("/", submitLimit, d.Inquiries.Create)
	inquiries.Get("/", middleware.RequireAuth(d.Auth), d.Inquiries.List)
	inquiries.Get("/stats", middleware.RequireAuth(d.Auth), d.Inquiries.Stats)
	inquiries.Get("/follow-ups", middleware.RequireAuth(d.Auth), d.Inquiries.DueForFollowUp)
	inquiries.Get("/:id", middleware.RequireAuth(d.Auth), d.Inquiries.Get)
	inquiries.Patch("/:id/status", middleware.RequireAuth(d.Auth), d.Inquiries.UpdateStatus)
	inquiries.Patch("/:id/assign", middleware.RequireAuth(d.Auth), d.Inquiries.Assign)
	inquiries.Post("/:id/respond", middleware.RequireAuth(d.Auth), d.Inquiries.Respond)
	inquiries.Post("/:id/convert", middleware.RequireAuth(d.Auth), d.Inquiries.Convert)
	inquiries.Post("/:id/follow-up", middleware.RequireAuth(d.Auth), d.Inquiries.SetFollowUp)
	inquiries.Delete("/:id", middleware.RequireAuth(d.Auth), middleware.RequireRole(domain.RoleAdmin), d.Inquiries.Delete)

	contacts := api.Group("/contacts")
	contacts.Post("/", submitLimit, d.Contacts.Create)
	contacts.Get("/", middleware.RequireAuth(d.Auth), d.Contacts.List)
	contacts.Get("/stats", middleware.RequireAuth(d.Auth), d.Contacts.Stats)
	contacts.Get("/:id", middleware.RequireAuth(d.Auth), d.Contacts.Get)
	contacts.Patch("/:id/status", middleware.RequireAuth(d.Auth), d.Contacts.UpdateStatus)
	contacts.Patch("/:id/assign", middleware.RequireAuth(d.Auth), d.Contacts.Assign)
	contacts.Post("/:id/respond", middleware.RequireAuth(d.Auth), d.Contacts.Respond)
	contacts.Delete("/:id", middleware.RequireAuth(d.Auth), middleware.RequireRole(domain.RoleAdmin), d.Contacts.Delete)

	admin := api.Group("/admin", middleware.RequireAuth(d.Auth), middleware.RequireRole(domain.RoleAdmin))
	admin.Get("/users", d.Admin.ListUsers)
	admin.Patch("/users/:id/activate", d.Admin.ActivateUser)
	admin.Patch("/users/:id/deactivate", d.Admin.DeactivateUser)
	admin.Get("/activity", d.Admin.ListActivity)
	admin.Get("/activity/export", d.Admin.ExportActivity)

	return app
}
