package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techexpert/helpdesk/internal/api/http/handlers"
	"github.com/techexpert/helpdesk/internal/auth"
	"github.com/techexpert/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Users          *handlers.UsersHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The public surface is the submission
// form, the mailed confirmation link and the catalog dropdown data; the rest
// sits behind authentication with capability guards.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets/confirm/:token", cfg.Tickets.ConfirmClosure)

	api.Get("/catalog/companies", cfg.Catalog.ListCompanies)
	api.Get("/catalog/offerings", cfg.Catalog.ListOfferings)
	api.Get("/catalog/categories", cfg.Catalog.ListCategories)
	api.Get("/catalog/contact-roles", cfg.Catalog.ListContactRoles)
	api.Get("/catalog/software-types", cfg.Catalog.ListSoftwareTypes)
	api.Get("/catalog/software", cfg.Catalog.ListSoftware)

	api.Post("/auth/login", cfg.Users.Login)

	staff := api.Group("/staff", cfg.AuthMiddleware.Handle)

	tickets := staff.Group("/tickets", auth.RequireCapability(domain.CapabilityTriage))
	tickets.Post("", cfg.StaffTickets.CreateTicket)
	tickets.Get("", cfg.StaffTickets.ListTickets)
	tickets.Get("/stats", cfg.StaffTickets.Stats)
	tickets.Get("/:id", cfg.StaffTickets.GetTicket)
	tickets.Post("/:id/assign", cfg.StaffTickets.AssignTicket)
	tickets.Post("/:id/escalate", cfg.StaffTickets.EscalateTicket)
	tickets.Post("/:id/close-request", cfg.StaffTickets.RequestClosure)
	tickets.Post("/:id/close-cancel", cfg.StaffTickets.CancelClosure)
	tickets.Post("/:id/report", cfg.StaffTickets.CreateReport)
	tickets.Post("/:id/attachments", cfg.StaffTickets.AddAttachment)

	admin := staff.Group("", auth.RequireCapability(domain.CapabilityAdminister))
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Get("/users", cfg.Users.ListUsers)
	admin.Get("/users/:id", cfg.Users.GetUser)
	admin.Put("/users/:id", cfg.Users.UpdateUser)
	admin.Delete("/users/:id", cfg.Users.DeleteUser)

	admin.Post("/catalog/companies", cfg.Catalog.CreateCompany)
	admin.Put("/catalog/companies/:id", cfg.Catalog.UpdateCompany)
	admin.Delete("/catalog/companies/:id", cfg.Catalog.DeleteCompany)
	admin.Post("/catalog/offerings", cfg.Catalog.CreateOffering)
	admin.Delete("/catalog/offerings/:id", cfg.Catalog.DeleteOffering)
	admin.Post("/catalog/categories", cfg.Catalog.CreateCategory)
	admin.Delete("/catalog/categories/:id", cfg.Catalog.DeleteCategory)
	admin.Post("/catalog/contact-roles", cfg.Catalog.CreateContactRole)
	admin.Delete("/catalog/contact-roles/:id", cfg.Catalog.DeleteContactRole)
	admin.Post("/catalog/software-types", cfg.Catalog.CreateSoftwareType)
	admin.Post("/catalog/software", cfg.Catalog.CreateSoftware)
	admin.Delete("/catalog/software/:id", cfg.Catalog.DeleteSoftware)
}
