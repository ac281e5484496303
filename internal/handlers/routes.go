package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/middleware"
)

// Handlers groups the route handlers
type Handlers struct {
	Applications *ApplicationHandler
	AuditLogs    *AuditLogHandler
	BaseTypes    *BaseTypeHandler
	Form         *FormHandler
	Health       *HealthHandler
}

// Register mounts every route under api. Reads are public; writes and form
// sessions need a user session, direct catalogue writes an admin session.
func Register(api fiber.Router, cfg *config.Config, h *Handlers) {
	user := middleware.AuthUser(cfg)
	admin := middleware.AuthAdmin(cfg)

	api.Get("/health", h.Health.GetHealth)

	apps := api.Group("/applications")
	apps.Get("/", h.Applications.GetApplications)
	apps.Get("/stats", h.Applications.GetStats)
	apps.Get("/metrics", h.Applications.GetMetrics)
	apps.Get("/values", h.Applications.GetUniqueValues)
	apps.Get("/search", h.Applications.SearchApplications)
	apps.Get("/:id", h.Applications.GetApplication)
	apps.Get("/:id/audit-logs", h.Applications.GetApplicationAuditLogs)
	apps.Post("/", admin, h.Applications.CreateApplications)
	apps.Patch("/:id", admin, h.Applications.UpdateApplication)

	api.Get("/export/:format", h.Applications.Export)

	logs := api.Group("/audit-logs")
	logs.Get("/", h.AuditLogs.GetAuditLogs)
	logs.Get("/:id", h.AuditLogs.GetAuditLog)

	bt := api.Group("/base-types")
	bt.Get("/", h.BaseTypes.GetBaseTypes)
	bt.Get("/entries/:id", h.BaseTypes.GetBaseType)
	bt.Get("/:type/options", h.BaseTypes.GetOptions)

	f := api.Group("/form")
	f.Get("/metadata", h.Form.GetMetadata)
	f.Get("/columns", h.Form.GetColumns)
	f.Get("/draft", user, h.Form.GetDraft)

	sessions := f.Group("/sessions", user)
	sessions.Post("/", h.Form.OpenSession)
	sessions.Get("/:id", h.Form.GetSession)
	sessions.Delete("/:id", h.Form.CloseSession)
	sessions.Put("/:id/values/:field", h.Form.SetValue)
	sessions.Get("/:id/options/:field", h.Form.GetOptions)
	sessions.Post("/:id/next", h.Form.Next)
	sessions.Post("/:id/previous", h.Form.Previous)
	sessions.Post("/:id/steps/:index", h.Form.GoToStep)
	sessions.Post("/:id/submit", h.Form.Submit)
	sessions.Post("/:id/draft", h.Form.SaveDraft)
}
