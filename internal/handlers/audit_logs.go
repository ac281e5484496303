package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/models"
	"github.com/localnerve/archhub/internal/utils"
)

// AuditLogHandler handles the audit log routes
type AuditLogHandler struct {
	Audit *auditlog.Store
}

// AuditLogList is a filtered audit log
type AuditLogList struct {
	Total   int                       `json:"total"`
	Counts  map[auditlog.Category]int `json:"counts"`
	Entries []models.AuditLogEntry    `json:"entries"`
}

// AuditLogDetail is one entry with its category
type AuditLogDetail struct {
	models.AuditLogEntry
	Category auditlog.Category `json:"category"`
}

// parseBound reads a date or timestamp query parameter. A bare date as the
// upper bound covers the whole day.
func parseBound(c *fiber.Ctx, name string, upper bool) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := form.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if upper && len(raw) == len(time.DateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}

// GetAuditLogs handles GET /api/audit-logs
// @Summary List audit log entries
// @Description Newest first. Narrow by author, inclusive date range and category.
// @Tags AuditLogs
// @Produce json
// @Param user query string false "Author, exact"
// @Param from query string false "Start date or timestamp, inclusive"
// @Param to query string false "End date or timestamp, inclusive"
// @Param category query string false "Category"
// @Success 200 {object} AuditLogList
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /audit-logs [get]
func (h *AuditLogHandler) GetAuditLogs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user := c.Query("user")

	from, err := parseBound(c, "from", false)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "getAuditLogs")
	}
	to, err := parseBound(c, "to", true)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "getAuditLogs")
	}

	var entries []models.AuditLogEntry
	switch {
	case !from.IsZero() || !to.IsZero():
		entries, err = h.Audit.ByDateRange(ctx, from, to)
		if err == nil && user != "" {
			entries = byUser(entries, user)
		}
	case user != "":
		entries, err = h.Audit.ByUser(ctx, user)
	default:
		entries, err = h.Audit.All(ctx)
	}
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getAuditLogs")
	}

	entries = auditlog.FilterByCategory(entries, auditlog.Category(c.Query("category")))
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}

	return c.Status(fiber.StatusOK).JSON(AuditLogList{
		Total:   len(entries),
		Counts:  auditlog.CategoryCounts(entries),
		Entries: entries,
	})
}

func byUser(entries []models.AuditLogEntry, user string) []models.AuditLogEntry {
	out := make([]models.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		if e.CreatedBy == user {
			out = append(out, e)
		}
	}
	return out
}

// GetAuditLog handles GET /api/audit-logs/:id
// @Summary Get an audit log entry
// @Tags AuditLogs
// @Produce json
// @Param id path string true "Entry id"
// @Success 200 {object} AuditLogDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /audit-logs/{id} [get]
func (h *AuditLogHandler) GetAuditLog(c *fiber.Ctx) error {
	id := c.Params("id")

	entry, err := h.Audit.ByID(c.UserContext(), id)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getAuditLog")
	}
	if entry == nil {
		return utils.NotFoundResponse(c, fmt.Sprintf("Audit log entry '%s' not found", id))
	}

	return c.Status(fiber.StatusOK).JSON(AuditLogDetail{
		AuditLogEntry: *entry,
		Category:      auditlog.Categorize(entry.ChangedDescription),
	})
}
