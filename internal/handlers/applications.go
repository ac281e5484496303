// applications.go
//
// Architecture Hub application catalogue service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of archhub.
// archhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// archhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with archhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/auditlog"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/form"
	"github.com/localnerve/archhub/internal/listing"
	"github.com/localnerve/archhub/internal/metrics"
	"github.com/localnerve/archhub/internal/middleware"
	"github.com/localnerve/archhub/internal/models"
	"github.com/localnerve/archhub/internal/types"
	"github.com/localnerve/archhub/internal/utils"
)

// ApplicationHandler handles the catalogue routes
type ApplicationHandler struct {
	Catalogue *catalogue.Store
	Audit     *auditlog.Store
	Creator   *form.RecordSubmitter
	Columns   *listing.Columns
}

// ApplicationPage is one page of the list view
type ApplicationPage struct {
	listing.Page[models.ApplicationRecord]
	VisiblePages []string `json:"visiblePages"`
}

// ApplicationAuditLogs is the audit trail of one application
type ApplicationAuditLogs struct {
	CatalogueID string                    `json:"catalogueId"`
	Total       int                       `json:"total"`
	Counts      map[auditlog.Category]int `json:"counts"`
	Entries     []models.AuditLogEntry    `json:"entries"`
}

// ApplicationUpdate is the result of a patch
type ApplicationUpdate struct {
	Application *models.ApplicationRecord `json:"application"`
	AuditLogs   []models.AuditLogEntry    `json:"auditLogs"`
}

// filtered returns the records selected by the list query, filtered and
// sorted, with their flattened rows.
func (h *ApplicationHandler) filtered(c *fiber.Ctx, q listQuery) ([]listing.Row, map[string]*models.ApplicationRecord, error) {
	records, err := h.Catalogue.FilterBy(c.UserContext(), q.Filter)
	if err != nil {
		return nil, nil, err
	}
	if q.Search != "" {
		matched, err := h.Catalogue.Search(c.UserContext(), q.Search)
		if err != nil {
			return nil, nil, err
		}
		records = intersectRecords(records, matched)
	}

	rows, err := listing.Rows(records)
	if err != nil {
		return nil, nil, err
	}
	rows = listing.Filter(rows, q.Criteria)
	listing.Sort(rows, q.Sort, q.Dir)

	byID := make(map[string]*models.ApplicationRecord, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}
	return rows, byID, nil
}

// intersectRecords keeps the records of a that are also in b, in a's order
func intersectRecords(a, b []models.ApplicationRecord) []models.ApplicationRecord {
	in := make(map[string]struct{}, len(b))
	for i := range b {
		in[b[i].ID] = struct{}{}
	}
	out := a[:0]
	for i := range a {
		if _, ok := in[a[i].ID]; ok {
			out = append(out, a[i])
		}
	}
	return out
}

// GetApplications handles GET /api/applications
// @Summary List applications
// @Description Filter, search, sort and page the catalogue
// @Tags Applications
// @Produce json
// @Param tier query string false "Current tier, exact"
// @Param status query string false "Lifecycle status, case-insensitive"
// @Param vendor query string false "Vendor substring"
// @Param domain query string false "Architecture domain substring, any level"
// @Param type query string false "Application type, exact"
// @Param q query string false "Free text over every field"
// @Param search query string false "Free text over name, product, vendor, common name and description"
// @Param sort query string false "Field to sort by" default(id)
// @Param dir query string false "asc or desc" default(asc)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(12)
// @Success 200 {object} ApplicationPage
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /applications [get]
func (h *ApplicationHandler) GetApplications(c *fiber.Ctx) error {
	q := parseListQuery(c)

	rows, byID, err := h.filtered(c, q)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getApplications")
	}

	page := listing.Paginate(rows, q.Page, q.PageSize)
	items := make([]models.ApplicationRecord, 0, len(page.Items))
	for _, row := range page.Items {
		items = append(items, *byID[listing.Text(row["id"])])
	}

	result := ApplicationPage{
		Page: listing.Page[models.ApplicationRecord]{
			Items:      items,
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
			StartItem:  page.StartItem,
			EndItem:    page.EndItem,
		},
		VisiblePages: listing.VisiblePages(page.Page, page.TotalPages),
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// SearchApplications handles GET /api/applications/search
// @Summary Search applications
// @Description Case-insensitive substring match over name, product, vendor, common name and description. An empty q returns everything.
// @Tags Applications
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {array} models.ApplicationRecord
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /applications/search [get]
func (h *ApplicationHandler) SearchApplications(c *fiber.Ctx) error {
	records, err := h.Catalogue.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "searchApplications")
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

// GetApplication handles GET /api/applications/:id
// @Summary Get an application
// @Tags Applications
// @Produce json
// @Param id path string true "Catalogue id"
// @Success 200 {object} models.ApplicationRecord
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	id := c.Params("id")

	record, err := h.Catalogue.GetByID(c.UserContext(), id)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getApplication")
	}
	if record == nil {
		return utils.NotFoundResponse(c, fmt.Sprintf("Application '%s' not found", id))
	}

	return c.Status(fiber.StatusOK).JSON(record)
}

// GetStats handles GET /api/applications/stats
// @Summary Dashboard counters
// @Tags Applications
// @Produce json
// @Success 200 {object} catalogue.Stats
// @Router /applications/stats [get]
func (h *ApplicationHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.Catalogue.Stats(c.UserContext())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getStats")
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

// GetMetrics handles GET /api/applications/metrics
// @Summary Catalogue metrics
// @Tags Applications
// @Produce json
// @Success 200 {object} catalogue.Metrics
// @Router /applications/metrics [get]
func (h *ApplicationHandler) GetMetrics(c *fiber.Ctx) error {
	m, err := h.Catalogue.Metrics(c.UserContext())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getMetrics")
	}
	return c.Status(fiber.StatusOK).JSON(m)
}

// GetUniqueValues handles GET /api/applications/values
// @Summary Distinct filter values
// @Tags Applications
// @Produce json
// @Success 200 {object} catalogue.UniqueValues
// @Router /applications/values [get]
func (h *ApplicationHandler) GetUniqueValues(c *fiber.Ctx) error {
	uv, err := h.Catalogue.UniqueValues(c.UserContext())
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getUniqueValues")
	}
	return c.Status(fiber.StatusOK).JSON(uv)
}

// GetApplicationAuditLogs handles GET /api/applications/:id/audit-logs
// @Summary Audit trail of an application
// @Description Newest first, optionally narrowed to one category. Counts cover the whole trail.
// @Tags Applications
// @Produce json
// @Param id path string true "Catalogue id"
// @Param category query string false "creation, approval, rejection, change, deployment, submission or other"
// @Success 200 {object} ApplicationAuditLogs
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id}/audit-logs [get]
func (h *ApplicationHandler) GetApplicationAuditLogs(c *fiber.Ctx) error {
	id := c.Params("id")
	ctx := c.UserContext()

	record, err := h.Catalogue.GetByID(ctx, id)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getApplicationAuditLogs")
	}
	if record == nil {
		return utils.NotFoundResponse(c, fmt.Sprintf("Application '%s' not found", id))
	}

	entries, err := h.Audit.ByCatalogueID(ctx, id)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getApplicationAuditLogs")
	}

	result := ApplicationAuditLogs{
		CatalogueID: id,
		Total:       len(entries),
		Counts:      auditlog.CategoryCounts(entries),
		Entries:     entries,
	}
	if category := c.Query("category"); category != "" {
		result.Entries = auditlog.FilterByCategory(entries, auditlog.Category(category))
	}
	if result.Entries == nil {
		result.Entries = []models.AuditLogEntry{}
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// CreateApplications handles POST /api/applications
// @Summary Create applications
// @Description Accepts one record or an array. A missing id is generated. Records are created in order and creation stops at the first failure.
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body models.ApplicationRecord true "Record or array of records"
// @Success 201 {object} models.ApplicationRecord
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ValidationErrorStruct
// @Security CookieAuth
// @Router /applications [post]
func (h *ApplicationHandler) CreateApplications(c *fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	var input types.FlexList[models.ApplicationRecord]
	if err := json.Unmarshal(body, &input); err != nil || len(input) == 0 {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "createApplications")
	}

	actor := middleware.ActorName(c)
	created := make([]*models.ApplicationRecord, 0, len(input))
	for i := range input {
		record, err := h.Creator.Create(c.UserContext(), &input[i], actor, "api")
		if err != nil {
			return recordError(c, err, "createApplications")
		}
		created = append(created, record)
	}

	// a single object in gets a single object out
	if types.IsJSONObject(body) {
		return c.Status(fiber.StatusCreated).JSON(created[0])
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateApplication handles PATCH /api/applications/:id
// @Summary Patch an application
// @Description Applies an RFC 6902 JSON Patch. Each changed field is recorded in the audit log.
// @Tags Applications
// @Accept json-patch+json
// @Produce json
// @Param id path string true "Catalogue id"
// @Success 200 {object} ApplicationUpdate
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 422 {object} utils.ValidationErrorStruct
// @Security CookieAuth
// @Router /applications/{id} [patch]
func (h *ApplicationHandler) UpdateApplication(c *fiber.Ctx) error {
	id := c.Params("id")

	record, entries, err := h.Catalogue.Update(c.UserContext(), id, c.Body(), middleware.ActorName(c))
	if err != nil {
		return recordError(c, err, "updateApplication")
	}

	if len(entries) > 0 {
		metrics.ApplicationsUpdated.Inc()
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}

	return c.Status(fiber.StatusOK).JSON(ApplicationUpdate{Application: record, AuditLogs: entries})
}

// recordError maps catalogue and validation errors to responses
func recordError(c *fiber.Ctx, err error, errorType string) error {
	var verrs types.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return utils.ValidationErrorResponse(c, "Application is invalid", verrs)
	case errors.Is(err, catalogue.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, catalogue.ErrDuplicateID):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "duplicate")
	case errors.Is(err, catalogue.ErrInvalidID):
		return utils.ValidationErrorResponse(c, err.Error(), map[string]string{"id": "Invalid format"})
	case errors.Is(err, catalogue.ErrInvalidPatch), errors.Is(err, form.ErrInvalidValue):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, errorType)
	}

	log := middleware.Logger(c)
	log.Error().Err(err).Str("type", errorType).Msg("Catalogue write failed")
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, errorType)
}
