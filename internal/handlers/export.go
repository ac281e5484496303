package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/listing"
	"github.com/localnerve/archhub/internal/middleware"
	"github.com/localnerve/archhub/internal/utils"
)

// Export handles GET /api/export/:format
// @Summary Export the catalogue
// @Description Serializes the filtered and sorted list as csv, json or xlsx. Takes the list query plus the visible columns.
// @Tags Export
// @Produce text/csv
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format path string true "csv, json or xlsx"
// @Param columns query string false "Comma-separated column fields, default the primary columns"
// @Param search query string false "Free text over name, product, vendor, common name and description"
// @Success 200 {file} file
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /export/{format} [get]
func (h *ApplicationHandler) Export(c *fiber.Ctx) error {
	format, err := listing.ParseFormat(c.Params("format"))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "export")
	}

	cols, err := h.Columns.Select(parseList(c, "columns"))
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "export")
	}

	q := parseListQuery(c)
	rows, _, err := h.filtered(c, q)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "export")
	}

	now := time.Now()
	export := &listing.Export{
		Format:   format,
		Columns:  cols.Visible(),
		Rows:     rows,
		Criteria: q.Criteria,
		Now:      now,
	}

	var buf bytes.Buffer
	if err := export.Write(&buf); err != nil {
		middleware.Logger(c).Error().Err(err).Str("format", string(format)).Msg("Export failed")
		if errors.Is(err, listing.ErrUnsupportedFormat) {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "export")
		}
		return utils.ErrorResponse(c, "Export failed", fiber.StatusInternalServerError, "export")
	}

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", listing.Filename(format, now)))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
