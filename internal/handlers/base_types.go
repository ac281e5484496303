package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/basetypes"
	"github.com/localnerve/archhub/internal/models"
	"github.com/localnerve/archhub/internal/utils"
)

// BaseTypeHandler serves the base type lookup
type BaseTypeHandler struct {
	Lookup *basetypes.Lookup
}

// BaseTypeList is the lookup table, optionally narrowed to one type
type BaseTypeList struct {
	Types   []string               `json:"types"`
	Entries []models.BaseTypeEntry `json:"entries"`
}

// GetBaseTypes handles GET /api/base-types
// @Summary List base types
// @Tags BaseTypes
// @Produce json
// @Param type query string false "Base type"
// @Success 200 {object} BaseTypeList
// @Router /base-types [get]
func (h *BaseTypeHandler) GetBaseTypes(c *fiber.Ctx) error {
	entries := h.Lookup.Entries()

	if baseType := c.Query("type"); baseType != "" {
		narrowed := make([]models.BaseTypeEntry, 0)
		for _, e := range entries {
			if e.BaseType == baseType {
				narrowed = append(narrowed, e)
			}
		}
		entries = narrowed
	}

	return c.Status(fiber.StatusOK).JSON(BaseTypeList{
		Types:   h.Lookup.Types(),
		Entries: entries,
	})
}

// GetBaseType handles GET /api/base-types/entries/:id
// @Summary Get a base type entry
// @Tags BaseTypes
// @Produce json
// @Param id path string true "Entry id"
// @Success 200 {object} models.BaseTypeEntry
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /base-types/entries/{id} [get]
func (h *BaseTypeHandler) GetBaseType(c *fiber.Ctx) error {
	id := c.Params("id")

	entry := h.Lookup.ByID(id)
	if entry == nil {
		return utils.NotFoundResponse(c, fmt.Sprintf("Base type '%s' not found", id))
	}
	return c.Status(fiber.StatusOK).JSON(entry)
}

// GetOptions handles GET /api/base-types/:type/options
// @Summary Select options of a base type
// @Description Narrowed to children of parent when given. value looks up a single entry instead.
// @Tags BaseTypes
// @Produce json
// @Param type path string true "Base type"
// @Param parent query string false "Parent base value"
// @Param value query string false "Base value to look up"
// @Success 200 {array} basetypes.Option
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /base-types/{type}/options [get]
func (h *BaseTypeHandler) GetOptions(c *fiber.Ctx) error {
	baseType := c.Params("type")

	if value := c.Query("value"); value != "" {
		entry := h.Lookup.ByValue(baseType, value)
		if entry == nil {
			return utils.NotFoundResponse(c, fmt.Sprintf("Base value '%s' of '%s' not found", value, baseType))
		}
		return c.Status(fiber.StatusOK).JSON([]basetypes.Option{{Value: entry.BaseValue, Label: entry.BaseValue}})
	}

	return c.Status(fiber.StatusOK).JSON(h.Lookup.OptionsWithParent(baseType, c.Query("parent")))
}
