// common.go
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
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/archhub/internal/catalogue"
	"github.com/localnerve/archhub/internal/listing"
	"github.com/localnerve/archhub/internal/types"
)

// parseList extracts a list from query parameters, supporting both
// repeated keys and comma-separated values. Order is kept, duplicates dropped.
func parseList(c *fiber.Ctx, name string) []string {
	var out []string
	seen := make(map[string]struct{})

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != name {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	return out
}

// parseColumnFilters reads filter[<field>]=value query parameters
func parseColumnFilters(c *fiber.Ctx) map[string]string {
	filters := make(map[string]string)

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		k := string(key)
		if !strings.HasPrefix(k, "filter[") || !strings.HasSuffix(k, "]") {
			continue
		}
		field := strings.TrimSuffix(strings.TrimPrefix(k, "filter["), "]")
		if field != "" && len(value) > 0 {
			filters[field] = string(value)
		}
	}

	if len(filters) == 0 {
		return nil
	}
	return filters
}

// listQuery is the query shared by the list and export routes
type listQuery struct {
	Filter   catalogue.Filter
	Criteria listing.Criteria
	Sort     string
	Dir      listing.Direction
	Page     int
	PageSize int
	Search   string
}

func parseListQuery(c *fiber.Ctx) listQuery {
	q := listQuery{
		Filter: catalogue.Filter{
			Tier:   c.Query("tier"),
			Status: c.Query("status"),
			Vendor: c.Query("vendor"),
			Domain: c.Query("domain"),
		},
		Sort:     c.Query("sort", "id"),
		Dir:      listing.ParseDirection(c.Query("dir")),
		Page:     c.QueryInt("page", 1),
		PageSize: min(c.QueryInt("pageSize", listing.DefaultPageSize), listing.MaxPageSize),
		Search:   c.Query("search"),
	}
	q.Criteria = listing.Criteria{
		Tier:    q.Filter.Tier,
		Status:  q.Filter.Status,
		Type:    c.Query("type"),
		Query:   c.Query("q"),
		Columns: parseColumnFilters(c),
	}
	return q
}

// ErrorHandler renders every unhandled error as the standard error envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fe *fiber.Error
	var ce *types.CustomError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.As(err, &ce):
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	}

	// Check for version errors
	versionError := false
	if code == fiber.StatusConflict || strings.HasPrefix(message, "E_VERSION") {
		versionError = true
		errorType = "version"
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       code,
		"message":      message,
		"ok":           false,
		"versionError": versionError,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         errorType,
	})
}

// NotFound is the fallback route
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}
