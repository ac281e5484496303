// page.go
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

// Package listing holds the list view operations: pagination, sorting,
// filtering, column selection and export of catalogue rows.
package listing

import "strconv"

// DefaultPageSize is used when no page size is requested
const DefaultPageSize = 12

// PageSizes are the page sizes offered by the list view
var PageSizes = []int{10, 25, 50, 100}

// MaxPageSize caps a requested page size
const MaxPageSize = 100

// Gap marks elided page numbers in VisiblePages
const Gap = "..."

// Page is one window of a list
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	StartItem  int `json:"startItem"`
	EndItem    int `json:"endItem"`
}

// Paginate returns the page of items. The page is clamped to the available range.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(items)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}
	if start > end {
		start = end
	}

	p := Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
		EndItem:    end,
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	if total > 0 {
		p.StartItem = start + 1
	}
	return p
}

// VisiblePages lists the page links around current: the first and last
// pages, two either side of current, and Gap where pages are skipped.
func VisiblePages(current, total int) []string {
	const delta = 2

	pages := []string{"1"}
	if current-delta > 2 {
		pages = append(pages, Gap)
	}
	for i := max(2, current-delta); i <= min(total-1, current+delta); i++ {
		pages = append(pages, strconv.Itoa(i))
	}
	if current+delta < total-1 {
		pages = append(pages, Gap, strconv.Itoa(total))
	} else if total > 1 {
		pages = append(pages, strconv.Itoa(total))
	}
	return pages
}
