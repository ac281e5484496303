// export.go
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

package listing

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/localnerve/archhub/internal/metrics"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

const sheetName = "Catalogue"

// ParseFormat reads an export format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSON, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// ContentType is the media type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename is the download name, catalogue-export-YYYY-MM-DD.<ext>
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("catalogue-export-%s.%s", now.UTC().Format(time.DateOnly), f)
}

// projection is the fixed set of fields in a JSON export
var projection = []string{
	"id",
	"applicationName",
	"applicationCommonName",
	"vendorName",
	"productName",
	"version",
	"applicationType",
	"lifecycleStatus",
	"currentTier",
	"targetTier",
	"ownerDivision",
	"architectureDomainL1",
	"strategy.shortTerm",
	"externallyManagedService",
}

// Envelope is the JSON export document
type Envelope struct {
	ExportDate        time.Time        `json:"exportDate"`
	TotalApplications int              `json:"totalApplications"`
	Filters           Criteria         `json:"filters"`
	Applications      []map[string]any `json:"applications"`
}

// Export is one export request
type Export struct {
	Format   Format
	Columns  []Column
	Rows     []Row
	Criteria Criteria
	Now      time.Time
}

// Write serializes the export to w
func (e *Export) Write(w io.Writer) error {
	var err error
	switch e.Format {
	case FormatCSV:
		err = WriteCSV(w, e.Columns, e.Rows)
	case FormatJSON:
		err = WriteJSON(w, e.Rows, e.Criteria, e.Now)
	case FormatXLSX:
		err = WriteXLSX(w, e.Columns, e.Rows)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, e.Format)
	}
	if err != nil {
		return err
	}

	metrics.Exports.WithLabelValues(string(e.Format)).Inc()
	return nil
}

func table(cols []Column, rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.Title
	}
	out = append(out, header)

	for _, row := range rows {
		line := make([]string, len(cols))
		for i, col := range cols {
			line[i] = Text(row[col.Field])
		}
		out = append(out, line)
	}
	return out
}

// WriteCSV writes a header of column titles and one line per row. Values
// containing a comma, quote or newline are quoted.
func WriteCSV(w io.Writer, cols []Column, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table(cols, rows)); err != nil {
		return fmt.Errorf("failed to write csv export: %w", err)
	}
	return nil
}

// WriteJSON writes the export envelope with the fixed field projection
func WriteJSON(w io.Writer, rows []Row, criteria Criteria, now time.Time) error {
	env := Envelope{
		ExportDate:        now.UTC(),
		TotalApplications: len(rows),
		Filters:           criteria,
		Applications:      make([]map[string]any, 0, len(rows)),
	}
	for _, row := range rows {
		app := make(map[string]any, len(projection))
		for _, field := range projection {
			app[field] = row[field]
		}
		env.Applications = append(env.Applications, app)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("failed to write json export: %w", err)
	}
	return nil
}

// WriteXLSX writes the CSV table as a single worksheet
func WriteXLSX(w io.Writer, cols []Column, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	for r, line := range table(cols, rows) {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := make([]any, len(line))
		for i, v := range line {
			values[i] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write worksheet row %d: %w", r+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx export: %w", err)
	}
	return nil
}
