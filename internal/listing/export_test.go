package listing_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/localnerve/archhub/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportTime = time.Date(2024, 12, 12, 9, 30, 0, 0, time.UTC)

func TestParseFormat(t *testing.T) {
	f, err := listing.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, listing.FormatXLSX, f)

	_, err = listing.ParseFormat("pdf")
	assert.ErrorIs(t, err, listing.ErrUnsupportedFormat)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "catalogue-export-2024-12-12.csv", listing.Filename(listing.FormatCSV, exportTime))
	assert.Equal(t, "text/csv", listing.FormatCSV.ContentType())
}

func TestWriteCSV(t *testing.T) {
	rows := listing.Filter(fixtureRows(t), listing.Criteria{Tier: "Tier 3"})
	require.Len(t, rows, 3)

	cols, err := newColumns(t).Select([]string{"id", "applicationName", "currentTier"})
	require.NoError(t, err)
	visible := cols.Visible()

	var buf bytes.Buffer
	require.NoError(t, listing.WriteCSV(&buf, visible, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(rows)+1)
	assert.Equal(t, "ID,Name,Tier", lines[0])
	for _, line := range lines[1:] {
		assert.Len(t, strings.Split(line, ","), len(visible))
	}
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	cols := []listing.Column{{Field: "id", Title: "ID"}, {Field: "description", Title: "Description"}}
	rows := []listing.Row{{"id": "TA100114", "description": "Employee self service, leave and payroll"}}

	var buf bytes.Buffer
	require.NoError(t, listing.WriteCSV(&buf, cols, rows))
	assert.Equal(t, "ID,Description\nTA100114,\"Employee self service, leave and payroll\"\n", buf.String())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Employee self service, leave and payroll", records[1][1])
}

func TestWriteJSON(t *testing.T) {
	criteria := listing.Criteria{Query: "oracle"}
	rows := listing.Filter(fixtureRows(t), criteria)

	var buf bytes.Buffer
	require.NoError(t, listing.WriteJSON(&buf, rows, criteria, exportTime))

	var env listing.Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.True(t, exportTime.Equal(env.ExportDate))
	assert.Equal(t, 2, env.TotalApplications)
	assert.Equal(t, "oracle", env.Filters.Query)
	require.Len(t, env.Applications, 2)
	assert.Equal(t, "TA100104", env.Applications[0]["id"])
	assert.Equal(t, "Oracle", env.Applications[0]["vendorName"])
	assert.NotContains(t, env.Applications[0], "description")
}

func TestWriteXLSX(t *testing.T) {
	rows := listing.Filter(fixtureRows(t), listing.Criteria{Type: "SaaS"})
	require.Len(t, rows, 4)
	visible := newColumns(t).Visible()

	var buf bytes.Buffer
	require.NoError(t, listing.WriteXLSX(&buf, visible, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet, err := f.GetRows("Catalogue")
	require.NoError(t, err)
	require.Len(t, sheet, len(rows)+1)
	assert.Equal(t, "ID", sheet[0][0])
	assert.Equal(t, "TA100105", sheet[1][0])
	assert.Len(t, sheet[0], len(visible))
}

func TestExportWrite(t *testing.T) {
	rows := fixtureRows(t)

	e := &listing.Export{
		Format:  listing.FormatCSV,
		Columns: newColumns(t).Visible(),
		Rows:    rows,
		Now:     exportTime,
	}
	var buf bytes.Buffer
	require.NoError(t, e.Write(&buf))
	assert.Equal(t, 17, strings.Count(buf.String(), "\n"))

	e.Format = "pdf"
	assert.ErrorIs(t, e.Write(&buf), listing.ErrUnsupportedFormat)
}
