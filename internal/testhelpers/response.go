// response.go
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

package testhelpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ReadBody drains the response body and puts it back, so later helpers can
// read it again
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "read response body")
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return string(body)
}

// AssertStatus verifies the HTTP status code, reporting the body on mismatch
func AssertStatus(t *testing.T, resp *http.Response, expected int) bool {
	t.Helper()
	if resp.StatusCode == expected {
		return true
	}
	return assert.Equalf(t, expected, resp.StatusCode, "unexpected status, body: %s", ReadBody(t, resp))
}

// ParseJSON decodes the response body into target
func ParseJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	body := ReadBody(t, resp)
	require.NoErrorf(t, json.Unmarshal([]byte(body), target), "decode JSON body: %s", body)
}
