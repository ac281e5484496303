package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexUint64 is a version number sent either as a JSON number or as a
// string, since clients echo back the string newVersion of a write response.
type FlexUint64 uint64

// UnmarshalJSON accepts 7, "7" and " 7 ". An empty document leaves f unchanged.
func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("FlexUint64: %w", err)
		}
	}

	n, err := strconv.ParseUint(string(bytes.TrimSpace([]byte(raw))), 10, 64)
	if err != nil {
		return fmt.Errorf("FlexUint64: invalid version %s", data)
	}
	*f = FlexUint64(n)
	return nil
}

// MarshalJSON writes a plain number
func (f FlexUint64) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(f), 10), nil
}

// Uint64 converts FlexUint64 back to uint64.
func (f FlexUint64) Uint64() uint64 {
	return uint64(f)
}
