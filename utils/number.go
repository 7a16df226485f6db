package utils

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a lenient numeric request field. It accepts JSON numbers and
// numeric strings; anything else (null, booleans, garbage text) decodes
// without error but leaves Valid false so handlers can apply their own
// fallback.
type Number struct {
	Value float64
	Valid bool
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value, n.Valid = 0, false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		raw = strings.TrimSpace(raw)
	} else {
		raw = string(data)
	}
	if raw == "" {
		return nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n.Value, n.Valid = f, true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or def when the field was absent or not numeric.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Ptr returns nil for absent or non-numeric input.
func (n Number) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Truthy reports a valid non-zero value.
func (n Number) Truthy() bool {
	return n.Valid && n.Value != 0
}
