package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Older protocol revisions serialized cart and catalog numbers
// inconsistently: sometimes as JSON numbers, sometimes as strings. The flex
// types accept either shape and coerce anything unparseable to zero, so one
// bad field never poisons arithmetic or fails a whole record.

// flexFloat decodes a JSON number or numeric string. Unparseable values,
// NaN and infinities all coerce to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	*f = flexFloat(coerceFloat(data))
	return nil
}

// flexInt64 decodes like flexFloat and truncates toward zero.
type flexInt64 int64

func (i *flexInt64) UnmarshalJSON(data []byte) error {
	*i = flexInt64(coerceInt64(data))
	return nil
}

// flexInt decodes like flexFloat and truncates toward zero.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	*i = flexInt(coerceInt64(data))
	return nil
}

// flexString decodes a JSON string. Any non-string value coerces to "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		*s = ""
		return nil
	}
	*s = flexString(v)
	return nil
}

func coerceFloat(data []byte) float64 {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0
	}
	if s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return 0
		}
		s = strings.TrimSpace(unquoted)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func coerceInt64(data []byte) int64 {
	v := coerceFloat(data)
	if v >= math.MaxInt64 || v <= math.MinInt64 {
		return 0
	}
	return int64(v)
}
