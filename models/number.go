package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Number is an optional numeric field from a loosely typed backend payload.
// Valid is false when the field was absent, null or not a JSON number.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a known Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Or returns the value when known, def otherwise.
func (n Number) Or(def float64) float64 {
	if n.Valid {
		return n.Value
	}
	return def
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] == 'n' || data[0] == '"' || data[0] == '{' || data[0] == '[' || data[0] == 't' || data[0] == 'f' {
		// Anything other than a bare number is "unknown", never an error.
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
