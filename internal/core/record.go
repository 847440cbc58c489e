package core

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// SeriesSpec maps a record field to one visual chart series.
type SeriesSpec struct {
	Key   string `json:"key"`
	Color string `json:"color,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Label returns Name, or Key when no name is set.
func (s SeriesSpec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Key
}

// Record is one generic chart row. Accessors never fail: missing or malformed
// fields read as zero values.
type Record map[string]any

// Number returns the numeric value stored under key, or 0.
func (r Record) Number(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	case *float64:
		if v != nil {
			return *v
		}
	}
	return 0
}

// Text returns the value under key formatted as text, or "".
func (r Record) Text(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// ToRecords converts typed rows into chart records through their JSON form.
func ToRecords[T any](rows []T) ([]Record, error) {
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal rows: %w", err)
	}
	var out []Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal records: %w", err)
	}
	return out, nil
}
