// Package settings holds the editor controller configuration: a flat map of
// kind-prefixed keys such as imagePathFormat or fileManagerListSize.
package settings

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings is the merged controller configuration. It is treated as
// read-only once handed to a dispatcher.
type Settings map[string]any

// Merge returns a new Settings with each override applied over base in order.
func Merge(base Settings, overrides ...Settings) Settings {
	merged := make(Settings, len(base))
	maps.Copy(merged, base)
	for _, o := range overrides {
		maps.Copy(merged, o)
	}
	return merged
}

// Clone returns a copy of s whose list and map values are copied too, so
// changes to the copy never reach s.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]any:
		return map[string]any(Settings(t).Clone())
	case Settings:
		return t.Clone()
	}
	return v
}

// Load reads overrides from a YAML or JSON file.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}

// String returns the string value of key, or "" when absent.
func (s Settings) String(key string) string {
	switch v := s[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the numeric value of key, or 0 when absent or not numeric.
func (s Settings) Int64(key string) int64 {
	switch v := s[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// Int is Int64 narrowed to int.
func (s Settings) Int(key string) int {
	return int(s.Int64(key))
}

// Strings returns a list value. A bare string is treated as a one element list,
// so "*" works as an allow-all marker.
func (s Settings) Strings(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
