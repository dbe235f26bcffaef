package configx

import (
	"sort"
	"strconv"
	"time"

	"github.com/Abraxas-365/wahax/logx"
)

// Config is a merged view over layered configuration sources. Higher-priority
// sources override lower ones key by key; nested maps flatten to dotted keys.
type Config struct {
	values map[string]any
}

// Load merges the sources into one Config. Sources are applied in ascending
// priority order, so an env source at priority 100 overrides a file at 50.
func Load(sources ...Source) (*Config, error) {
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})

	values := make(map[string]any)
	for _, source := range ordered {
		loaded, err := source.Load()
		if err != nil {
			return nil, err
		}
		flattenInto(values, "", loaded)
		logx.Debug("Loaded %d config keys from %s", len(loaded), source.Name())
	}

	return &Config{values: values}, nil
}

// flattenInto merges src into dst, turning nested maps into dotted keys
func flattenInto(dst map[string]any, prefix string, src map[string]any) {
	for key, value := range src {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(dst, full, nested)
			continue
		}
		dst[full] = value
	}
}

// Get retrieves a configuration value by key
func (c *Config) Get(key string) Value {
	raw, ok := c.values[key]
	return Value{raw: raw, ok: ok}
}

// Has checks if a configuration key exists
func (c *Config) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// AllSettings returns every flattened key and value
func (c *Config) AllSettings() map[string]any {
	settings := make(map[string]any, len(c.values))
	for key, value := range c.values {
		settings[key] = value
	}
	return settings
}

// Value wraps one configuration value with type conversion helpers
type Value struct {
	raw any
	ok  bool
}

// IsSet returns true if the value exists
func (v Value) IsSet() bool {
	return v.ok
}

// AsString returns the value as a string, or "" when unset
func (v Value) AsString() string {
	return v.AsStringDefault("")
}

// AsStringDefault returns the value as a string or a default value
func (v Value) AsStringDefault(def string) string {
	if !v.ok {
		return def
	}
	switch raw := v.raw.(type) {
	case string:
		return raw
	case bool:
		return strconv.FormatBool(raw)
	case int:
		return strconv.Itoa(raw)
	case float64:
		return strconv.FormatFloat(raw, 'f', -1, 64)
	default:
		return def
	}
}

// AsInt returns the value as an int, or 0 when unset
func (v Value) AsInt() int {
	return v.AsIntDefault(0)
}

// AsIntDefault returns the value as an int or a default value. JSON numbers
// decode as float64 and convert here.
func (v Value) AsIntDefault(def int) int {
	if !v.ok {
		return def
	}
	switch raw := v.raw.(type) {
	case int:
		return raw
	case int64:
		return int(raw)
	case float64:
		return int(raw)
	case string:
		if parsed, err := strconv.Atoi(raw); err == nil {
			return parsed
		}
	}
	return def
}

// AsBool returns the value as a bool, or false when unset
func (v Value) AsBool() bool {
	return v.AsBoolDefault(false)
}

// AsBoolDefault returns the value as a bool or a default value
func (v Value) AsBoolDefault(def bool) bool {
	if !v.ok {
		return def
	}
	switch raw := v.raw.(type) {
	case bool:
		return raw
	case string:
		if parsed, err := strconv.ParseBool(raw); err == nil {
			return parsed
		}
	}
	return def
}

// AsDurationDefault returns the value as a duration or a default value.
// Strings parse with time.ParseDuration; bare numbers are seconds.
func (v Value) AsDurationDefault(def time.Duration) time.Duration {
	if !v.ok {
		return def
	}
	switch raw := v.raw.(type) {
	case string:
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
	case int:
		return time.Duration(raw) * time.Second
	case float64:
		return time.Duration(raw * float64(time.Second))
	}
	return def
}
