package configx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Source is one layer of configuration values
type Source interface {
	// Load loads configuration values from the source
	Load() (map[string]any, error)

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher overrides lower)
	Priority() int
}

// Conventional priorities: defaults under files, files under env
const (
	PriorityDefaults = 0
	PriorityFile     = 50
	PriorityEnv      = 100
)

// MapSource serves a fixed map of values, typically application defaults
type MapSource struct {
	name     string
	priority int
	values   map[string]any
}

// NewDefaults creates a defaults source at the lowest priority
func NewDefaults(values map[string]any) Source {
	return &MapSource{name: "defaults", priority: PriorityDefaults, values: values}
}

// NewMapSource creates a map source with an explicit name and priority
func NewMapSource(name string, priority int, values map[string]any) Source {
	return &MapSource{name: name, priority: priority, values: values}
}

func (s *MapSource) Load() (map[string]any, error) { return s.values, nil }
func (s *MapSource) Name() string                  { return s.name }
func (s *MapSource) Priority() int                 { return s.priority }

// FileSource loads a JSON config file. A missing file contributes nothing
// when optional, and fails the load otherwise.
type FileSource struct {
	path     string
	optional bool
}

// NewFileSource creates a required JSON file source
func NewFileSource(path string) Source {
	return &FileSource{path: path}
}

// NewOptionalFileSource creates a JSON file source that tolerates absence
func NewOptionalFileSource(path string) Source {
	return &FileSource{path: path, optional: true}
}

func (s *FileSource) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) && s.optional {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", s.path, err)
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", s.path, err)
	}
	return values, nil
}

func (s *FileSource) Name() string  { return "file:" + s.path }
func (s *FileSource) Priority() int { return PriorityFile }

// EnvSource loads environment variables carrying a prefix. WAHAX_LOG_LEVEL
// with prefix "WAHAX_" becomes key "log_level".
type EnvSource struct {
	prefix string
}

// NewEnvSource creates an environment variable source
func NewEnvSource(prefix string) Source {
	return &EnvSource{prefix: prefix}
}

func (s *EnvSource) Load() (map[string]any, error) {
	values := make(map[string]any)
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, s.prefix) {
			continue
		}
		key = strings.ToLower(strings.TrimPrefix(key, s.prefix))
		if key == "" {
			continue
		}
		values[key] = value
	}
	return values, nil
}

func (s *EnvSource) Name() string  { return "env:" + s.prefix + "*" }
func (s *EnvSource) Priority() int { return PriorityEnv }
