package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed *.yaml
var LevelsFS embed.FS

type Level struct {
	Name    string   `yaml:"name"`
	Width   float64  `yaml:"width"`
	Height  float64  `yaml:"height"`
	Objects []Object `yaml:"objects"`
}

// Object places one prefab. Props are component overrides merged over the
// prefab's own components.
type Object struct {
	Type  string         `yaml:"type"`
	Name  string         `yaml:"name,omitempty"`
	X     float64        `yaml:"x"`
	Y     float64        `yaml:"y"`
	Props map[string]any `yaml:"props,omitempty"`
}

// Load reads a level, preferring an on-disk copy under levels/ over the
// embedded one so edits show up without a rebuild.
func Load(name string) (*Level, error) {
	clean := cleanLevelPath(name)
	data, err := os.ReadFile(filepath.Join("levels", filepath.FromSlash(clean)))
	if err != nil {
		data, err = fs.ReadFile(LevelsFS, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, cleanLevelPath(name))
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("level %q: size %vx%v must be positive", l.Name, l.Width, l.Height)
	}
	var errs []error
	for i, obj := range l.Objects {
		if obj.Type == "" {
			errs = append(errs, fmt.Errorf("level %q: object %d has no type", l.Name, i))
		}
	}
	return errors.Join(errs...)
}

func cleanLevelPath(path string) string {
	s := filepath.ToSlash(path)
	s = strings.TrimPrefix(s, "levels/")
	if filepath.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}
