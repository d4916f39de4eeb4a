package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed *.yaml
var PrefabsFS embed.FS

// Dir is where on-disk overrides live, relative to the working directory.
const Dir = "prefabs"

// Load returns a prefab's bytes. A copy under Dir wins over the embedded one
// so edits made while the game runs are picked up on reload.
func Load(name string) ([]byte, error) {
	clean := cleanPrefabPath(name)
	if clean == "" {
		return nil, fmt.Errorf("prefabs: empty name")
	}
	data, err := os.ReadFile(filepath.Join(Dir, filepath.FromSlash(clean)))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return PrefabsFS.ReadFile(clean)
}

// Exists reports whether name resolves to an embedded prefab.
func Exists(name string) bool {
	clean := cleanPrefabPath(name)
	if clean == "" {
		return false
	}
	_, err := fs.Stat(PrefabsFS, clean)
	return err == nil
}

// Names lists the embedded prefabs without their extension, sorted.
func Names() []string {
	entries, err := fs.ReadDir(PrefabsFS, ".")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isSpecFile(e.Name()) {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(out)
	return out
}

func cleanPrefabPath(p string) string {
	s := strings.TrimPrefix(filepath.ToSlash(p), Dir+"/")
	if s == "" {
		return ""
	}
	if path.Ext(s) == "" {
		s += ".yaml"
	}
	return s
}
