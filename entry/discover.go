package entry

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/prun/log"
	"github.com/ardnew/prun/pipeline"
)

// Manifest file extensions recognized by [Discover].
var manifestExt = map[string]func(path string) (*pipeline.Module, error){
	".yaml": LoadYAML,
	".yml":  LoadYAML,
	".hcl":  LoadHCL,
}

// Discover registers one lazy entry per manifest file found directly in each
// of dirs. The file stem is the namespace name; manifests are not read until
// the namespace is resolved. Directories are scanned in order, so a later
// manifest replaces an earlier one with the same stem. Missing directories
// are skipped.
func Discover(r *Registry, dirs ...string) ([]string, error) {
	var found []string

	for _, dir := range dirs {
		ents, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("namespace directory not found", slog.String("dir", dir))

			continue
		}

		if err != nil {
			return found, err
		}

		for _, ent := range ents {
			if ent.IsDir() {
				continue
			}

			ext := filepath.Ext(ent.Name())

			load, ok := manifestExt[strings.ToLower(ext)]
			if !ok {
				continue
			}

			name := strings.TrimSuffix(ent.Name(), ext)
			path := filepath.Join(dir, ent.Name())

			r.Register(name, func() (*pipeline.Module, error) { return load(path) })

			log.Debug(
				"registered namespace manifest",
				slog.String("namespace", name),
				slog.String("path", path),
			)

			if !slices.Contains(found, name) {
				found = append(found, name)
			}
		}
	}

	return found, nil
}
