package loader

import (
	"context"
	"errors"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	protoreg "github.com/gamekit/protoreg"
)

// ManifestNames are the file names probed, in order, when a manifest is
// loaded from a directory.
var ManifestNames = []string{"protoreg.yaml", "protoreg.yml"}

// Manifest is a protoreg.yaml configuration file describing which
// directories hold prototype documents.
type Manifest struct {
	// Roots lists the directories to walk for documents. Paths are
	// relative to the filesystem the manifest was read from.
	Roots []string `yaml:"roots"`
}

// ParseManifest parses manifest YAML.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, protoreg.NewConfigurationError("loader.ParseManifest", err)
	}
	if len(m.Roots) == 0 {
		return nil, protoreg.NewConfigurationError("loader.ParseManifest",
			errors.New("manifest lists no roots"))
	}
	return &m, nil
}

// LoadManifest reads a manifest from dir inside fsys, probing
// protoreg.yaml then protoreg.yml.
func LoadManifest(fsys fs.FS, dir string) (*Manifest, error) {
	for _, name := range ManifestNames {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err == nil {
			return ParseManifest(data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, protoreg.NewConfigurationError("loader.LoadManifest", err).
				WithContext(map[string]any{"path": path.Join(dir, name)})
		}
	}
	return nil, protoreg.NewConfigurationError("loader.LoadManifest",
		errors.New("no protoreg.yaml or protoreg.yml found")).
		WithContext(map[string]any{"dir": dir})
}

// LoadManifestDirs loads every root the manifest names. Results from
// all roots are concatenated in manifest order; parse failures from
// individual documents are joined into the returned error without
// stopping the remaining roots.
func (l *Loader) LoadManifestDirs(ctx context.Context, fsys fs.FS, m *Manifest) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)
	for _, root := range m.Roots {
		res, err := l.LoadDir(ctx, fsys, root)
		results = append(results, res...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}
