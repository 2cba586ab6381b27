// Package roster loads the character list the editor starts with.
//
// The manifest is a JSON array of character names. Each name becomes an
// entity whose image is <image dir>/<name>.png. A missing or unreadable
// manifest falls back to a built-in pair so the editor always has something
// to show.
package roster

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"shipperizer/internal/domain"
)

// Fallback is used when the manifest cannot be read
var Fallback = []string{"Blitzo", "Stolas"}

// Loader reads the roster manifest
type Loader struct {
	manifest string
	imageDir string
	logger   *zap.Logger
}

// NewLoader creates a loader for the manifest at manifestPath with images
// served from imageDir
func NewLoader(manifestPath, imageDir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{manifest: manifestPath, imageDir: imageDir, logger: logger}
}

// Manifest returns the manifest path
func (l *Loader) Manifest() string {
	return l.manifest
}

// Names returns the sorted, de-duplicated character names
func (l *Loader) Names() []string {
	names, err := ReadManifest(l.manifest)
	if err != nil {
		l.logger.Warn("manifest missing, falling back to default list",
			zap.String("manifest", l.manifest),
			zap.Error(err))
		return append([]string(nil), Fallback...)
	}
	return names
}

// Entities returns one entity per roster name, all at the origin
func (l *Loader) Entities() []domain.Entity {
	return l.entitiesFor(l.Names())
}

func (l *Loader) entitiesFor(names []string) []domain.Entity {
	out := make([]domain.Entity, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Entity{ID: name, Image: l.ImagePath(name)})
	}
	return out
}

// ImagePath returns the headshot path for name
func (l *Loader) ImagePath(name string) string {
	return path.Join(filepath.ToSlash(l.imageDir), name+".png")
}

// ReadManifest parses a manifest file
func ReadManifest(manifestPath string) ([]string, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
