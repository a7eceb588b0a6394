package assetcache

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// WorkerState tracks a cache generation through its lifecycle.
type WorkerState string

const (
	StateInstalling WorkerState = "installing"
	StateInstalled  WorkerState = "installed" // waiting for activation
	StateActivating WorkerState = "activating"
	StateActive     WorkerState = "active"
	StateRedundant  WorkerState = "redundant"
)

// generation is one versioned cache of assets, stored as a directory named
// after its version token. Bodies and content types live in separate
// subdirectories keyed by the escaped asset path.
type generation struct {
	version string
	dir     string
	state   WorkerState
}

func newGeneration(root, version string) *generation {
	return &generation{
		version: version,
		dir:     filepath.Join(root, version),
		state:   StateInstalling,
	}
}

func (g *generation) bodyPath(assetPath string) string {
	return filepath.Join(g.dir, "body", url.PathEscape(assetPath))
}

func (g *generation) metaPath(assetPath string) string {
	return filepath.Join(g.dir, "meta", url.PathEscape(assetPath))
}

// read returns the cached body and content type for assetPath, if present.
func (g *generation) read(assetPath string) (body []byte, contentType string, ok bool) {
	body, err := os.ReadFile(g.bodyPath(assetPath))
	if err != nil {
		return nil, "", false
	}
	meta, err := os.ReadFile(g.metaPath(assetPath))
	if err == nil {
		contentType = string(meta)
	}
	return body, contentType, true
}

// write stores one asset in the generation.
func (g *generation) write(assetPath string, body []byte, contentType string) error {
	for _, dir := range []string{filepath.Join(g.dir, "body"), filepath.Join(g.dir, "meta")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(g.bodyPath(assetPath), body, 0o644); err != nil {
		return fmt.Errorf("write cached asset %q: %w", assetPath, err)
	}
	if err := os.WriteFile(g.metaPath(assetPath), []byte(contentType), 0o644); err != nil {
		return fmt.Errorf("write cached asset metadata %q: %w", assetPath, err)
	}
	return nil
}
