// Package formats defines the format plugin contract and the registry that
// maps format identifiers to plugins.
//
// A registry is built once at startup (see the builtin package) and is only
// read afterwards. It is passed explicitly to the synthesis manager rather
// than looked up globally.
package formats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
)

// Plugin reads and writes one configuration format.
type Plugin interface {
	// Name is the canonical format identifier.
	Name() string

	// Extensions lists file extensions (with leading dot) used to infer the
	// format when a spec leaves it empty.
	Extensions() []string

	// Read decodes an existing target file. Files not produced by this engine
	// must be tolerated.
	Read(data []byte) (*types.ExistingFileState, error)

	// Write serializes a merged document. Identical input yields
	// byte-identical output.
	Write(doc types.MergedDocument) ([]byte, error)
}

// Registry maps format identifiers to plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	byExt   map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		byExt:   make(map[string]string),
	}
}

// Register adds p under its own name and under any aliases.
func (r *Registry) Register(p Plugin, aliases ...string) error {
	if p == nil {
		return errors.New(errors.ErrInvalidInput, "plugin cannot be nil")
	}
	names := append([]string{p.Name()}, aliases...)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range names {
		if name == "" {
			return errors.New(errors.ErrInvalidInput, "format name cannot be empty")
		}
		if _, exists := r.plugins[name]; exists {
			return errors.Newf(errors.ErrAlreadyExists, "format %q is already registered", name)
		}
	}
	for _, name := range names {
		r.plugins[name] = p
	}
	for _, ext := range p.Extensions() {
		ext = strings.ToLower(ext)
		if _, taken := r.byExt[ext]; !taken {
			r.byExt[ext] = p.Name()
		}
	}
	return nil
}

// MustRegister registers p and panics on failure. Registration errors at
// startup are programming errors.
func (r *Registry) MustRegister(p Plugin, aliases ...string) {
	if err := r.Register(p, aliases...); err != nil {
		panic(fmt.Sprintf("failed to register format %s: %v", p.Name(), err))
	}
}

// Get returns the plugin for a format identifier. Unknown identifiers are a
// configuration error listing what is available.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, errors.Newf(errors.ErrConfig, "unknown format %q (available: %s)",
			name, strings.Join(r.namesLocked(), ", ")).
			WithDetail(errors.DetailFormat, name)
	}
	return p, nil
}

// Detect infers a format from the extension of path.
func (r *Registry) Detect(path string) (Plugin, error) {
	ext := strings.ToLower(filepath.Ext(path))

	r.mu.RLock()
	name, ok := r.byExt[ext]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.ErrConfig, "cannot infer format from %q, set one explicitly", path).
			WithDetail(errors.DetailPath, path)
	}
	return r.Get(name)
}

// Resolve returns the plugin named by format, falling back to extension
// detection on path when format is empty.
func (r *Registry) Resolve(format, path string) (Plugin, error) {
	if format == "" {
		return r.Detect(path)
	}
	return r.Get(format)
}

// List returns all registered identifiers, aliases included, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// Aliases returns every identifier registered for the plugin called name,
// sorted, the canonical name included.
func (r *Registry) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil
	}
	var out []string
	for id, candidate := range r.plugins {
		if candidate.Name() == p.Name() {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Plugins returns each distinct plugin once, ordered by canonical name.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]Plugin)
	for _, p := range r.plugins {
		seen[p.Name()] = p
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]Plugin, len(names))
	for i, n := range names {
		out[i] = seen[n]
	}
	return out
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
