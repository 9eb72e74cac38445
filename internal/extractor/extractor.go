package extractor

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Extractor turns raw file bytes into plain text (text, HTML, PDF, etc.).
type Extractor interface {
	Name() string
	Extensions() []string
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry keeps a mapping from file extensions to their extractors.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[string]Extractor{}}
}

// Register adds or replaces the extractor for each of its extensions.
func (r *Registry) Register(e Extractor) {
	if r.extractors == nil {
		r.extractors = map[string]Extractor{}
	}
	for _, ext := range e.Extensions() {
		r.extractors[normalize(ext)] = e
	}
}

// Resolve returns the extractor for ext or an error if it is absent.
func (r *Registry) Resolve(ext string) (Extractor, error) {
	if e, ok := r.extractors[normalize(ext)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("no extractor registered for %q", ext)
}

// Supports reports whether ext has a registered extractor.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.extractors[normalize(ext)]
	return ok
}

// ForFile resolves the extractor by the extension of name.
func (r *Registry) ForFile(name string) (Extractor, error) {
	return r.Resolve(path.Ext(name))
}

func normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
