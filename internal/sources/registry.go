package sources

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds the known source adapters and resolves which one should
// read a given input file.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source adapter, replacing any adapter already
// registered under the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get retrieves a source adapter by name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	return s, ok
}

// Names returns the registered source names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns the registered adapters in name order.
func (r *Registry) List() []Source {
	result := make([]Source, 0)
	for _, name := range r.Names() {
		if s, ok := r.Get(name); ok {
			result = append(result, s)
		}
	}
	return result
}

// Count returns the number of registered sources.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// DetectSource picks the adapter for a path. Adapters claiming the
// file's extension are probed first; when none claims it, every adapter
// is probed. The adapter reporting the highest confidence wins, with
// name order breaking ties so detection is deterministic. A zero best
// confidence means no adapter recognized the file.
func (r *Registry) DetectSource(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))

	candidates := r.byExtension(ext)
	if len(candidates) == 0 {
		candidates = r.List()
	}

	var best Source
	bestConfidence := 0

	for _, s := range candidates {
		confidence, err := s.Detect(path)
		if err != nil {
			// An adapter that cannot even probe the file is not a match.
			continue
		}
		if confidence > bestConfidence {
			best = s
			bestConfidence = confidence
		}
	}

	if best == nil {
		return nil, &ErrSourceNotFound{Path: path}
	}
	return best, nil
}

// byExtension returns the adapters claiming the given lowercase
// extension, in name order.
func (r *Registry) byExtension(ext string) []Source {
	var matched []Source
	for _, s := range r.List() {
		for _, claimed := range s.SupportedExtensions() {
			if strings.ToLower(claimed) == ext {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry. Built-in adapters
// add themselves to it from their init functions.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// RegisterDefault registers a source with the default registry.
func RegisterDefault(s Source) {
	DefaultRegistry().Register(s)
}
