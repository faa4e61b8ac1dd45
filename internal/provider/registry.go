package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps operation families to their callback parsers
type Registry struct {
	parsers map[Family]CallbackParserFunc
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{parsers: make(map[Family]CallbackParserFunc), logger: logger}
}

// Register adds or replaces the parser for a family
func (r *Registry) Register(family Family, fn CallbackParserFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers[family] = fn
	r.logger.Debug().Str("family", string(family)).Msg("registered callback parser")
}

// Parser builds the registered parser for body
func (r *Registry) Parser(family Family, body []byte) (CallbackParser, error) {
	r.mu.RLock()
	fn, ok := r.parsers[family]
	r.mu.RUnlock()

	if !ok {
		return nil, &ProviderError{
			Code:    ErrFamilyNotRegistered,
			Message: fmt.Sprintf("no callback parser registered for %s", family),
		}
	}
	return fn(body)
}

// Families returns the registered families sorted by name
func (r *Registry) Families() []Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Family, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
