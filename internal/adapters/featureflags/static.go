// Package featureflags evaluates feature flags from static configuration.
package featureflags

import (
	"context"
	"maps"

	"github.com/jsamuelsen/insurance-quote-service/internal/ports"
)

var _ ports.FeatureFlags = (*Static)(nil)

// Static answers flag queries from a fixed map, usually the "features"
// section of the service configuration.
type Static struct {
	flags map[string]bool
}

// NewStatic copies flags; later changes to the map are not observed.
func NewStatic(flags map[string]bool) *Static {
	return &Static{flags: maps.Clone(flags)}
}

// IsEnabled implements ports.FeatureFlags.
func (s *Static) IsEnabled(_ context.Context, flag string, defaultValue bool) bool {
	if v, ok := s.flags[flag]; ok {
		return v
	}

	return defaultValue
}
