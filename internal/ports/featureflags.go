package ports

import "context"

// Feature flag names.
const (
	// FlagPreferDeclaredSex stores the sex code sent by the caller instead of
	// the one inferred from the name.
	FlagPreferDeclaredSex = "prefer-declared-sex"
)

// FeatureFlags answers boolean switches read from the features section of
// the configuration.
//
//	if flags.IsEnabled(ctx, ports.FlagPreferDeclaredSex, false) {
//	    sex = q.Sex()
//	}
type FeatureFlags interface {
	// IsEnabled returns fallback for flags that are not configured.
	IsEnabled(ctx context.Context, flag string, fallback bool) bool
}
