package core

import (
	"context"

	"renewradar/internal/types"
)

// PreferenceResolver turns a set of user IDs into a complete preference map,
// filling the documented default (email only, offsets 1 and 0) for users
// without a stored row. Every requested user ID is present in the result.
type PreferenceResolver struct {
	store PreferenceStore
}

// NewPreferenceResolver creates a resolver over the given store.
func NewPreferenceResolver(store PreferenceStore) *PreferenceResolver {
	return &PreferenceResolver{store: store}
}

// ResolveAll fetches preferences for the given users in one batch and applies
// defaults for users the store does not know. Duplicate IDs are collapsed.
func (r *PreferenceResolver) ResolveAll(ctx context.Context, userIDs []string) (map[string]types.NotificationPreference, error) {
	unique := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	stored, err := r.store.GetBatch(ctx, unique)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]types.NotificationPreference, len(unique))
	for _, id := range unique {
		if p, ok := stored[id]; ok {
			resolved[id] = p
			continue
		}
		resolved[id] = types.DefaultPreference(id)
	}
	return resolved, nil
}
