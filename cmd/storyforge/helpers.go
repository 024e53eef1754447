package main

import (
	"context"
	"fmt"
	"strings"

	"storyforge/internal/artifact"
	"storyforge/internal/store"
)

// resolveArtifact loads an artifact by full ID or unique ID prefix.
func resolveArtifact(ctx context.Context, st *store.Store, idOrPrefix string) (*artifact.Artifact, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return nil, fmt.Errorf("artifact id required")
	}

	a, err := st.GetByID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}

	ids, err := st.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, id := range ids {
		if strings.HasPrefix(id, idOrPrefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no story matches %q", idOrPrefix)
	case 1:
		return st.GetByID(ctx, matches[0])
	default:
		return nil, fmt.Errorf("%q is ambiguous: matches %d stories", idOrPrefix, len(matches))
	}
}
