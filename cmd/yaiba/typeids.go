package main

import (
	"fmt"
	"strings"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// ValidTypeIDNames returns a sorted list of valid type id names.
// Delegates to entry.TypeIDs() as the single source of truth.
func ValidTypeIDNames() []string {
	return entry.TypeIDs()
}

// NormalizeTypeIDs converts CLI string values to a yaiba.TypeID slice.
// It handles case-insensitivity, whitespace trimming, and duplicate removal.
func NormalizeTypeIDs(values []string) ([]yaiba.TypeID, error) {
	if len(values) == 0 {
		return nil, nil
	}

	result := make([]yaiba.TypeID, 0, len(values))
	seen := make(map[yaiba.TypeID]struct{})

	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("empty type id provided (input: %q); valid types: %s", raw, strings.Join(ValidTypeIDNames(), ", "))
		}

		t, ok := entry.ParseTypeID(raw)
		if !ok {
			return nil, fmt.Errorf("unknown type id %q (valid: %s)", raw, strings.Join(ValidTypeIDNames(), ", "))
		}

		if _, dup := seen[t]; dup {
			continue // ignore duplicates silently
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}

	return result, nil
}

// RejectOverlap returns an error if any type id is in both includes and excludes.
func RejectOverlap(includes, excludes []yaiba.TypeID) error {
	ex := make(map[yaiba.TypeID]struct{}, len(excludes))
	for _, t := range excludes {
		ex[t] = struct{}{}
	}
	for _, t := range includes {
		if _, ok := ex[t]; ok {
			return fmt.Errorf("type id %q cannot be both included and excluded", t)
		}
	}
	return nil
}
