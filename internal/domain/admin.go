package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AdminRegistry is the immutable set of privileged user ids.
// Membership only changes presentation; it grants no permissions.
type AdminRegistry struct {
	ids map[int64]struct{}
}

// NewAdminRegistry builds a registry from already parsed ids
func NewAdminRegistry(ids ...int64) *AdminRegistry {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &AdminRegistry{ids: set}
}

// ParseAdminRegistry parses a JSON array of integers, e.g. "[42, 1001]".
//
// A blank value yields an empty registry. Anything that is not a JSON array of
// integers rejects the whole list: the returned registry is empty and the error
// describes why, so the caller can log it. The registry is usable either way.
func ParseAdminRegistry(raw string) (*AdminRegistry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NewAdminRegistry(), nil
	}

	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return NewAdminRegistry(), fmt.Errorf("admin ids must be a JSON array of integers: %w", err)
	}

	return NewAdminRegistry(ids...), nil
}

// IsAdmin reports whether the user id is in the registry
func (r *AdminRegistry) IsAdmin(userID int64) bool {
	if r == nil {
		return false
	}
	_, ok := r.ids[userID]
	return ok
}

// Len returns the number of distinct admin ids
func (r *AdminRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}
