package tags

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"tagging/internal/shared/constants"
	"tagging/pkg/cache"
)

const defaultPageSize = 20

// Cache Helper Methods

// cacheGet treats a missing cache as a miss
func cacheGet(ctx context.Context, c cache.Service, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	return c.Get(ctx, key, dest) == nil
}

// cacheSet never fails the caller; a stale or missing entry only costs a query
func cacheSet(ctx context.Context, c cache.Service, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	_ = c.Set(ctx, key, value, ttl)
}

// InvalidateTagCache drops every cached tag entry
func InvalidateTagCache(ctx context.Context, c cache.Service) error {
	if c == nil {
		return nil
	}
	return c.DeletePattern(ctx, constants.PATTERN_INVALIDATE_TAGS_ALL)
}

// Tag Helper Methods

// NormalizeName trims a tag name and rejects names that could not round-trip
// through the whitespace separated import format.
func NormalizeName(name string, maxLength int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return "", ErrInvalidTagName
	}
	if maxLength > 0 && len([]rune(name)) > maxLength {
		return "", ErrTagNameTooLong
	}
	return name, nil
}

// OrderForJoin puts the tag with primaryID first and keeps the relative order
// of the rest.
func OrderForJoin(tags []Tag, primaryID uuid.UUID) ([]Tag, error) {
	if len(tags) == 0 {
		return nil, ErrNoTagsToJoin
	}

	ordered := make([]Tag, len(tags))
	copy(ordered, tags)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID == primaryID && ordered[j].ID != primaryID
	})

	if ordered[0].ID != primaryID {
		return nil, ErrPrimaryNotSelected
	}
	return ordered, nil
}

// ParseIDs parses the selected action checkboxes, ignoring duplicates
func ParseIDs(raw []string) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(strings.TrimSpace(r))
		if err != nil {
			return nil, errors.Join(ErrInvalidTagID, err)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	var clean []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" && !seen[name] {
			seen[name] = true
			clean = append(clean, name)
		}
	}
	return clean
}
