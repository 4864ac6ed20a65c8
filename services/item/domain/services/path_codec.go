package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// PathSeparator delimits the ids of a materialized path.
const PathSeparator = "/"

// ComputePath returns the materialized path of an item with the given id
// placed under parentPath. An empty parentPath places the item at the root.
func ComputePath(parentPath string, id uuid.UUID) string {
	return parentPath + PathSeparator + id.String()
}

// IsDescendantPath reports whether path lies strictly below ancestor.
// The separator check keeps "/a/b" from matching "/a/bc".
func IsDescendantPath(ancestor, path string) bool {
	if ancestor == "" {
		return false
	}
	return strings.HasPrefix(path, ancestor+PathSeparator)
}

// ParsePath splits a materialized path into its ids, root first.
func ParsePath(path string) ([]uuid.UUID, error) {
	if !strings.HasPrefix(path, PathSeparator) {
		return nil, fmt.Errorf("path %q must start with %q", path, PathSeparator)
	}
	parts := strings.Split(path[1:], PathSeparator)
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("path %q: segment %q: %w", path, p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParentPath returns the path of the item's parent, or "" for a root path.
func ParentPath(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i <= 0 {
		return ""
	}
	return path[:i]
}

// Depth returns the number of segments in path; a root item has depth 1.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, PathSeparator)
}

// RebasePath replaces the oldPrefix of path with newPrefix. It is the
// in-memory form of the bulk descendant rewrite performed on move.
func RebasePath(path, oldPrefix, newPrefix string) string {
	if path == oldPrefix {
		return newPrefix
	}
	if !IsDescendantPath(oldPrefix, path) {
		return path
	}
	return newPrefix + path[len(oldPrefix):]
}
