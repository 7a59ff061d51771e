package hts

import (
	"fmt"
	"strings"
)

// IsAbsolute reports whether path starts with "/".
func IsAbsolute(path string) bool {
	return strings.HasPrefix(path, "/")
}

// Concat joins an absolute path and a relative path. The relative part is
// not normalized: callers supply well-formed segments. Passing an absolute
// rel, an empty rel, or a rel containing "/" fails with ErrInvalidPath.
func Concat(abs, rel string) (string, error) {
	if !IsAbsolute(abs) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, abs)
	}
	if IsAbsolute(rel) {
		return "", fmt.Errorf("%w: %q is not relative", ErrInvalidPath, rel)
	}
	if rel == "" || strings.Contains(rel, "/") {
		return "", fmt.Errorf("%w: bad segment %q", ErrInvalidPath, rel)
	}
	if abs == "/" {
		return "/" + rel, nil
	}
	return abs + "/" + rel, nil
}

// Parent returns the parent of an absolute path, dropping the last segment.
// The second return is false for the root path, which has no parent.
func Parent(path string) (string, bool) {
	if path == "/" {
		return "", false
	}
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return "/", true
	}
	return path[:i], true
}

// Base returns the last segment of a path, or "/" for the root.
func Base(path string) string {
	if path == "/" {
		return "/"
	}
	return path[strings.LastIndex(path, "/")+1:]
}

// SplitPath splits a path into its segments. Leading and trailing slashes
// are ignored.
//
// Examples:
//   - "/" -> []string{}
//   - "/foo/bar" -> []string{"foo", "bar"}
func SplitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return []string{}
	}
	return strings.Split(path, "/")
}
