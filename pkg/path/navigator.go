package path

import "strings"

// HasDirPrefix reports whether dir equals ancestor or lies below it, comparing
// whole segments. Both arguments must be normalized. The empty ancestor is the
// root and prefixes everything.
//
// "foo" prefixes "foo/bar" but not "food".
func HasDirPrefix(dir, ancestor string) bool {
	if ancestor == "" {
		return true
	}

	rest, ok := strings.CutPrefix(dir, ancestor)
	if !ok {
		return false
	}

	return rest == "" || strings.HasPrefix(rest, Separator)
}

// IsDescendant reports whether dir lies strictly below ancestor. A directory is
// never its own descendant.
func IsDescendant(ancestor, dir string) bool {
	return dir != ancestor && HasDirPrefix(dir, ancestor)
}

// Rel returns dir relative to ancestor, and false when dir is not at or below
// ancestor.
func Rel(ancestor, dir string) (string, bool) {
	if !HasDirPrefix(dir, ancestor) {
		return "", false
	}

	if ancestor == "" {
		return dir, true
	}

	return strings.TrimPrefix(dir[len(ancestor):], Separator), true
}

// Ancestors lists every proper ancestor of dir from the root down, starting
// with "" for the root.
func Ancestors(dir string) []string {
	if dir == "" {
		return nil
	}

	segments := Split(dir)
	out := make([]string, 0, len(segments))
	out = append(out, "")
	for i := 1; i < len(segments); i++ {
		out = append(out, strings.Join(segments[:i], Separator))
	}

	return out
}
