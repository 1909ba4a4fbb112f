package path

import "strings"

// Normalize cleans a slash-separated path lexically.
//
// Empty and "." segments are dropped. A ".." segment cancels its predecessor
// unless there is none, or the predecessor is itself an uncancelled "..", in
// which case it is kept. The result never starts or ends with "/", and the
// repository root is the empty string:
//
//	a/b/../e      -> a/e
//	a/../../../b  -> ../../b
//	.             -> ""
//
// The filesystem is never consulted.
func Normalize(p string) string {
	if isNormalized(p) {
		return p
	}

	stack := make([]string, 0, strings.Count(p, Separator)+1)
	for _, seg := range strings.Split(p, Separator) {
		switch Classify(seg) {
		case SegmentTypeEmpty, SegmentTypeCurrent:
			continue
		case SegmentTypeParent:
			if n := len(stack); n > 0 && stack[n-1] != Parent {
				stack = stack[:n-1]
				continue
			}
			stack = append(stack, Parent)
		default:
			stack = append(stack, seg)
		}
	}

	return strings.Join(stack, Separator)
}

// Split returns the non-empty segments of p without normalizing them.
func Split(p string) []string {
	var parts []string
	for _, seg := range strings.Split(p, Separator) {
		if seg != "" {
			parts = append(parts, seg)
		}
	}

	return parts
}

// Join concatenates non-empty elements with "/" and normalizes the result.
func Join(elems ...string) string {
	nonEmpty := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			nonEmpty = append(nonEmpty, e)
		}
	}

	return Normalize(strings.Join(nonEmpty, Separator))
}

// Base returns the last segment of a normalized path, or "" for the root.
func Base(p string) string {
	if i := strings.LastIndex(p, Separator); i >= 0 {
		return p[i+1:]
	}

	return p
}

// isNormalized reports whether p can skip the stack walk: no empty segments,
// no "." or ".." segments anywhere.
func isNormalized(p string) bool {
	if p == "" {
		return true
	}

	if strings.HasPrefix(p, Separator) || strings.HasSuffix(p, Separator) ||
		strings.Contains(p, "//") {
		return false
	}

	for _, seg := range strings.Split(p, Separator) {
		switch Classify(seg) {
		case SegmentTypeCurrent, SegmentTypeParent:
			return false
		}
	}

	return true
}
