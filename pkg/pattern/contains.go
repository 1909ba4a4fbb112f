package pattern

import "github.com/glesirok/targetpattern/pkg/path"

// Relation is the outcome of comparing the directory trees of two patterns.
type Relation int

const (
	// NotApplicable means at least one side is not a TargetsBelowDirectory
	// pattern, so there is no directory tree to compare.
	NotApplicable Relation = iota
	// Contained means the inner tree lies strictly inside the outer one.
	Contained
	// NotContained covers different repositories, equal directories, siblings
	// and the inner tree enclosing the outer one.
	NotContained
)

func (r Relation) String() string {
	switch r {
	case NotApplicable:
		return "not-applicable"
	case Contained:
		return "contained"
	case NotContained:
		return "not-contained"
	default:
		return "unknown"
	}
}

// MarshalText renders the relation name for JSON and YAML output.
func (r Relation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Relate compares the directory trees of two TargetsBelowDirectory patterns.
//
// Containment is strict and segment-aware: //foo/... contains //foo/bar/...
// but neither itself nor //food/.... The root pattern //... contains every
// other recursive pattern of the same repository.
func Relate(outer, inner Pattern) Relation {
	if outer.Type != TargetsBelowDirectory || inner.Type != TargetsBelowDirectory {
		return NotApplicable
	}

	if outer.Repository != inner.Repository {
		return NotContained
	}

	if path.IsDescendant(outer.Directory, inner.Directory) {
		return Contained
	}

	return NotContained
}

// DirectoryContains reports whether the directory tree matched by outer
// strictly contains the one matched by inner. It is false whenever either
// pattern is not TargetsBelowDirectory.
func DirectoryContains(outer, inner Pattern) bool {
	return Relate(outer, inner) == Contained
}

// ContainsDirectory reports whether p's directory tree strictly contains
// other's.
func (p Pattern) ContainsDirectory(other Pattern) bool {
	return DirectoryContains(p, other)
}
