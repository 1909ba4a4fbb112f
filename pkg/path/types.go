package path

// Separator joins package path segments.
const Separator = "/"

// Special segment values.
const (
	Current   = "."
	Parent    = ".."
	Recursive = "..."
)

// SegmentType classifies one slash-separated path segment.
type SegmentType int

const (
	SegmentTypeEmpty     SegmentType = iota // from leading, trailing or doubled "/"
	SegmentTypeCurrent                      // "."
	SegmentTypeParent                       // ".."
	SegmentTypeRecursive                    // "..."
	SegmentTypeName                         // anything else, including "c.." or ".hidden"
)

// Classify reports the type of a single segment. Only whole-segment dot
// tokens are special; embedded dots are plain names.
func Classify(segment string) SegmentType {
	switch segment {
	case "":
		return SegmentTypeEmpty
	case Current:
		return SegmentTypeCurrent
	case Parent:
		return SegmentTypeParent
	case Recursive:
		return SegmentTypeRecursive
	default:
		return SegmentTypeName
	}
}

func (t SegmentType) String() string {
	switch t {
	case SegmentTypeEmpty:
		return "empty"
	case SegmentTypeCurrent:
		return "current"
	case SegmentTypeParent:
		return "parent"
	case SegmentTypeRecursive:
		return "recursive"
	case SegmentTypeName:
		return "name"
	default:
		return "unknown"
	}
}
