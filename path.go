package externals

import (
	"iter"
	"slices"
	"strings"
)

// Separator delimits segments in multi-segment names and in [Path.String]
const Separator = "/"

// SplitSegments breaks s into its non-empty segments, ignoring leading,
// trailing and repeated separators.
//
//	SplitSegments("/a/b/") // ["a", "b"]
//	SplitSegments("/")     // []
func SplitSegments(s string) []string {
	parts := strings.Split(strings.Trim(s, Separator), Separator)
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// AppendSegments returns base extended by the segments of s, resolving "." and
// ".." lexically the way path.Clean does. ".." never climbs above the root.
// base is not modified.
//
//	AppendSegments([]string{"a"}, "b/../c") // ["a", "c"]
//	AppendSegments(nil, "../a")             // ["a"]
func AppendSegments(base []string, s string) []string {
	out := slices.Clone(base)
	for _, seg := range SplitSegments(s) {
		switch seg {
		case ".":
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return out
}

// IsValidName reports whether name has at least one segment and none of them
// is "." or "..", i.e. it can only address something beneath where it is applied
func IsValidName(name string) bool {
	segments := SplitSegments(name)
	if len(segments) == 0 {
		return false
	}
	return !slices.ContainsFunc(segments, func(seg string) bool {
		return seg == "." || seg == ".."
	})
}

// JoinSegments is the inverse of [SplitSegments], producing an absolute path
func JoinSegments(segments []string) string {
	return Separator + strings.Join(segments, Separator)
}

// Equal reports whether a and b address the same path
func Equal(a, b Path) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// Collect consumes one pass of p.Children()
func Collect(p Path) []Path {
	return slices.Collect(p.Children())
}

// Names returns the sorted names of p's children
func Names(p Path) []string {
	return slices.Sorted(mapSeq(p.Children(), Path.Name))
}

func mapSeq[T, U any](seq iter.Seq[T], fn func(T) U) iter.Seq[U] {
	return func(yield func(U) bool) {
		for v := range seq {
			if !yield(fn(v)) {
				return
			}
		}
	}
}
