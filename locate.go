package externals

import (
	"errors"
	"strings"

	"github.com/brettbedarf/externals/internal/util"
)

// Locate searches for target starting at start and climbing toward the root.
//
// At each level it first checks whether the current path is itself named
// target, then whether it has a child named target. The nearest match wins, so
// locating ".git" from "/a/b" finds "/a/b/.git" before "/a/.git" before "/.git".
// Matches are purely structural: files and directories are treated alike.
//
// Only Name, Child, Exists and Parent are used, so any [Path] works.
// Returns an [ErrNotFound] error once the root has been checked without a match,
// and [ErrInvalidName] for a target that is empty or has "." or ".." segments.
func Locate(start Path, target string) (Path, error) {
	logger := util.GetLogger("Locate")

	name := strings.Trim(target, Separator)
	if !IsValidName(name) {
		return nil, &PathError{Op: "locate", Path: target, Err: ErrInvalidName}
	}

	cur := start
	for depth := 0; ; depth++ {
		logger.Trace().Int("level", depth).Str("target", name).Msg("Checking level")
		if cur.Name() == name {
			return cur, nil
		}
		if candidate := cur.Child(name); candidate.Exists() {
			return candidate, nil
		}

		up, err := cur.Parent()
		if errors.Is(err, ErrNoParent) {
			logger.Debug().Int("levels", depth+1).Str("target", name).Msg("Reached root without a match")
			return nil, &PathError{Op: "locate", Path: name, Err: ErrNotFound}
		}
		if err != nil {
			return nil, err
		}
		cur = up
	}
}
