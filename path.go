package tomledit

import (
	"slices"
	"strings"
)

// Path is a sequence of non-empty key segments. Segments are taken
// literally: there is no quoting or escaping of dots.
type Path []string

// ParsePath splits raw on dots.
func ParsePath(raw string) (Path, error) {
	segs := strings.Split(raw, ".")
	if slices.Contains(segs, "") {
		return nil, ErrMalformedPath
	}
	return Path(segs), nil
}

func (p Path) String() string { return strings.Join(p, ".") }

// Parent returns all segments but the last.
func (p Path) Parent() Path { return p[:len(p)-1] }

func (p Path) Last() string { return p[len(p)-1] }
