// Package version provides the ordered version values used to rank
// competing service implementations.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformed = errors.New("version: malformed version")

// Version is a four-component version ordered lexicographically:
// major first, then minor, patch, and build. Missing components are zero.
type Version struct {
	Major int
	Minor int
	Patch int
	Build int
}

// New builds a version from explicit components.
func New(major, minor, patch, build int) Version {
	return Version{Major: major, Minor: minor, Patch: patch, Build: build}
}

// Parse accepts one to four dot-separated numeric components.
func Parse(raw string) (Version, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Version{}, fmt.Errorf("%w: empty string", ErrMalformed)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return Version{}, fmt.Errorf("%w: %q has more than four components", ErrMalformed, raw)
	}
	nums := [4]int{}
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q component %d", ErrMalformed, raw, i+1)
		}
		if n < 0 {
			return Version{}, fmt.Errorf("%w: %q has negative component", ErrMalformed, raw)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Build: nums[3]}, nil
}

// Compare orders a against b: -1 when a is older, 0 when equal, 1 when newer.
func Compare(a, b Version) int {
	pairs := [4][2]int{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Patch, b.Patch},
		{a.Build, b.Build},
	}
	for _, p := range pairs {
		if p[0] < p[1] {
			return -1
		}
		if p[0] > p[1] {
			return 1
		}
	}
	return 0
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool {
	return Compare(v, o) < 0
}

// IsZero reports whether every component is zero.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0 && v.Patch == 0 && v.Build == 0
}

// Validate rejects versions carrying negative components.
func (v Version) Validate() error {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 || v.Build < 0 {
		return fmt.Errorf("%w: negative component in %d.%d.%d.%d", ErrMalformed, v.Major, v.Minor, v.Patch, v.Build)
	}
	return nil
}

// String renders major.minor.patch, appending the build component only
// when it is set.
func (v Version) String() string {
	if v.Build > 0 {
		return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}
