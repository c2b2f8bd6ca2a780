// Package firmware provides firmware version parsing, total ordering, and
// release-train helpers for the depth camera family.
package firmware

import (
	"fmt"
	"strconv"
	"strings"
)

// experimentalBuildFloor is the first build number of the experimental
// firmware train. Production builds stay below it.
const experimentalBuildFloor = 90

// Version represents a parsed "major.minor.patch.build" firmware version.
// Versions are immutable once parsed and ordered lexicographically by
// component.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
	Build uint16
}

// Parse parses a "major.minor.patch.build" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, fmt.Errorf("invalid firmware version %q: expected major.minor.patch.build", s)
	}

	var c [4]uint16
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil || part == "" {
			return Version{}, fmt.Errorf("invalid firmware version %q: bad component %d", s, i)
		}
		c[i] = uint16(n)
	}

	return Version{Major: c[0], Minor: c[1], Patch: c[2], Build: c[3]}, nil
}

// MustParse parses a version string and panics on failure. Intended for
// compile-time-known threshold constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor.patch.build".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// IsZero reports whether the version is the zero value, i.e. was never
// parsed from a device.
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0, or 1 when v is ordered before, equal to, or after
// other. Components are compared lexicographically.
func (v Version) Compare(other Version) int {
	a := [4]uint16{v.Major, v.Minor, v.Patch, v.Build}
	b := [4]uint16{other.Major, other.Minor, other.Patch, other.Build}
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is greater than or equal to threshold.
func (v Version) AtLeast(threshold Version) bool {
	return v.Compare(threshold) >= 0
}

// Experimental reports whether the version belongs to the experimental
// firmware train rather than a production release.
func (v Version) Experimental() bool {
	return v.Build >= experimentalBuildFloor
}
