package firmware

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed firmware version string.
type Version struct {
	// Raw is the string reported by the firmware.
	Raw string
	// Base is Raw without the build revision.
	Base string
	// Revision follows the first lowercase 'r', e.g. "5" in "1.1.2r5".
	Revision string
	// Numeric is set when Base is dotted numbers.
	Numeric             bool
	Major, Minor, Patch int
}

// ParseVersion splits the build revision and normalizes dotted numbers.
func ParseVersion(raw string) Version {
	raw = strings.TrimSpace(raw)
	v := Version{Raw: raw}
	v.Base, v.Revision, _ = strings.Cut(raw, "r")
	v.Base = strings.TrimSpace(v.Base)

	parts := strings.Split(v.Base, ".")
	if len(parts) > 3 {
		return v
	}
	var nums [3]int
	for n, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 {
			return v
		}
		nums[n] = num
	}
	v.Numeric = true
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v
}

// Key is the lookup key: major.minor.patch, or Base for labels.
func (v Version) Key() string {
	if v.Numeric {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return v.Base
}

// String implements fmt.Stringer.
func (v Version) String() string {
	return v.Raw
}
