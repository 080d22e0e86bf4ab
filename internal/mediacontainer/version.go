package mediacontainer

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a server release. The service reports it as four dot-separated
// segments, e.g. 1.14.1.5488-cc260c476; the fourth becomes build metadata.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
	Build string
}

// ParseVersion converts MAJOR.MINOR.PATCH.BUILD into a semantic version.
// Any other shape is rejected.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return Version{}, &VersionError{Raw: s, Reason: fmt.Sprintf("expected 4 segments, got %d", len(parts))}
	}
	for i, part := range parts {
		if part == "" {
			return Version{}, &VersionError{Raw: s, Reason: fmt.Sprintf("segment %d is empty", i)}
		}
	}

	canonical := fmt.Sprintf("v%s.%s.%s+%s", parts[0], parts[1], parts[2], parts[3])
	if !semver.IsValid(canonical) {
		return Version{}, &VersionError{Raw: s, Reason: "not a semantic version"}
	}

	var nums [3]uint64
	for i := range nums {
		n, err := strconv.ParseUint(parts[i], 10, 64)
		if err != nil {
			return Version{}, &VersionError{Raw: s, Reason: fmt.Sprintf("segment %d: %v", i, err)}
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Build: parts[3]}, nil
}

// MustParseVersion is ParseVersion for constants known to be valid.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	core := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Build == "" {
		return core
	}
	return core + "+" + v.Build
}

// Wire renders the service's four-segment form, which ParseVersion accepts.
func (v Version) Wire() string {
	return fmt.Sprintf("%d.%d.%d.%s", v.Major, v.Minor, v.Patch, v.Build)
}

func (v Version) semver() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders by major, minor, patch. Build metadata is ignored.
func (v Version) Compare(other Version) int {
	return semver.Compare(v.semver(), other.semver())
}

// Less reports whether v has lower precedence than other.
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// AtLeast gates features on a minimum release.
func (v Version) AtLeast(major, minor, patch uint64) bool {
	return v.Compare(Version{Major: major, Minor: minor, Patch: patch}) >= 0
}

func (v *Version) UnmarshalJSON(data []byte) error {
	if isJSONNull(data) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &VersionError{Raw: string(data), Reason: "not a string"}
	}
	parsed, err := ParseVersion(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v *Version) UnmarshalXMLAttr(attr xml.Attr) error {
	parsed, err := ParseVersion(attr.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}
