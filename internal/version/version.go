package version

import "fmt"

// Version identifies a fotokiosk release.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

var AppVersion = Version{Major: 1, Minor: 0, Patch: 0}
