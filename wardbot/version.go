package wardbot

import "fmt"

// Version represents an app version using four sub-versions
type Version struct {
	Major    byte
	Minor    byte
	Revision byte
	Build    byte
}

// String returns the version in a human-readable format, omitting trailing zero values
func (v *Version) String() string {
	if v.Build > 0 {
		return fmt.Sprintf("%v.%v.%v.%v", v.Major, v.Minor, v.Revision, v.Build)
	}
	if v.Revision > 0 {
		return fmt.Sprintf("%v.%v.%v", v.Major, v.Minor, v.Revision)
	}
	return fmt.Sprintf("%v.%v", v.Major, v.Minor)
}

// Integer is the version expressed as a single integer
func (v *Version) Integer() int {
	return int(v.Build) | (int(v.Revision) << 8) | (int(v.Minor) << 16) | (int(v.Major) << 24)
}

// BotVersion stores the current version of wardbot
var BotVersion = Version{0, 2, 1, 0}
