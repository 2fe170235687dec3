package plugin

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// customSectionVersion is the required custom section declaring the
// plugin's semver version; customSectionMeta and customSectionNodeList
// are the other two recognised cubedaw sections.
const (
	customSectionVersion  = "cubedaw:plugin_version"
	customSectionMeta     = "cubedaw:plugin_meta"
	customSectionNodeList = "cubedaw:node_list"
)

// MaxSupportedVersion is the highest plugin_version this host accepts.
// A plugin declaring a newer major version is rejected outright; minor
// and patch differences (in either direction) are accepted.
var MaxSupportedVersion = semver.MustParse("1.0.0")

func findCustomSection(info *moduleInfo, name string) ([]byte, bool) {
	for _, c := range info.customs {
		if c.name == name {
			return c.data, true
		}
	}
	return nil, false
}

// parseVersion validates the required cubedaw:plugin_version section.
func parseVersion(info *moduleInfo) (*semver.Version, error) {
	raw, ok := findCustomSection(info, customSectionVersion)
	if !ok {
		return nil, fmt.Errorf("%w: missing required section %q", ErrInvalidPlugin, customSectionVersion)
	}
	v, err := semver.NewVersion(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed %s: %v", ErrInvalidPlugin, customSectionVersion, err)
	}
	if v.Major() > MaxSupportedVersion.Major() {
		return nil, fmt.Errorf("%w: plugin version %s has a newer major version than supported (max %s)", ErrInvalidPlugin, v, MaxSupportedVersion)
	}
	return v, nil
}
