package domain

import (
	"github.com/Masterminds/semver/v3"
)

// Save prefixes accepted by PlanOptions.SavePrefix.
const (
	SavePrefixCaret = "^"
	SavePrefixTilde = "~"
	SavePrefixExact = ""
)

// PlanOptions holds the policy flags that drive update planning.
// AllowMajor defaults to true in the CLI: the planner proposes jumping to the
// absolute latest version even across a major boundary unless the caller
// explicitly disables it.
type PlanOptions struct {
	AllowMajor bool
	SavePrefix string
}

// PlanUpdate decides whether an update from the current specifier to the
// latest published version applies.
//
// The range-compatibility check only succeeds for prefixed specifiers whose
// range the latest version satisfies; an exact specifier is never itself
// range-compatible but is escalated to compatible unconditionally, as is any
// specifier when AllowMajor is set. WasUpdated requires both compatibility
// and an actual version difference.
func PlanUpdate(name, currentSpecifier, latestVersion string, opts PlanOptions) UpdateResult {
	current := StripRangePrefix(currentSpecifier)

	result := UpdateResult{
		PackageName:    name,
		CurrentVersion: current,
		LatestVersion:  latestVersion,
	}

	result.IsSemverCompatible = rangeCompatible(currentSpecifier, latestVersion)

	compatible := result.IsSemverCompatible
	if IsExact(currentSpecifier) || opts.AllowMajor {
		compatible = true
	}

	result.WasUpdated = compatible && latestVersion != current
	return result
}

// FailedUpdate builds the UpdateResult for a dependency whose registry lookup
// failed. WasUpdated stays false and the error is recorded for the summary.
func FailedUpdate(name, currentSpecifier string, err error) UpdateResult {
	return UpdateResult{
		PackageName:    name,
		CurrentVersion: StripRangePrefix(currentSpecifier),
		Error:          err.Error(),
	}
}

// NewSpecifier builds the specifier string written back to the manifest.
// The configured save prefix is applied uniformly, regardless of the prefix
// the original specifier carried.
func NewSpecifier(latestVersion, savePrefix string) string {
	return savePrefix + latestVersion
}

// rangeCompatible reports whether the specifier has a range prefix and the
// latest version satisfies that range. Unparseable input is not compatible.
func rangeCompatible(specifier, latestVersion string) bool {
	if IsExact(specifier) {
		return false
	}

	constraint, err := semver.NewConstraint(specifier)
	if err != nil {
		return false
	}
	latest, err := semver.NewVersion(latestVersion)
	if err != nil {
		return false
	}

	return constraint.Check(latest)
}
