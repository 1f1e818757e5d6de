package depgraph

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Constraint bounds the versions acceptable to a dependent: Min/Max are
// inclusive semver strings, either may be empty to mean unbounded.
// Recommended is the version substituted when a dependency has no version
// already installed that satisfies the narrowed range.
type Constraint struct {
	Min, Max, Recommended string
}

// NarrowConstraints intersects every Constraint declared against the same
// dependency name — e.g. two different tools in the same run both
// depending on "node" — into the tightest [min, max] bound a single
// install can satisfy. Recommended is taken from the first constraint
// that supplies one; spec leaves ties between multiple recommendations
// unspecified, and declaration order is as good a tie-break as any.
func NarrowConstraints(name string, constraints []Constraint) (Constraint, error) {
	if len(constraints) == 0 {
		return Constraint{}, fmt.Errorf("depgraph: no constraints to narrow for %q", name)
	}

	var narrowed Constraint
	var min, max *semver.Version

	for _, c := range constraints {
		if c.Min != "" {
			v, err := semver.NewVersion(c.Min)
			if err != nil {
				return Constraint{}, fmt.Errorf("depgraph: %q has invalid min %q: %w", name, c.Min, err)
			}
			if min == nil || v.GreaterThan(min) {
				min = v
			}
		}
		if c.Max != "" {
			v, err := semver.NewVersion(c.Max)
			if err != nil {
				return Constraint{}, fmt.Errorf("depgraph: %q has invalid max %q: %w", name, c.Max, err)
			}
			if max == nil || v.LessThan(max) {
				max = v
			}
		}
		if narrowed.Recommended == "" {
			narrowed.Recommended = c.Recommended
		}
	}

	if min != nil {
		narrowed.Min = min.String()
	}
	if max != nil {
		narrowed.Max = max.String()
	}
	if min != nil && max != nil && min.GreaterThan(max) {
		return Constraint{}, fmt.Errorf(
			"depgraph: unsatisfiable constraint set for %q: min %s > max %s",
			name, narrowed.Min, narrowed.Max,
		)
	}

	return narrowed, nil
}

// Satisfies reports whether version falls within c's [Min, Max] bound.
// An unparsable version never satisfies.
func (c Constraint) Satisfies(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	if c.Min != "" {
		min, err := semver.NewVersion(c.Min)
		if err == nil && v.LessThan(min) {
			return false
		}
	}
	if c.Max != "" {
		max, err := semver.NewVersion(c.Max)
		if err == nil && v.GreaterThan(max) {
			return false
		}
	}
	return true
}

// SelectVersion picks the version to install for a dependency narrowed to
// c: an already-installed version satisfying c is preferred (no extra
// download), falling back to c.Recommended if it itself satisfies c, and
// finally the newest of available that satisfies c. Returns an error if
// nothing qualifies.
func SelectVersion(name string, c Constraint, installed, available []string) (string, error) {
	for _, v := range installed {
		if c.Satisfies(v) {
			return v, nil
		}
	}

	if c.Recommended != "" && c.Satisfies(c.Recommended) {
		return c.Recommended, nil
	}

	var best *semver.Version
	var bestStr string
	for _, v := range available {
		sv, err := semver.NewVersion(v)
		if err != nil || !c.Satisfies(v) {
			continue
		}
		if best == nil || sv.GreaterThan(best) {
			best = sv
			bestStr = v
		}
	}
	if best != nil {
		return bestStr, nil
	}

	return "", fmt.Errorf("depgraph: no version of %q satisfies constraint [%s, %s]", name, c.Min, c.Max)
}
