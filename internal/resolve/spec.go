package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Candidate is the subset of a runtime's published version information
// needed to match it against a version spec. It mirrors runtime.VersionInfo
// without importing that package, since internal/runtime also needs to
// depend on internal/resolve-shaped version sources and a direct import
// cycle would otherwise result.
type Candidate struct {
	Version    string
	Prerelease bool
	LTS        bool
	Channel    string
}

// parsedCandidate pairs a Candidate with its parsed semver.Version so the
// matching and tie-break logic below never has to reparse.
type parsedCandidate struct {
	c  Candidate
	sv *semver.Version
}

// MatchSpec picks the candidate satisfying spec from candidates, applying
// the exact/prefix/caret/tilde/latest/lts/channel rules and the
// non-prerelease-first, newer-first, LTS-preferred tie-break. It returns an
// error listing up to 5 near-miss candidates when nothing matches.
func MatchSpec(candidates []Candidate, spec string) (Candidate, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Candidate{}, fmt.Errorf("resolve: empty version spec")
	}
	if len(candidates) == 0 {
		return Candidate{}, fmt.Errorf("resolve: no candidates to match against")
	}

	parsedList := make([]parsedCandidate, 0, len(candidates))
	for _, c := range candidates {
		sv, err := semver.NewVersion(c.Version)
		if err != nil {
			continue // skip candidates whose version string isn't semver-parseable
		}
		parsedList = append(parsedList, parsedCandidate{c: c, sv: sv})
	}
	if len(parsedList) == 0 {
		return Candidate{}, fmt.Errorf("resolve: no semver-parseable candidates for spec %q", spec)
	}

	// Newer-first, non-prerelease-first ordering used by every selection
	// path below; it doubles as the tie-break rule from the spec.
	sort.SliceStable(parsedList, func(i, j int) bool {
		pi, pj := parsedList[i].sv.Prerelease() != "", parsedList[j].sv.Prerelease() != ""
		if pi != pj {
			return !pi // non-prerelease sorts first
		}
		return parsedList[i].sv.GreaterThan(parsedList[j].sv)
	})

	switch {
	case spec == "latest":
		for _, p := range parsedList {
			if !p.c.Prerelease {
				return p.c, nil
			}
		}
		return Candidate{}, noMatchErr(spec, parsedList)

	case spec == "lts":
		for _, p := range parsedList {
			if p.c.LTS {
				return p.c, nil
			}
		}
		return Candidate{}, noMatchErr(spec, parsedList)

	case spec == "stable" || spec == "beta" || spec == "nightly":
		for _, p := range parsedList {
			if p.c.Channel == spec {
				return p.c, nil
			}
		}
		return Candidate{}, noMatchErr(spec, parsedList)

	case strings.HasPrefix(spec, "^"), strings.HasPrefix(spec, "~"):
		constraint, err := semver.NewConstraint(spec)
		if err != nil {
			return Candidate{}, fmt.Errorf("resolve: invalid version spec %q: %w", spec, err)
		}
		for _, p := range parsedList {
			if constraint.Check(p.sv) {
				return p.c, nil
			}
		}
		return Candidate{}, noMatchErr(spec, parsedList)

	default:
		// Exact version match first, then fall back to a bare
		// major or major.minor prefix (e.g. "22", "22.4").
		if sv, err := semver.NewVersion(spec); err == nil && strings.Count(spec, ".") >= 2 {
			for _, p := range parsedList {
				if p.sv.Equal(sv) {
					return p.c, nil
				}
			}
		}
		for _, p := range parsedList {
			if isPrefixMatch(p.sv, spec) {
				return p.c, nil
			}
		}
		return Candidate{}, noMatchErr(spec, parsedList)
	}
}

// isPrefixMatch reports whether v's major (and, if spec specifies one,
// minor) component matches spec, e.g. spec "22" matches 22.4.0 and spec
// "22.4" matches 22.4.1 but not 22.5.0.
func isPrefixMatch(v *semver.Version, spec string) bool {
	parts := strings.SplitN(spec, ".", 3)
	if len(parts) > 2 {
		return false
	}
	for i, part := range parts {
		var got uint64
		switch i {
		case 0:
			got = v.Major()
		case 1:
			got = v.Minor()
		}
		if fmt.Sprintf("%d", got) != part {
			return false
		}
	}
	return true
}

func noMatchErr(spec string, parsedList []parsedCandidate) error {
	n := len(parsedList)
	if n > 5 {
		n = 5
	}
	near := make([]string, 0, n)
	for _, p := range parsedList[:n] {
		near = append(near, p.c.Version)
	}
	return fmt.Errorf("resolve: no version matches spec %q (nearest: %s)", spec, strings.Join(near, ", "))
}
