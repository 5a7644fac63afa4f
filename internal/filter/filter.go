package filter

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/colpack/colpack/internal/errors"
)

// ErrBadString is returned when Match is called with the empty string as the
// second argument.
var ErrBadString = errors.New("filter.Match: string is empty")

// Pattern represents a preparsed filter pattern
type Pattern string

// sepStandin replaces the path separator in patterns and paths during
// matching. path.Match never lets a wildcard cross '/'; shell-style ignore
// patterns require exactly that, so both sides are rewritten to a byte that
// cannot occur in file names before matching.
const sepStandin = "\x00"

func prepareStr(str string) (string, error) {
	if str == "" {
		return "", ErrBadString
	}

	// convert file path separator to '/'
	if filepath.Separator != '/' {
		str = strings.ReplaceAll(str, string(filepath.Separator), "/")
	}

	return strings.ReplaceAll(str, "/", sepStandin), nil
}

func preparePattern(pattern string) Pattern {
	// convert file path separator to '/'
	if filepath.Separator != '/' {
		pattern = strings.ReplaceAll(pattern, string(filepath.Separator), "/")
	}
	pattern = path.Clean(pattern)

	return Pattern(strings.ReplaceAll(pattern, "/", sepStandin))
}

func (p Pattern) match(str string) (bool, error) {
	matched, err := path.Match(string(p), str)
	return matched, errors.Wrap(err, "Match")
}

// Match returns true if str matches the pattern. When the pattern is
// malformed, filepath.ErrBadPattern is returned. The empty pattern matches
// everything, when str is the empty string ErrBadString is returned.
//
// Pattern uses the shell syntax of path.Match with one difference: the
// wildcards '*' and '?' also match the path separator, so "playbooks/*.j2"
// matches templates at any depth below playbooks. The whole path must
// match, a pattern without wildcards only matches the literal path. A
// matched directory stands for its entire subtree, enforced by the caller's
// walk never descending into a rejected directory.
func Match(pattern, str string) (matched bool, err error) {
	if pattern == "" {
		return true, nil
	}

	s, err := prepareStr(str)
	if err != nil {
		return false, err
	}

	return preparePattern(pattern).match(s)
}

// ParsePatterns prepares a list of patterns for use with List.
func ParsePatterns(patterns []string) []Pattern {
	patpat := make([]Pattern, 0)
	for _, pat := range patterns {
		if pat == "" {
			continue
		}

		patpat = append(patpat, preparePattern(pat))
	}
	return patpat
}

// List returns true if str matches one of the patterns. Empty patterns are
// ignored.
func List(patterns []Pattern, str string) (matched bool, err error) {
	if len(patterns) == 0 {
		return false, nil
	}

	s, err := prepareStr(str)
	if err != nil {
		return false, err
	}

	for _, pat := range patterns {
		m, err := pat.match(s)
		if err != nil {
			return false, err
		}

		if m {
			return true, nil
		}
	}

	return false, nil
}

// ValidatePatterns reports invalid patterns in one error. Each pattern is
// matched once against a dummy name so that filepath.ErrBadPattern surfaces
// before a walk starts.
func ValidatePatterns(patterns []string) error {
	invalidPatterns := make([]string, 0)

	for _, pat := range patterns {
		if _, err := Match(pat, "x"); err != nil {
			invalidPatterns = append(invalidPatterns, pat)
		}
	}

	if len(invalidPatterns) > 0 {
		return errors.Errorf("invalid pattern(s) provided:\n%s", strings.Join(invalidPatterns, "\n"))
	}

	return nil
}
