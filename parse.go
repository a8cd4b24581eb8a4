package gitver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sub-patterns of the describe grammar. They are composed into three
// anchored alternatives, tried in order: the tag form, the bare-hash form
// (no tags, at least one commit), and the bare-HEAD form (no commits at
// all, necessarily dirty). Anchoring plus this order keeps the bare-hash
// pattern from swallowing inputs that belong to the tag form.
const (
	tagPat      = `(v[0-9][^+]*)`
	distancePat = `\+([0-9]+)`
	shaPat      = `([0-9a-f]{8})`
	dirtyPat    = `\+([0-9]{8}-[0-9]{4})`
)

var (
	fromTag  = regexp.MustCompile(`^` + tagPat + `(?:` + distancePat + `-` + shaPat + `)?(?:` + dirtyPat + `)?$`)
	fromSha  = regexp.MustCompile(`^` + shaPat + `(?:` + dirtyPat + `)?$`)
	fromHead = regexp.MustCompile(`^HEAD` + dirtyPat + `$`)

	// git renders the distance inline as "-<N>-g<hash>"; the grammar
	// expects "+<N>-<hash>".
	gitSuffix = regexp.MustCompile(`-([0-9]+)-g([0-9a-f]{8})`)
)

// ParseError reports describe output that matches none of the recognized
// forms. It is distinct from a process failure: the command ran, but its
// output is not something this grammar understands.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized describe output %q", e.Raw)
}

// Normalize rewrites git's native "-<N>-g<hash>" distance notation into
// the "+<N>-<hash>" delimiter the grammar uses.
func Normalize(raw string) string {
	return gitSuffix.ReplaceAllString(raw, "+$1-$2")
}

// Parse normalizes raw describe output and matches it against the
// grammar. A mismatch returns a *ParseError.
func Parse(raw string) (DescribeOutput, error) {
	out := Normalize(strings.TrimSpace(raw))

	if m := fromTag.FindStringSubmatch(out); m != nil {
		result := DescribeOutput{
			Ref:   TagRef(m[1]),
			Dirty: DirtySuffix(m[4]),
		}
		// Distance and hash are set together or not at all.
		if m[3] != "" {
			distance, err := strconv.Atoi(m[2])
			if err != nil {
				return DescribeOutput{}, fmt.Errorf("parsing distance %q: %w", m[2], err)
			}
			result.Suffix = CommitSuffix{Distance: distance, ShortHash: m[3]}
		}
		return result, nil
	}

	if m := fromSha.FindStringSubmatch(out); m != nil {
		return DescribeOutput{
			Ref:    TagRef(m[1]),
			Suffix: CommitSuffix{Distance: 0, ShortHash: m[1]},
			Dirty:  DirtySuffix(m[2]),
		}, nil
	}

	if m := fromHead.FindStringSubmatch(out); m != nil {
		return DescribeOutput{
			Ref:   TagRef("HEAD"),
			Dirty: DirtySuffix(m[1]),
		}, nil
	}

	return DescribeOutput{}, &ParseError{Raw: raw}
}
