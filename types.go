package gitver

import (
	"strconv"
	"strings"

	"github.com/blang/semver"
)

// TagRef is the reference component of a describe output: a version tag
// (a leading "v" followed by a digit), the literal "HEAD", or a raw
// commit hash.
type TagRef string

// IsTag reports whether the reference names a version tag. The decision
// is purely lexical; no repository lookup is involved.
func (r TagRef) IsTag() bool {
	return len(r) >= 2 && r[0] == 'v' && r[1] >= '0' && r[1] <= '9'
}

// BareVersion returns the reference with its leading "v" removed.
func (r TagRef) BareVersion() string {
	return strings.TrimPrefix(string(r), "v")
}

// CommitSuffix is the distance/hash pair describing how far the current
// commit sits from the referenced tag.
type CommitSuffix struct {
	Distance  int
	ShortHash string
}

// Empty reports whether the suffix carries no usable commit information.
// A zero distance and a missing hash are equivalent.
func (s CommitSuffix) Empty() bool {
	return s.Distance <= 0 || s.ShortHash == ""
}

func (s CommitSuffix) String() string {
	return strconv.Itoa(s.Distance) + "-" + s.ShortHash
}

// DirtySuffix marks uncommitted local modifications, normally a
// YYYYMMDD-HHMM timestamp. The empty string means the tree is clean.
type DirtySuffix string

// render prepends the separator when the suffix is present.
func (d DirtySuffix) render(sep string) string {
	if d == "" {
		return ""
	}
	return sep + string(d)
}

// DescribeOutput is the parsed form of a git describe invocation. Values
// are immutable; construct them with Parse.
type DescribeOutput struct {
	Ref    TagRef
	Suffix CommitSuffix
	Dirty  DirtySuffix
}

// IsCleanAfterTag reports whether the checkout sits exactly on a version
// tag with no extra commits and no local modifications.
func (o DescribeOutput) IsCleanAfterTag() bool {
	return o.Ref.IsTag() && o.Suffix.Empty() && !o.IsDirty()
}

// HasNoTags reports whether no version tag is reachable: the reference is
// HEAD or a raw hash.
func (o DescribeOutput) HasNoTags() bool {
	return !o.Ref.IsTag()
}

// IsDirty reports whether the working tree has uncommitted modifications.
func (o DescribeOutput) IsDirty() bool {
	return o.Dirty != ""
}

// IsSnapshot reports whether the checkout is not reproducible from a tag:
// no tag reachable, commits past the tag, or local modifications.
func (o DescribeOutput) IsSnapshot() bool {
	return o.HasNoTags() || !o.Suffix.Empty() || o.IsDirty()
}

// IsVersionStable reports whether the derived version is safe to cache
// artifacts against. Stability only requires a clean tree: a clean commit
// with no tag is still stable, even though it is also a snapshot. The two
// predicates are deliberately not complements.
func (o DescribeOutput) IsVersionStable() bool {
	return !o.IsDirty()
}

// TagSemver parses the bare tag as a semantic version. It returns false
// when the reference is not a tag or the tag is not valid semver.
func (o DescribeOutput) TagSemver() (semver.Version, bool) {
	if !o.Ref.IsTag() {
		return semver.Version{}, false
	}
	v, err := semver.Parse(o.Ref.BareVersion())
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}
