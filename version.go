package gitver

import (
	"strconv"
	"time"
)

// DefaultSeparator joins the version core to its distance and dirty
// suffixes unless the caller configures something else.
const DefaultSeparator = "+"

// snapshotSuffix is appended by SonatypeVersion for snapshot states.
const snapshotSuffix = "-SNAPSHOT"

// Version renders the describe output as a version string.
//
// A checkout sitting on a tag with no extra commits renders as the bare
// tag; past a tag it carries the distance and hash; with no tag at all
// the raw reference is shown as captured, since a bare hash was never
// length-normalized against a tag's distance count.
func (o DescribeOutput) Version(sep string) string {
	switch {
	case o.Ref.IsTag() && o.Suffix.Empty():
		return o.Ref.BareVersion() + o.Dirty.render(sep)
	case o.Ref.IsTag():
		return o.Ref.BareVersion() + sep + o.Suffix.String() + o.Dirty.render(sep)
	default:
		return strconv.Itoa(o.Suffix.Distance) + "-" + string(o.Ref) + o.Dirty.render(sep)
	}
}

// SonatypeVersion renders the version with a -SNAPSHOT qualifier whenever
// the state is a snapshot; otherwise it equals Version.
func (o DescribeOutput) SonatypeVersion(sep string) string {
	v := o.Version(sep)
	if o.IsSnapshot() {
		return v + snapshotSuffix
	}
	return v
}

// Timestamp renders an instant as YYYYMMDD-HHMM in the local timezone.
// The same rendering is used for dirty markers and fallback versions.
func Timestamp(now time.Time) string {
	return now.Format("20060102-1504")
}

// FallbackVersion is the version used when no describe output is
// available: the repository is missing, has no commits, or git failed.
func FallbackVersion(sep string, now time.Time) string {
	return "HEAD" + sep + Timestamp(now)
}
