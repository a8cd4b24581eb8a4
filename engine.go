// Package gitver derives deterministic version strings for a source tree
// from its Git history, without manually maintained version files. It
// parses git describe output into a structured value, classifies the
// checkout as stable or snapshot, and resolves the most recent stable
// version visible from the parent of the current commit.
package gitver

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options configures an Engine. The zero value is valid: queries run
// against the process's current directory with the default separator and
// an exec-backed runner.
type Options struct {
	// Dir is the repository working directory. Empty means the
	// process's current directory.
	Dir string

	// Separator joins the version core to the distance and dirty
	// suffixes (default "+").
	Separator string

	// Runner executes git. Defaults to GitRunner.
	Runner Runner

	// Logger enables debug logging on the default runner. Ignored when
	// Runner is set.
	Logger *zap.Logger
}

// Engine answers version queries for a single repository. Configuration
// is fixed at construction; every query re-reads repository state, so an
// Engine is safe for concurrent use as long as its Runner is.
type Engine struct {
	dir    string
	sep    string
	runner Runner
}

// New builds an Engine, applying defaults for unset options.
func New(opts Options) *Engine {
	sep := opts.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	runner := opts.Runner
	if runner == nil {
		runner = GitRunner{Log: opts.Logger}
	}
	return &Engine{dir: opts.Dir, sep: sep, runner: runner}
}

// Describe runs git describe against the current checkout and parses the
// result. The dirty marker is rendered from now, so one evaluation should
// pass the same instant to every query it makes.
//
// When no tag is reachable git reports no meaningful distance, so the
// parsed distance is replaced by the total commit count from HEAD; the
// repository's true depth still orders snapshot versions.
func (e *Engine) Describe(now time.Time) (*DescribeOutput, error) {
	raw, err := e.runner.Run(e.dir, "git",
		"describe", "--long", "--tags", "--abbrev=8", "--match", "v[0-9]*",
		"--always", "--dirty=+"+Timestamp(now))
	if err != nil {
		return nil, fmt.Errorf("describing HEAD: %w", err)
	}

	out, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	if out.HasNoTags() {
		// Keep the parsed distance if the count fails; the describe
		// result is still the best available answer.
		if count, err := e.DistanceToRootCommit(); err == nil {
			out.Suffix.Distance = count
		}
	}

	return &out, nil
}

// Version returns the version string for the current checkout, or the
// fallback version when no describe result is available.
func (e *Engine) Version(now time.Time) string {
	out, err := e.Describe(now)
	if err != nil {
		return FallbackVersion(e.sep, now)
	}
	return out.Version(e.sep)
}

// SonatypeVersion is Version with a -SNAPSHOT qualifier on snapshot
// states. The fallback version is always a snapshot.
func (e *Engine) SonatypeVersion(now time.Time) string {
	out, err := e.Describe(now)
	if err != nil {
		return FallbackVersion(e.sep, now) + snapshotSuffix
	}
	return out.SonatypeVersion(e.sep)
}

// IsSnapshot reports whether the current checkout is a snapshot. An
// unknown state counts as a snapshot.
func (e *Engine) IsSnapshot(now time.Time) bool {
	out, err := e.Describe(now)
	if err != nil {
		return true
	}
	return out.IsSnapshot()
}

// IsVersionStable reports whether the current version is safe to cache
// artifacts against. An unknown state is never stable.
func (e *Engine) IsVersionStable(now time.Time) bool {
	out, err := e.Describe(now)
	if err != nil {
		return false
	}
	return out.IsVersionStable()
}

// IsDirty reports whether the working tree has uncommitted modifications.
// An unknown state counts as dirty.
func (e *Engine) IsDirty(now time.Time) bool {
	out, err := e.Describe(now)
	if err != nil {
		return true
	}
	return out.IsDirty()
}

// HasNoTags reports whether no version tag is reachable from the current
// commit. An unknown state counts as untagged.
func (e *Engine) HasNoTags(now time.Time) bool {
	out, err := e.Describe(now)
	if err != nil {
		return true
	}
	return out.HasNoTags()
}

// DistanceToRootCommit counts the commits reachable from HEAD.
func (e *Engine) DistanceToRootCommit() (int, error) {
	raw, err := e.runner.Run(e.dir, "git", "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, fmt.Errorf("counting commits: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parsing commit count %q: %w", strings.TrimSpace(raw), err)
	}
	return count, nil
}

// PreviousStableTag describes the first parent of the current commit,
// answering what the last release visible from before this commit was,
// independent of the current commit's own tag or dirty status. Merge
// second-parents are ignored so the lineage follows the mainline. The
// root commit has no parent and resolves to an error.
func (e *Engine) PreviousStableTag() (*DescribeOutput, error) {
	raw, err := e.runner.Run(e.dir, "git", "--no-pager", "log", "--pretty=%H", "-n", "1", "HEAD^1")
	if err != nil {
		return nil, fmt.Errorf("resolving parent commit: %w", err)
	}
	parent := strings.TrimSpace(raw)

	raw, err = e.runner.Run(e.dir, "git", "describe", "--tags", "--abbrev=0", "--always", parent)
	if err != nil {
		return nil, fmt.Errorf("describing parent %s: %w", parent, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("describing parent %s: empty output", parent)
	}

	out, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
