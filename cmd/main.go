package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jaxxstorm/gitver"
	"go.uber.org/zap"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Query       string `arg:"" optional:"" default:"version" enum:"version,sonatype,snapshot,stable,dirty,notags,previous,distance" help:"Value to print (default: version)"`
	Repo        string `short:"r" help:"Repository path (default: current directory)"`
	Separator   string `short:"s" default:"+" help:"Separator between version core and suffixes"`
	JSON        bool   `short:"j" help:"Output the full report as JSON"`
	Verbose     bool   `short:"v" help:"Log git invocations"`
	ShowVersion bool   `help:"Show version information" name:"version"`
}

// report is the JSON shape of one full evaluation.
type report struct {
	Version  string `json:"version"`
	Sonatype string `json:"sonatype"`
	Snapshot bool   `json:"snapshot"`
	Stable   bool   `json:"stable"`
	Dirty    bool   `json:"dirty"`
	NoTags   bool   `json:"noTags"`
	Previous string `json:"previous,omitempty"`
	Distance *int   `json:"distance,omitempty"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("gitver"),
		kong.Description("Derive deterministic version strings from Git history"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		return c.showVersion()
	}

	now := time.Now()

	repoPath := c.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
	}

	// Outside a repository there is nothing to describe; report the
	// fallback state without invoking git at all.
	if _, err := gitver.OpenRepository(repoPath); err != nil {
		return c.emit(fallbackReport(c.Separator, now))
	}

	var logger *zap.Logger
	if c.Verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer func() {
			_ = logger.Sync()
		}()
	}

	eng := gitver.New(gitver.Options{
		Dir:       repoPath,
		Separator: c.Separator,
		Logger:    logger,
	})

	return c.emit(buildReport(eng, c.Separator, now))
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "gitver",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("gitver version %s\n", Version)
	return nil
}

func (c *CLI) emit(rep *report) error {
	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(rep)
	}

	output, err := getQueryOutput(rep, c.Query)
	if err != nil {
		return err
	}
	fmt.Println(output)
	return nil
}

// buildReport evaluates every facade query once, with a single instant so
// dirty and fallback timestamps agree within the evaluation.
func buildReport(eng *gitver.Engine, sep string, now time.Time) *report {
	out, err := eng.Describe(now)
	if err != nil {
		rep := fallbackReport(sep, now)
		if count, err := eng.DistanceToRootCommit(); err == nil {
			rep.Distance = &count
		}
		return rep
	}

	rep := &report{
		Version:  out.Version(sep),
		Sonatype: out.SonatypeVersion(sep),
		Snapshot: out.IsSnapshot(),
		Stable:   out.IsVersionStable(),
		Dirty:    out.IsDirty(),
		NoTags:   out.HasNoTags(),
	}

	if previous, err := eng.PreviousStableTag(); err == nil {
		rep.Previous = previous.Version(sep)
	}
	if count, err := eng.DistanceToRootCommit(); err == nil {
		rep.Distance = &count
	}

	return rep
}

// fallbackReport is the report for an unusable repository state: always a
// snapshot, never stable.
func fallbackReport(sep string, now time.Time) *report {
	version := gitver.FallbackVersion(sep, now)
	return &report{
		Version:  version,
		Sonatype: version + "-SNAPSHOT",
		Snapshot: true,
		Stable:   false,
		Dirty:    true,
		NoTags:   true,
	}
}

func getQueryOutput(rep *report, query string) (string, error) {
	switch query {
	case "version", "":
		return rep.Version, nil
	case "sonatype":
		return rep.Sonatype, nil
	case "snapshot":
		return fmt.Sprintf("%t", rep.Snapshot), nil
	case "stable":
		return fmt.Sprintf("%t", rep.Stable), nil
	case "dirty":
		return fmt.Sprintf("%t", rep.Dirty), nil
	case "notags":
		return fmt.Sprintf("%t", rep.NoTags), nil
	case "previous":
		if rep.Previous == "" {
			return "", fmt.Errorf("no previous stable version")
		}
		return rep.Previous, nil
	case "distance":
		if rep.Distance == nil {
			return "", fmt.Errorf("commit count unavailable")
		}
		return fmt.Sprintf("%d", *rep.Distance), nil
	default:
		return rep.Version, nil
	}
}
