package gitver

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Runner executes an external command and captures its standard output.
// A non-zero exit or spawn failure is an error; standard error is
// discarded. Implementations must be safe for concurrent use.
type Runner interface {
	Run(dir string, name string, args ...string) (string, error)
}

// GitRunner runs commands with os/exec. The zero value is usable; Log
// enables debug logging of each invocation and defaults to a no-op
// logger.
type GitRunner struct {
	Log *zap.Logger
}

func (r GitRunner) Run(dir string, name string, args ...string) (string, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		log.Debug("command failed",
			zap.String("command", name+" "+strings.Join(args, " ")),
			zap.String("dir", dir),
			zap.Error(err))
		return "", fmt.Errorf("running %s: %w", name, err)
	}

	log.Debug("command succeeded",
		zap.String("command", name+" "+strings.Join(args, " ")),
		zap.String("dir", dir),
		zap.String("output", strings.TrimSpace(string(out))))
	return string(out), nil
}

// OpenRepository opens a Git repository at the specified path
func OpenRepository(path string) (*git.Repository, error) {
	return git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
}
