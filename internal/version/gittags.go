// Package version discovers the version of a generated package from the tags
// of a git repository.
package version

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"
)

// DefaultCommand lists the tags of the repository in the working directory.
const DefaultCommand = "git tag -l"

type runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// GitTags runs a tag listing command in RepoPath and picks a version from its
// output. The zero value lists tags of the current directory.
type GitTags struct {
	RepoPath string
	// Command is split on whitespace and run without a shell.
	Command string
	Logger  logrus.FieldLogger

	run runner
}

// Resolve returns the highest semantic version among the listed tags, or the
// last listed tag when none parses as one. It returns "" without error when
// the repository has no tags.
func (g *GitTags) Resolve(ctx context.Context) (string, error) {
	command := strings.TrimSpace(g.Command)
	if command == "" {
		command = DefaultCommand
	}
	fields := strings.Fields(command)
	run := g.run
	if run == nil {
		run = execRun
	}
	out, err := run(ctx, g.RepoPath, fields[0], fields[1:]...)
	if err != nil {
		return "", fmt.Errorf("list tags with %q: %w", command, err)
	}
	tags := parseTags(out)
	v := Pick(tags)
	if g.Logger != nil {
		g.Logger.WithFields(logrus.Fields{"tags": len(tags), "version": v}).Debug("resolved package version from tags")
	}
	return v, nil
}

// Pick chooses the highest semantic version in tags. Tags may omit the
// leading "v". Without any semantic version the last tag wins.
func Pick(tags []string) string {
	best, bestCanon := "", ""
	for _, tag := range tags {
		canon := canonical(tag)
		if canon == "" {
			continue
		}
		if bestCanon == "" || semver.Compare(canon, bestCanon) > 0 {
			best, bestCanon = tag, canon
		}
	}
	if best != "" {
		return best
	}
	if len(tags) == 0 {
		return ""
	}
	return tags[len(tags)-1]
}

func canonical(tag string) string {
	if !strings.HasPrefix(tag, "v") {
		tag = "v" + tag
	}
	if !semver.IsValid(tag) {
		return ""
	}
	return tag
}

func parseTags(out []byte) []string {
	var tags []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	return tags
}

func execRun(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return nil, err
	}
	return out, nil
}
