package git

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/aquasecurity/vuln-list-stats/utils"
)

type Operations interface {
	CloneOrPull(url, repoPath, branch string) (int, error)
	Revision(repoPath string) (string, error)
}

type Config struct {
}

// CloneOrPull keeps a shallow checkout of url at repoPath up to date and
// returns the number of record files that changed.
func (gc Config) CloneOrPull(url, repoPath, branch string) (int, error) {
	exists, err := utils.Exists(filepath.Join(repoPath, ".git"))
	if err != nil {
		return 0, err
	}

	if exists {
		log.Println("git pull")
		files, err := pull(url, repoPath, branch)
		if err != nil {
			return 0, xerrors.Errorf("git pull error: %w", err)
		}
		return countRecords(files), nil
	}

	if err = os.MkdirAll(repoPath, 0700); err != nil {
		return 0, err
	}
	log.Printf("git clone %s", url)
	if err = clone(url, repoPath, branch); err != nil {
		return 0, err
	}

	var files []string
	err = filepath.Walk(repoPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return 0, xerrors.Errorf("walk error: %w", err)
	}
	return countRecords(files), nil
}

// Revision returns the commit the checkout at repoPath points to.
func (gc Config) Revision(repoPath string) (string, error) {
	output, err := utils.Exec("git", append(generateGitArgs(repoPath), "rev-parse", "HEAD"))
	if err != nil {
		return "", xerrors.Errorf("error in git rev-parse: %w", err)
	}
	return strings.TrimSpace(output), nil
}

func clone(url, repoPath, branch string) error {
	cmd := exec.Command("git", cloneArgs(url, repoPath, branch)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return xerrors.Errorf("failed to clone: %w", err)
	}
	return nil
}

func cloneArgs(url, repoPath, branch string) []string {
	args := []string{
		"clone",
		"--depth",
		"1",
		url,
		repoPath,
	}
	if branch != "" {
		args = append(args, "-b", branch)
	}
	return args
}

func pull(url, repoPath, branch string) ([]string, error) {
	commandArgs := generateGitArgs(repoPath)

	remoteCmd := []string{
		"remote",
		"get-url",
		"--push",
		"origin",
	}
	output, err := utils.Exec("git", append(commandArgs, remoteCmd...))
	if err != nil {
		return nil, xerrors.Errorf("error in git remote: %w", err)
	}
	remoteURL := strings.TrimSpace(output)
	if remoteURL != url {
		return nil, xerrors.Errorf("remote url is %s, target is %s", remoteURL, url)
	}

	output, err = utils.Exec("git", append(commandArgs, "rev-parse", "HEAD"))
	if err != nil {
		return nil, xerrors.Errorf("error in git rev-parse: %w", err)
	}
	commitHash := strings.TrimSpace(output)

	if _, err = utils.Exec("git", append(commandArgs, pullArgs(branch)...)); err != nil {
		return nil, xerrors.Errorf("error in git pull: %w", err)
	}

	diffCmd := []string{
		"diff",
		commitHash,
		"HEAD",
		"--name-only",
	}
	output, err = utils.Exec("git", append(commandArgs, diffCmd...))
	if err != nil {
		return nil, xerrors.Errorf("error in git diff: %w", err)
	}
	return splitLines(output), nil
}

func pullArgs(branch string) []string {
	args := []string{
		"pull",
		"--depth",
		"1",
		"origin",
	}
	if branch != "" {
		args = append(args, branch)
	}
	return args
}

func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func countRecords(files []string) int {
	var n int
	for _, f := range files {
		if strings.HasSuffix(f, ".json") {
			n++
		}
	}
	return n
}

func generateGitArgs(repoPath string) []string {
	gitDir := filepath.Join(repoPath, ".git")
	return []string{
		"--git-dir",
		gitDir,
		"--work-tree",
		repoPath,
	}
}
