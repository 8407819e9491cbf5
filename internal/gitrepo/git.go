// Package gitrepo wraps the git command line as the version-control gateway
// used by the monitor: stage, status, commit, push.
package gitrepo

import (
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Runner executes a git command and returns its combined stdout.
// This abstraction allows mocking in tests.
type Runner func(workDir string, args ...string) (string, error)

// defaultRunner runs git as a real subprocess.
func defaultRunner(workDir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = workDir
	out, err := cmd.Output()
	return string(out), err
}

// Repo is an exec-backed handle to a single git working directory.
type Repo struct {
	WorkDir string
	Runner  Runner // if nil, uses the real git subprocess
}

// New returns a Repo for the given working directory.
func New(workDir string) *Repo {
	return &Repo{WorkDir: workDir}
}

func (r *Repo) run(args ...string) (string, error) {
	runner := r.Runner
	if runner == nil {
		runner = defaultRunner
	}
	return runner(r.WorkDir, args...)
}

// Status is the categorized working-tree status after staging.
type Status struct {
	Added     []string
	Modified  []string
	Deleted   []string
	Untracked []string
}

// Pending returns the paths that are candidates for a modification timestamp:
// everything reported except deletions, which have no file to stat.
func (s Status) Pending() []string {
	pending := make([]string, 0, len(s.Added)+len(s.Modified)+len(s.Untracked))
	pending = append(pending, s.Added...)
	pending = append(pending, s.Modified...)
	pending = append(pending, s.Untracked...)
	return pending
}

// IsRepository reports whether the working directory is inside a git
// repository. A git exit code of 128 means "not a repository" rather than a
// gateway failure.
func (r *Repo) IsRepository() (bool, error) {
	_, err := r.run("rev-parse", "--git-dir")
	if err != nil {
		if isExitCode128(err) {
			return false, nil
		}
		return false, &AccessError{Op: "rev-parse", Err: err}
	}
	return true, nil
}

// CurrentBranch returns the short name of the checked-out branch.
func (r *Repo) CurrentBranch() (string, error) {
	out, err := r.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", &AccessError{Op: "rev-parse", Err: err}
	}
	return strings.TrimSpace(out), nil
}

// StageAll stages every working-tree change, including deletions and
// untracked files, so a subsequent Status sees them uniformly.
func (r *Repo) StageAll() error {
	if _, err := r.run("add", "-A"); err != nil {
		return &AccessError{Op: "add", Err: err}
	}
	return nil
}

// ReadStatus parses `git status --porcelain` into categorized path lists.
func (r *Repo) ReadStatus() (Status, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return Status{}, &AccessError{Op: "status", Err: err}
	}
	return parsePorcelain(out), nil
}

// parsePorcelain categorizes porcelain v1 status lines. Renames report the
// destination path as added; the origin path is gone from the working tree
// but git already accounts for it in the rename entry, so it is not listed
// as a separate deletion.
func parsePorcelain(out string) Status {
	var st Status
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		code := line[:2]
		path := line[3:]
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		path = unquotePath(path)

		switch {
		case code == "??":
			st.Untracked = append(st.Untracked, path)
		case code[0] == 'D' || code[1] == 'D':
			st.Deleted = append(st.Deleted, path)
		case code[0] == 'A' || code[0] == 'R' || code[0] == 'C':
			st.Added = append(st.Added, path)
		default:
			st.Modified = append(st.Modified, path)
		}
	}
	return st
}

// unquotePath strips git's C-style quoting from a porcelain path field. Paths
// containing spaces, quotes or non-ASCII bytes are emitted quoted with octal
// escapes (`?? "my file.txt"`); the stat of such a path must use the real
// filename, not the quoted form.
func unquotePath(path string) string {
	if len(path) < 2 || path[0] != '"' {
		return path
	}
	unquoted, err := strconv.Unquote(path)
	if err != nil {
		return path
	}
	return unquoted
}

// Commit records the staged changes with the given author identity and
// timestamp, and returns the new commit hash.
func (r *Repo) Commit(message, authorName, authorEmail string, when time.Time) (string, error) {
	args := []string{
		"-c", "user.name=" + authorName,
		"-c", "user.email=" + authorEmail,
		"commit",
		"-m", message,
		"--date", when.Format(time.RFC3339),
	}
	if _, err := r.run(args...); err != nil {
		return "", &AccessError{Op: "commit", Err: err}
	}

	hash, err := r.run("rev-parse", "HEAD")
	if err != nil {
		return "", &AccessError{Op: "rev-parse", Err: err}
	}
	return strings.TrimSpace(hash), nil
}

// Push publishes the current branch to its configured remote.
func (r *Repo) Push() error {
	if _, err := r.run("push"); err != nil {
		return &AccessError{Op: "push", Err: err}
	}
	return nil
}

// AccessError wraps a failed git operation. It is recoverable: the monitor
// logs it, abandons the cycle, and retries at the next interval.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return "git " + e.Op + " failed: " + e.Err.Error()
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// isExitCode128 reports whether err is an *exec.ExitError with exit code 128.
func isExitCode128(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode() == 128
	}
	return false
}
