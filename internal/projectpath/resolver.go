// Package projectpath resolves a working directory (and an optional
// explicit override) to the project's log directory under
// {home}/.claude/projects/{escaped-path}/.
package projectpath

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// NotFoundError is returned when no resolution strategy succeeds. It lists
// every candidate directory that was tried so the caller can print a useful
// diagnostic.
type NotFoundError struct {
	SearchedPaths []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project directory not found; searched: %s", strings.Join(e.SearchedPaths, ", "))
}

// NoHomeDirError is returned when the user's home directory cannot be
// determined.
type NoHomeDirError struct{}

func (e *NoHomeDirError) Error() string {
	return "could not determine home directory"
}

// EscapePath converts a filesystem path into the base-directory name Claude
// Code uses under ~/.claude/projects/. Trailing slashes are trimmed first;
// each '/', '.', ' ', and '~' is then replaced with '-'. The bare root "/"
// becomes "-".
func EscapePath(path string) string {
	trimmed := strings.TrimRight(path, "/")
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch r {
		case '/', '.', ' ', '~':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	escaped := b.String()
	if escaped == "" {
		return "-"
	}
	return escaped
}

// ClaudeProjectsBase returns {home}/.claude/projects.
func ClaudeProjectsBase() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", &NoHomeDirError{}
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// findProjectDir checks whether base/escaped exists as a directory.
func findProjectDir(base, escaped string) (string, bool) {
	candidate := filepath.Join(base, escaped)
	info, err := os.Stat(candidate)
	if err != nil || !info.IsDir() {
		return candidate, false
	}
	return candidate, true
}

// gitRoot runs `git rev-parse --show-toplevel` in cwd. Any failure (not a
// git repo, git missing, empty output) yields "", false — never an error,
// since this is only ever a fallback strategy.
func gitRoot(cwd string) (string, bool) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	cmd.Dir = cwd
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", false
	}
	return root, true
}

// GitRootFunc allows tests to stub git invocation.
type GitRootFunc func(cwd string) (string, bool)

// DetectProjectPathWithBase runs the 5-strategy resolver against an
// explicit base directory (normally ClaudeProjectsBase()). First success
// wins; strategy 1 (explicit override) never falls through to later
// strategies, whether it succeeds or fails.
func DetectProjectPathWithBase(base, cwd string, explicitProject string, gitRootFn GitRootFunc) (string, error) {
	info, err := os.Stat(base)
	if err != nil || !info.IsDir() {
		return "", &NotFoundError{SearchedPaths: []string{base}}
	}

	var searched []string

	// Strategy 1: explicit override.
	if explicitProject != "" {
		canonical, err := filepath.Abs(explicitProject)
		if err == nil {
			if resolved, err2 := filepath.EvalSymlinks(canonical); err2 == nil {
				canonical = resolved
			}
		} else {
			canonical = explicitProject
		}
		escaped := EscapePath(canonical)
		candidate, ok := findProjectDir(base, escaped)
		if ok {
			return candidate, nil
		}
		return "", &NotFoundError{SearchedPaths: []string{candidate}}
	}

	canonicalCwd := cwd
	if abs, err := filepath.Abs(cwd); err == nil {
		canonicalCwd = abs
	}
	if resolved, err := filepath.EvalSymlinks(canonicalCwd); err == nil {
		canonicalCwd = resolved
	}

	// Strategy 2: exact CWD match.
	escapedCwd := EscapePath(canonicalCwd)
	if candidate, ok := findProjectDir(base, escapedCwd); ok {
		return candidate, nil
	} else {
		searched = append(searched, candidate)
	}

	// Strategy 3: parent-walk, most specific (deepest) match wins.
	var bestMatch string
	bestDepth := -1
	dir := canonicalCwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
		escaped := EscapePath(dir)
		candidate, ok := findProjectDir(base, escaped)
		if ok {
			depth := len(strings.Split(strings.Trim(dir, string(filepath.Separator)), string(filepath.Separator)))
			if depth > bestDepth {
				bestDepth = depth
				bestMatch = candidate
			}
		} else {
			searched = append(searched, candidate)
		}
	}
	if bestMatch != "" {
		return bestMatch, nil
	}

	// Strategy 4: git root fallback.
	if gitRootFn == nil {
		gitRootFn = gitRoot
	}
	if root, ok := gitRootFn(cwd); ok {
		canonicalRoot := root
		if resolved, err := filepath.EvalSymlinks(root); err == nil {
			canonicalRoot = resolved
		}
		escaped := EscapePath(canonicalRoot)
		if candidate, ok := findProjectDir(base, escaped); ok {
			return candidate, nil
		} else {
			searched = append(searched, candidate)
		}
	}

	// Strategy 5: fail, reporting every candidate tried.
	return "", &NotFoundError{SearchedPaths: searched}
}

// DetectProjectPath is the public entry point: resolves against the real
// ~/.claude/projects base directory.
func DetectProjectPath(cwd string, explicitProject string) (string, error) {
	base, err := ClaudeProjectsBase()
	if err != nil {
		return "", err
	}
	return DetectProjectPathWithBase(base, cwd, explicitProject, nil)
}
