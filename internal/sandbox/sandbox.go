// Package sandbox confines tool file access to an agent's workspace
// directory. Resolve is the single gate between tool code and the
// filesystem: every file-touching tool must pass its candidate path
// through it, and only code in this package ever handles the absolute
// result directly.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// PathViolationError reports a candidate path that tried to leave the
// sandbox. The offending tool call fails; the process never does.
type PathViolationError struct {
	Path   string
	Reason string
}

func (e *PathViolationError) Error() string {
	return fmt.Sprintf("path violation: %q: %s", e.Path, e.Reason)
}

func violation(path, reason string) error {
	return &PathViolationError{Path: path, Reason: reason}
}

// Resolve validates candidate against the sandbox root and returns the
// canonical absolute path it refers to. Checks are applied in order:
//
//  1. Raw string rejection of any ".." segment, before canonicalization.
//  2. Rejection of absolute paths and paths containing a NUL byte.
//  3. Symlink-resolving canonicalization of root/candidate, followed by
//     a component-wise containment check against the canonical root, so
//     a sibling like "data/financeX" can never pass for "data/finance".
//
// The root itself must exist; the candidate need not (tools may create
// files), in which case the deepest existing ancestor is canonicalized
// and the remaining components are re-joined.
func Resolve(root, candidate string) (string, error) {
	if candidate == "" {
		return "", violation(candidate, "empty path")
	}
	if strings.ContainsRune(candidate, 0) {
		return "", violation(candidate, "contains NUL byte")
	}
	for _, seg := range strings.Split(filepath.ToSlash(candidate), "/") {
		if seg == ".." {
			return "", violation(candidate, "parent directory segment")
		}
	}
	if filepath.IsAbs(candidate) {
		return "", violation(candidate, "absolute path")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving sandbox root %q: %w", root, err)
	}
	canonRoot, err := filepath.EvalSymlinks(rootAbs)
	if err != nil {
		return "", fmt.Errorf("canonicalizing sandbox root %q: %w", root, err)
	}

	canon, err := canonicalize(filepath.Join(canonRoot, candidate))
	if err != nil {
		return "", violation(candidate, err.Error())
	}

	rel, err := filepath.Rel(canonRoot, canon)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", violation(candidate, "escapes sandbox")
	}
	return canon, nil
}

// canonicalize resolves symlinks in path. Missing trailing components
// are tolerated: the deepest existing ancestor is resolved and the
// remainder appended, so paths about to be created still canonicalize.
func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	clean := filepath.Clean(path)
	parent := filepath.Dir(clean)
	if parent == clean {
		// Hit the filesystem root without finding anything.
		return "", err
	}
	resolvedParent, err := canonicalize(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(clean)), nil
}
