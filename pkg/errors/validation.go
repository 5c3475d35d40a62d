package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxRootName = 128
	maxPathLen  = 1024
)

// rootNamePattern admits letters, digits, dots, dashes and underscores,
// and forbids a leading separator so names never hide as dotfiles.
var rootNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateRootName reports whether name can serve as a root. Root names end up
// as store keys and file names, so traversal sequences are rejected outright.
func ValidateRootName(name string) error {
	switch {
	case name == "":
		return New(ErrCodeInvalidRoot, "root name is empty")
	case len(name) > maxRootName:
		return New(ErrCodeInvalidRoot, "root name exceeds %d characters", maxRootName)
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidRoot, "root name contains control characters")
	case strings.Contains(name, ".."):
		return New(ErrCodeInvalidRoot, "root name %q contains %q", name, "..")
	case !rootNamePattern.MatchString(name):
		return New(ErrCodeInvalidRoot, "root name %q has characters outside [A-Za-z0-9._-]", name)
	}
	return nil
}

// ValidateFieldPath rejects paths that cannot name a port. Quoting and segment
// rules are left to fqn.Parse.
func ValidateFieldPath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "field path is empty")
	case len(path) > maxPathLen:
		return New(ErrCodeInvalidPath, "field path exceeds %d characters", maxPathLen)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "field path contains control characters")
	}
	return nil
}

// ValidateFormat returns INVALID_FORMAT unless format is listed in allowed.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if a == format {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "format %q is not one of %s", format, strings.Join(allowed, ", "))
}
