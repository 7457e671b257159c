package contentserver

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when a requested path escapes the configured
// content root.
//
// The validation follows tower-http's build_and_validate_path: walk
// each path component, reject anything that isn't a plain segment or a
// current-dir marker, and join only the plain segments onto the root.
var ErrUnsafePath = errors.New("contentserver: path escapes content root")

// SafePath resolves subpath relative to root, rejecting any component
// that is absolute, a Windows-style drive prefix, or a parent-directory
// step. Empty segments and "." segments are simply skipped, matching a
// tolerant split on '/'.
func SafePath(root, subpath string) (string, error) {
	if strings.HasPrefix(subpath, "/") || filepath.IsAbs(subpath) {
		return "", ErrUnsafePath
	}
	segments := strings.Split(subpath, "/")

	final := root
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", ErrUnsafePath
		default:
			if strings.ContainsAny(seg, "\x00") || filepath.VolumeName(seg) != "" {
				return "", ErrUnsafePath
			}
			final = filepath.Join(final, seg)
		}
	}

	cleanRoot := filepath.Clean(root)
	cleanFinal := filepath.Clean(final)
	if cleanFinal != cleanRoot && !strings.HasPrefix(cleanFinal, cleanRoot+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return cleanFinal, nil
}
