package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// MaskSuffix marks a file as the overlay mask of a sibling source image
	MaskSuffix = "-mask.png"
	// GenericMask is used when no source specific mask exists
	GenericMask = "mask.png"
)

// FindMask looks next to source for an overlay mask: an exact stem match
// first, then any file matching the stem with the mask suffix, then the
// generic mask name. It only reads the directory.
func FindMask(source string) (string, bool) {
	if source == "" {
		return "", false
	}

	dir := filepath.Dir(source)
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))

	exact := filepath.Join(dir, stem+MaskSuffix)
	if isFile(exact) {
		return exact, true
	}

	matches, err := doublestar.Glob(os.DirFS(dir), escapePattern(stem)+"*"+MaskSuffix)
	if err == nil {
		for _, m := range matches {
			path := filepath.Join(dir, filepath.FromSlash(m))
			if isFile(path) {
				return path, true
			}
		}
	}

	generic := filepath.Join(dir, GenericMask)
	if isFile(generic) {
		return generic, true
	}

	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// escapePattern quotes glob metacharacters so a file stem matches literally
func escapePattern(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', '*', '?', '[', ']', '{', '}':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
