package program

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scratch hands out unique intermediate file paths for one render call and
// removes them on Release.
type Scratch struct {
	dir   string
	files []string
}

// NewScratch creates a scratch allocator rooted at dir. An empty dir uses
// the system temp directory.
func NewScratch(dir string) *Scratch {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Scratch{dir: dir}
}

// Path returns a fresh file path with the given extension
func (s *Scratch) Path(ext string) string {
	path := filepath.Join(s.dir, "titlecard-"+uuid.NewString()+ext)
	s.files = append(s.files, path)
	return path
}

// Files returns the paths handed out so far
func (s *Scratch) Files() []string {
	return append([]string(nil), s.files...)
}

// Release deletes every file handed out. Files that were never written are
// ignored.
func (s *Scratch) Release() error {
	var errs []error
	for _, f := range s.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	s.files = nil
	return errors.Join(errs...)
}
