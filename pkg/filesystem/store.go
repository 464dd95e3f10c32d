package filesystem

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store performs target file I/O on an afero filesystem.
type Store struct {
	fs afero.Fs
}

// New returns a Store on fsys.
func New(fsys afero.Fs) *Store {
	return &Store{fs: fsys}
}

// Fs returns the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Existing describes a target file found on disk.
type Existing struct {
	Data []byte
	Mode fs.FileMode
}

// ReadExisting returns the content and mode of path. A missing file yields
// nil without error. Directories are rejected.
func (s *Store) ReadExisting(path string) (*Existing, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrInvalid}
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	return &Existing{Data: data, Mode: info.Mode().Perm()}, nil
}

// EnsureDir creates dir and any missing parents.
func (s *Store) EnsureDir(dir string, perm fs.FileMode) error {
	return s.fs.MkdirAll(dir, perm)
}

// maxLinkHops bounds symlink resolution, matching the usual ELOOP limit.
const maxLinkHops = 40

// Resolve follows symlinks at path until it reaches a non-link or a missing
// file and returns that final path. Filesystems without symlink support
// return path unchanged.
func (s *Store) Resolve(path string) (string, error) {
	lstater, ok := s.fs.(afero.Lstater)
	if !ok {
		return path, nil
	}
	reader, ok := s.fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}

	current := path
	for hop := 0; hop < maxLinkHops; hop++ {
		info, lstatCalled, err := lstater.LstatIfPossible(current)
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				return current, nil
			}
			return "", err
		}
		if !lstatCalled || info.Mode()&fs.ModeSymlink == 0 {
			return current, nil
		}
		dest, err := reader.ReadlinkIfPossible(current)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(dest) {
			dest = filepath.Join(filepath.Dir(current), dest)
		}
		current = dest
	}
	return "", &fs.PathError{Op: "resolve", Path: path, Err: errTooManyLinks}
}

var errTooManyLinks = stderrors.New("too many levels of symbolic links")

// WriteAtomic replaces the file at path with data. Symlinks are followed so
// the linked file is updated and the link is kept. The content is written to
// a temp file next to the final file, given perm, and renamed over it, so
// readers see either the old or the new content. The temp file is removed on
// failure.
func (s *Store) WriteAtomic(path string, data []byte, perm fs.FileMode) (err error) {
	path, err = s.Resolve(path)
	if err != nil {
		return err
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = s.fs.Chmod(tmpName, perm); err != nil {
		return err
	}
	return s.fs.Rename(tmpName, path)
}
