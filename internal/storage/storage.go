// Package storage persists video binaries on the local filesystem. Every
// blob is a single file in the root directory named by a generated unique
// filename; uploads land in a ".part" staging file first and are promoted
// with a rename only after the metadata record is committed.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const stagingSuffix = ".part"

type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Store{root: abs}, nil
}

func (s *Store) Root() string {
	return s.root
}

// StagedBlob is a binary written to the staging location but not yet
// promoted to its final name.
type StagedBlob struct {
	Filename string
	Path     string
	Size     int64

	stagingPath string
}

// Stage streams the payload to a staging file keyed by a generated unique
// filename. The extension of the client-supplied name is kept when it is a
// plain alphanumeric suffix; the name itself never is.
func (s *Store) Stage(reader io.Reader, originalName string) (StagedBlob, error) {
	filename := uuid.NewString() + safeExt(originalName)
	finalPath := filepath.Join(s.root, filename)
	stagingPath := finalPath + stagingSuffix

	writer, err := os.OpenFile(stagingPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return StagedBlob{}, fmt.Errorf("open staging file: %w", err)
	}

	written, err := io.CopyBuffer(writer, reader, make([]byte, 32*1024))
	closeErr := writer.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(stagingPath)
		return StagedBlob{}, fmt.Errorf("write staging file: %w", err)
	}

	return StagedBlob{
		Filename:    filename,
		Path:        finalPath,
		Size:        written,
		stagingPath: stagingPath,
	}, nil
}

// Promote moves a staged blob to its final name. Rename is atomic on the
// same filesystem, so readers never observe a partially written file.
func (s *Store) Promote(blob StagedBlob) error {
	if err := os.Rename(blob.stagingPath, blob.Path); err != nil {
		return fmt.Errorf("promote staged blob %q: %w", blob.Filename, err)
	}
	return nil
}

// Discard removes the staging artifact after a failed commit.
func (s *Store) Discard(blob StagedBlob) error {
	if err := os.Remove(blob.stagingPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("discard staged blob %q: %w", blob.Filename, err)
	}
	return nil
}

func (s *Store) Open(filename string) (*os.File, error) {
	resolved, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}

	return os.Open(resolved)
}

// Size stats the blob at request time rather than trusting a recorded size.
func (s *Store) Size(filename string) (int64, error) {
	resolved, err := s.resolve(filename)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (s *Store) Remove(filename string) error {
	resolved, err := s.resolve(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil {
		return fmt.Errorf("remove blob %q: %w", filename, err)
	}

	return nil
}

// resolve rejects anything that is not a bare filename inside the root.
// Blob names are generated server-side, so any traversal attempt is hostile.
func (s *Store) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) ||
		filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid blob filename %q", filename)
	}

	return filepath.Join(s.root, filename), nil
}

func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}

	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}

	return ext
}
