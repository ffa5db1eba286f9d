// Package fs implements a blob Store on the local filesystem.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"workledger/internal/blob"
)

var _ blob.Store = (*Store)(nil)

// DefaultRoot is used when no root directory is configured.
const DefaultRoot = "./blobdata"

// Store maps keys to files under root. Writes go through a temp file and a
// rename so readers never observe a partial object.
type Store struct {
	root string
}

// New returns a store rooted at root, creating the directory when needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = DefaultRoot
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

// Driver returns the blob driver identifier.
func (s *Store) Driver() blob.Driver { return blob.DriverFilesystem }

// Root returns the directory holding the objects.
func (s *Store) Root() string { return s.root }

// sanitizeKey forbids empty, absolute and traversing keys.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key %q", key)
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key traversal %q", key)
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put writes or replaces the object at key.
func (s *Store) Put(_ context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return blob.Info{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return blob.Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return blob.Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return blob.Info{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return blob.Info{}, err
	}
	info, err := s.stat(key, path)
	if err != nil {
		return blob.Info{}, err
	}
	info.ContentType = opts.ContentType
	return info, nil
}

func (s *Store) stat(key, path string) (blob.Info, error) {
	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return blob.Info{}, blob.ErrNotFound
	}
	if err != nil {
		return blob.Info{}, err
	}
	return blob.Info{Key: key, Size: st.Size(), LastModified: st.ModTime().UTC()}, nil
}

// Get opens the object at key.
func (s *Store) Get(_ context.Context, key string) (blob.Info, io.ReadCloser, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return blob.Info{}, nil, err
	}
	info, err := s.stat(key, path)
	if err != nil {
		return blob.Info{}, nil, err
	}
	f, err := os.Open(path) // #nosec G304 -- path is sanitised and rooted
	if err != nil {
		return blob.Info{}, nil, err
	}
	return info, f, nil
}

// Delete removes key, reporting whether it existed.
func (s *Store) Delete(_ context.Context, key string) (bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List walks root and returns objects whose key has prefix, ordered by key.
func (s *Store) List(_ context.Context, prefix string) ([]blob.Info, error) {
	var out []blob.Info
	err := filepath.WalkDir(s.root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := s.stat(key, path)
		if err != nil {
			return err
		}
		out = append(out, info)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
