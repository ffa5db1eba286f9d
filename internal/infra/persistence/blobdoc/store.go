// Package blobdoc persists the ledger document as JSON objects in a blob
// store: the current document plus one immutable copy per committed version.
package blobdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"workledger/internal/blob"
	"workledger/internal/infra/persistence/memory"
	"workledger/pkg/domain"
)

var _ domain.PersistentStore = (*Store)(nil)

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "workledger"

const contentType = "application/json"

// Store runs transactions in memory and writes each committed document to
// the blob store before it becomes visible.
type Store struct {
	*memory.Store
	blobs  blob.Store
	prefix string
}

// NewStore loads the current document from blobs under prefix.
func NewStore(ctx context.Context, blobs blob.Store, prefix string, engine *domain.RulesEngine, opts ...memory.Option) (*Store, error) {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	s := &Store{blobs: blobs, prefix: prefix}
	snapshot, err := s.read(ctx, s.currentKey())
	if err != nil && !errors.Is(err, blob.ErrNotFound) {
		return nil, err
	}
	s.Store = memory.NewStore(engine, append(opts, memory.WithCommitHook(s.write))...)
	s.Store.ImportState(snapshot)
	return s, nil
}

// Reload replaces the in-memory document with the current stored one.
func (s *Store) Reload(ctx context.Context) error {
	snapshot, err := s.read(ctx, s.currentKey())
	if err != nil && !errors.Is(err, blob.ErrNotFound) {
		return err
	}
	s.Store.ImportState(snapshot)
	return nil
}

// RunInTransaction runs fn against the in-memory document and reloads the
// stored document when the commit lost to another writer.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) (domain.Result, error) {
	res, err := s.Store.RunInTransaction(ctx, fn)
	if errors.Is(err, domain.ErrConflict) {
		if rerr := s.Reload(ctx); rerr != nil {
			return res, errors.Join(err, rerr)
		}
	}
	return res, err
}

func (s *Store) currentKey() string { return path.Join(s.prefix, "ledger.json") }

func (s *Store) versionKey(v uint64) string {
	return path.Join(s.prefix, "snapshots", fmt.Sprintf("%020d.json", v))
}

func (s *Store) read(ctx context.Context, key string) (memory.Snapshot, error) {
	data, err := blob.ReadAll(ctx, s.blobs, key)
	if err != nil {
		return memory.Snapshot{}, err
	}
	return memory.DecodeSnapshot(data)
}

// write refuses to overwrite a document whose version moved past base, then
// stores the version copy and replaces the current document.
func (s *Store) write(ctx context.Context, base uint64, snapshot memory.Snapshot) error {
	current, err := s.read(ctx, s.currentKey())
	switch {
	case errors.Is(err, blob.ErrNotFound):
	case err != nil:
		return err
	case current.Version != base:
		return fmt.Errorf("stored version %d, writer based on %d: %w", current.Version, base, domain.ErrConflict)
	}
	data, err := memory.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	opts := blob.PutOptions{ContentType: contentType}
	if snapshot.Version != base {
		if _, err := s.blobs.Put(ctx, s.versionKey(snapshot.Version), bytes.NewReader(data), opts); err != nil {
			return fmt.Errorf("store version %d: %w", snapshot.Version, err)
		}
	}
	if _, err := s.blobs.Put(ctx, s.currentKey(), bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("store ledger document: %w", err)
	}
	return nil
}

// Versions lists the committed versions kept in the blob store, ascending.
func (s *Store) Versions(ctx context.Context) ([]uint64, error) {
	infos, err := s.blobs.List(ctx, path.Join(s.prefix, "snapshots")+"/")
	if err != nil {
		return nil, err
	}
	var out []uint64
	for _, info := range infos {
		name := strings.TrimSuffix(path.Base(info.Key), ".json")
		v, err := strconv.ParseUint(name, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// LoadVersion returns the document as committed at version v.
func (s *Store) LoadVersion(ctx context.Context, v uint64) (memory.Snapshot, error) {
	return s.read(ctx, s.versionKey(v))
}
