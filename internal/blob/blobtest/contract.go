// Package blobtest holds the behaviour every blob.Store driver must share.
package blobtest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"workledger/internal/blob"
)

// Run exercises put, overwrite, get, list and delete against s.
func Run(t *testing.T, s blob.Store) {
	t.Helper()
	ctx := context.Background()

	if _, _, err := s.Get(ctx, "ledger/missing.json"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	info, err := s.Put(ctx, "ledger/a.json", strings.NewReader(`{"v":1}`), blob.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "ledger/a.json" || info.Size != 7 {
		t.Fatalf("unexpected put info %+v", info)
	}
	if _, err := s.Put(ctx, "ledger/a.json", strings.NewReader(`{"v":22}`), blob.PutOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := blob.ReadAll(ctx, s, "ledger/a.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"v":22}` {
		t.Fatalf("overwrite not visible, got %s", data)
	}

	for _, key := range []string{"ledger/snapshots/2.json", "ledger/snapshots/1.json", "other/x"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "ledger/snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "ledger/snapshots/1.json" || infos[1].Key != "ledger/snapshots/2.json" {
		t.Fatalf("unexpected listing %+v", infos)
	}

	_, rc, err := s.Get(ctx, "other/x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "x" {
		t.Fatalf("unexpected body %q", body)
	}

	ok, err := s.Delete(ctx, "other/x")
	if err != nil || !ok {
		t.Fatalf("delete existing: ok=%v err=%v", ok, err)
	}
	ok, err = s.Delete(ctx, "other/x")
	if err != nil || ok {
		t.Fatalf("delete missing: ok=%v err=%v", ok, err)
	}
}
