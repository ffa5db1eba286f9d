package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"workledger/internal/blob"
	"workledger/internal/blob/blobtest"
)

func TestFilesystemStoreContract(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Driver() != blob.DriverFilesystem {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	blobtest.Run(t, s)
	if _, err := os.Stat(filepath.Join(s.Root(), "ledger", "a.json")); err != nil {
		t.Fatalf("object not stored under root: %v", err)
	}
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		key string
		ok  bool
	}{
		{"ledger/a.json", true},
		{"a/./b", true},
		{"", false},
		{"   ", false},
		{"/etc/passwd", false},
		{"../escape", false},
		{"a/../../b", false},
	}
	for _, tc := range cases {
		_, err := sanitizeKey(tc.key)
		if (err == nil) != tc.ok {
			t.Fatalf("sanitizeKey(%q) err=%v, want ok=%v", tc.key, err, tc.ok)
		}
	}
}

func TestPutRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Put(context.Background(), "../x", strings.NewReader("x"), blob.PutOptions{}); err == nil {
		t.Fatalf("expected traversal rejection")
	}
}
