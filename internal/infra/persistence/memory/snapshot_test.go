package memory

import (
	"testing"

	"workledger/pkg/domain"
)

func TestDecodeSnapshotLegacyFields(t *testing.T) {
	doc := []byte(`{
		"version": 7,
		"works": [{"id":"w1","name":"Casa","status":"PLANNING"}],
		"steps": [{"id":"s1","workId":"w1","name":"Fundações - Escavação","status":"NOT_STARTED","startDate":"2024-01-01","endDate":"2024-01-04"},
		          {"id":"s2","workId":"w1","name":"Livre","status":"NOT_STARTED"}],
		"expenses": [{"id":"e1","workId":"w1","amount":150,"category":"MATERIAL","date":"2024-01-02"}]
	}`)
	snap, err := DecodeSnapshot(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Version != 7 {
		t.Fatalf("expected version 7, got %d", snap.Version)
	}
	if snap.Expenses[0].PaidAmount != 150 || snap.Expenses[0].Quantity != 1 {
		t.Fatalf("expected legacy expense defaults, got %+v", snap.Expenses[0])
	}

	store := NewStore(nil)
	store.ImportState(snap)
	state := store.ExportState()
	if state.Steps[0].Phase != "Fundações" {
		t.Fatalf("expected phase derived from name, got %q", state.Steps[0].Phase)
	}
	if state.Steps[1].Phase != "" {
		t.Fatalf("expected no phase for unprefixed name, got %q", state.Steps[1].Phase)
	}
	if store.Version() != 7 {
		t.Fatalf("expected imported version")
	}
}

func TestSnapshotRoundTripPreservesOrder(t *testing.T) {
	in := Snapshot{Version: 3, Works: []domain.Work{
		{Base: domain.Base{ID: "b"}, Name: "B"},
		{Base: domain.Base{ID: "a"}, Name: "A"},
	}}
	data, err := EncodeSnapshot(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Works) != 2 || out.Works[0].ID != "b" || out.Works[1].ID != "a" {
		t.Fatalf("order not preserved: %+v", out.Works)
	}
	empty, err := DecodeSnapshot(nil)
	if err != nil || empty.Version != 0 {
		t.Fatalf("expected empty snapshot for empty input")
	}
	if _, err := DecodeSnapshot([]byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBucketTargetsCoverBuckets(t *testing.T) {
	var s Snapshot
	targets := s.BucketTargets()
	if len(targets) != len(Buckets) {
		t.Fatalf("expected %d targets, got %d", len(Buckets), len(targets))
	}
	for _, b := range Buckets {
		if _, ok := targets[b]; !ok {
			t.Fatalf("missing target for bucket %s", b)
		}
	}
}

func TestCollectionRemovePreservesOrder(t *testing.T) {
	c := newCollection[int]()
	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3)
	c.put("b", 20)
	if !c.remove("a") || c.remove("zz") {
		t.Fatalf("unexpected remove result")
	}
	got := c.list(nil)
	if len(got) != 2 || got[0] != 20 || got[1] != 3 || c.len() != 2 {
		t.Fatalf("unexpected order %v", got)
	}
	cp := c.clone()
	cp.put("d", 4)
	if c.len() != 2 {
		t.Fatalf("clone must be independent")
	}
}
