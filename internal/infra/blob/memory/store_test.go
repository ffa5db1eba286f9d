package memory_test

import (
	"testing"

	"workledger/internal/blob"
	"workledger/internal/blob/blobtest"
	"workledger/internal/infra/blob/memory"
)

func TestMemoryStoreContract(t *testing.T) {
	s := memory.New()
	if s.Driver() != blob.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	blobtest.Run(t, s)
}
