package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"workledger/internal/infra/persistence/sqlite"
	"workledger/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "ledger.db")
	store, err := sqlite.NewStore(ctx, path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	var workID string
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		w, err := tx.CreateWork(domain.Work{Name: "Casa", BudgetPlanned: 1000})
		if err != nil {
			return err
		}
		workID = w.ID
		_, err = tx.CreateStep(domain.Step{WorkID: w.ID, Name: "Fundação - Sapatas"})
		return err
	}); err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("unexpected path %s", store.Path())
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := sqlite.NewStore(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if reopened.Version() != 1 {
		t.Fatalf("expected version 1 after reload, got %d", reopened.Version())
	}
	err = reopened.View(ctx, func(v domain.TransactionView) error {
		w, ok := v.FindWork(workID)
		if !ok || w.Name != "Casa" {
			t.Fatalf("work not reloaded: %+v", w)
		}
		steps := v.ListSteps(workID)
		if len(steps) != 1 || steps[0].Phase != "Fundação" {
			t.Fatalf("unexpected steps %+v", steps)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestStoreWriteFailureDiscardsTransaction(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.NewStore(ctx, filepath.Join(t.TempDir(), "ledger.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.DB().Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateWork(domain.Work{Name: "lost"})
		return err
	})
	if err == nil {
		t.Fatalf("expected write failure")
	}
	if store.Version() != 0 {
		t.Fatalf("version advanced despite failed write")
	}
	_ = store.View(ctx, func(v domain.TransactionView) error {
		if len(v.ListWorks()) != 0 {
			t.Fatalf("failed transaction became visible")
		}
		return nil
	})
	if errors.Is(err, domain.ErrConflict) {
		t.Fatalf("write failure must not be reported as a conflict")
	}
}
