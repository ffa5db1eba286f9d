package domain

import (
	"context"
	"time"
)

// Transaction exposes the ledger operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	Now() time.Time
	// Changes returns the mutations recorded so far, in application order.
	Changes() []Change

	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	DeleteUser(id string) error

	CreateWork(Work) (Work, error)
	UpdateWork(id string, mutator func(*Work) error) (Work, error)
	DeleteWork(id string) error

	CreateStep(Step) (Step, error)
	UpdateStep(id string, mutator func(*Step) error) (Step, error)
	DeleteStep(id string) error

	CreateExpense(Expense) (Expense, error)
	UpdateExpense(id string, mutator func(*Expense) error) (Expense, error)
	DeleteExpense(id string) error

	CreateMaterial(Material) (Material, error)
	UpdateMaterial(id string, mutator func(*Material) error) (Material, error)
	DeleteMaterial(id string) error

	CreateCollaborator(Collaborator) (Collaborator, error)
	UpdateCollaborator(id string, mutator func(*Collaborator) error) (Collaborator, error)
	DeleteCollaborator(id string) error

	CreateSupplier(Supplier) (Supplier, error)
	DeleteSupplier(id string) error

	CreatePhoto(Photo) (Photo, error)
	DeletePhoto(id string) error

	CreateFile(File) (File, error)
	DeleteFile(id string) error

	CreateNotification(Notification) (Notification, error)
	UpdateNotification(id string, mutator func(*Notification) error) (Notification, error)
	DeleteNotification(id string) error
}

// TransactionView provides read-only access to snapshot data for rules and readers.
type TransactionView interface {
	RuleView
	ListUsers() []User
	FindUser(id string) (User, bool)
	ListSuppliers(workID string) []Supplier
	ListPhotos(workID string) []Photo
	ListFiles(workID string) []File
	ListNotifications(userID string) []Notification
	FindCollaborator(id string) (Collaborator, bool)
	FindSupplier(id string) (Supplier, bool)
	FindPhoto(id string) (Photo, bool)
	FindFile(id string) (File, bool)
	FindNotification(id string) (Notification, bool)
}

// PersistentStore is the repository capability handed to higher layers. The
// whole collection set is one versioned unit; every committed transaction
// bumps the version.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	Version() uint64
	Flush(ctx context.Context) error
	Close() error
}
