package memory

import (
	"fmt"
	"time"

	"workledger/pkg/domain"
)

type transaction struct {
	store   *Store
	state   memoryState
	changes []domain.Change
	now     time.Time
}

// record is satisfied by pointers to ledger entities.
type record[T any] interface {
	*T
	BaseRef() *domain.Base
}

func (tx *transaction) recordChange(change domain.Change) { tx.changes = append(tx.changes, change) }

func (tx *transaction) Snapshot() domain.TransactionView { return newTransactionView(&tx.state) }

func (tx *transaction) Now() time.Time { return tx.now }

func (tx *transaction) Changes() []domain.Change {
	return append([]domain.Change(nil), tx.changes...)
}

func createRecord[T any, P record[T]](tx *transaction, c *collection[T], entity domain.EntityType, v T) (T, error) {
	base := P(&v).BaseRef()
	if base.ID == "" {
		base.ID = tx.store.idFn()
	}
	if c.has(base.ID) {
		var zero T
		return zero, fmt.Errorf("%s %q already exists", entity, base.ID)
	}
	base.CreatedAt = tx.now
	base.UpdatedAt = tx.now
	c.put(base.ID, v)
	tx.recordChange(domain.Change{Entity: entity, Action: domain.ActionCreate, After: v})
	return v, nil
}

func updateRecord[T any, P record[T]](tx *transaction, c *collection[T], entity domain.EntityType, id string, mutator func(*T) error) (T, error) {
	current, ok := c.get(id)
	if !ok {
		var zero T
		return zero, domain.ErrNotFound{Entity: entity, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		var zero T
		return zero, err
	}
	base := P(&current).BaseRef()
	base.ID = id
	base.CreatedAt = P(&before).BaseRef().CreatedAt
	base.UpdatedAt = tx.now
	c.put(id, current)
	tx.recordChange(domain.Change{Entity: entity, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func deleteRecord[T any](tx *transaction, c *collection[T], entity domain.EntityType, id string) error {
	current, ok := c.get(id)
	if !ok {
		return domain.ErrNotFound{Entity: entity, ID: id}
	}
	c.remove(id)
	tx.recordChange(domain.Change{Entity: entity, Action: domain.ActionDelete, Before: current})
	return nil
}

func (tx *transaction) CreateUser(u domain.User) (domain.User, error) {
	return createRecord(tx, &tx.state.users, domain.EntityUser, u)
}

func (tx *transaction) UpdateUser(id string, mutator func(*domain.User) error) (domain.User, error) {
	return updateRecord(tx, &tx.state.users, domain.EntityUser, id, mutator)
}

func (tx *transaction) DeleteUser(id string) error {
	return deleteRecord(tx, &tx.state.users, domain.EntityUser, id)
}

func (tx *transaction) CreateWork(w domain.Work) (domain.Work, error) {
	if w.Status == "" {
		w.Status = domain.WorkStatusPlanning
	}
	return createRecord(tx, &tx.state.works, domain.EntityWork, w)
}

func (tx *transaction) UpdateWork(id string, mutator func(*domain.Work) error) (domain.Work, error) {
	return updateRecord(tx, &tx.state.works, domain.EntityWork, id, mutator)
}

func (tx *transaction) DeleteWork(id string) error {
	return deleteRecord(tx, &tx.state.works, domain.EntityWork, id)
}

func (tx *transaction) CreateStep(s domain.Step) (domain.Step, error) {
	if s.Status == "" {
		s.Status = domain.StepStatusNotStarted
	}
	return createRecord(tx, &tx.state.steps, domain.EntityStep, s)
}

func (tx *transaction) UpdateStep(id string, mutator func(*domain.Step) error) (domain.Step, error) {
	return updateRecord(tx, &tx.state.steps, domain.EntityStep, id, mutator)
}

func (tx *transaction) DeleteStep(id string) error {
	return deleteRecord(tx, &tx.state.steps, domain.EntityStep, id)
}

func (tx *transaction) CreateExpense(e domain.Expense) (domain.Expense, error) {
	return createRecord(tx, &tx.state.expenses, domain.EntityExpense, e)
}

func (tx *transaction) UpdateExpense(id string, mutator func(*domain.Expense) error) (domain.Expense, error) {
	return updateRecord(tx, &tx.state.expenses, domain.EntityExpense, id, mutator)
}

func (tx *transaction) DeleteExpense(id string) error {
	return deleteRecord(tx, &tx.state.expenses, domain.EntityExpense, id)
}

func (tx *transaction) CreateMaterial(m domain.Material) (domain.Material, error) {
	return createRecord(tx, &tx.state.materials, domain.EntityMaterial, m)
}

func (tx *transaction) UpdateMaterial(id string, mutator func(*domain.Material) error) (domain.Material, error) {
	return updateRecord(tx, &tx.state.materials, domain.EntityMaterial, id, mutator)
}

func (tx *transaction) DeleteMaterial(id string) error {
	return deleteRecord(tx, &tx.state.materials, domain.EntityMaterial, id)
}

func (tx *transaction) CreateCollaborator(c domain.Collaborator) (domain.Collaborator, error) {
	return createRecord(tx, &tx.state.collaborators, domain.EntityCollaborator, c)
}

func (tx *transaction) UpdateCollaborator(id string, mutator func(*domain.Collaborator) error) (domain.Collaborator, error) {
	return updateRecord(tx, &tx.state.collaborators, domain.EntityCollaborator, id, mutator)
}

func (tx *transaction) DeleteCollaborator(id string) error {
	return deleteRecord(tx, &tx.state.collaborators, domain.EntityCollaborator, id)
}

func (tx *transaction) CreateSupplier(s domain.Supplier) (domain.Supplier, error) {
	return createRecord(tx, &tx.state.suppliers, domain.EntitySupplier, s)
}

func (tx *transaction) DeleteSupplier(id string) error {
	return deleteRecord(tx, &tx.state.suppliers, domain.EntitySupplier, id)
}

func (tx *transaction) CreatePhoto(p domain.Photo) (domain.Photo, error) {
	return createRecord(tx, &tx.state.photos, domain.EntityPhoto, p)
}

func (tx *transaction) DeletePhoto(id string) error {
	return deleteRecord(tx, &tx.state.photos, domain.EntityPhoto, id)
}

func (tx *transaction) CreateFile(f domain.File) (domain.File, error) {
	return createRecord(tx, &tx.state.files, domain.EntityFile, f)
}

func (tx *transaction) DeleteFile(id string) error {
	return deleteRecord(tx, &tx.state.files, domain.EntityFile, id)
}

func (tx *transaction) CreateNotification(n domain.Notification) (domain.Notification, error) {
	if n.Date.IsZero() {
		n.Date = tx.now
	}
	return createRecord(tx, &tx.state.notifications, domain.EntityNotification, n)
}

func (tx *transaction) UpdateNotification(id string, mutator func(*domain.Notification) error) (domain.Notification, error) {
	return updateRecord(tx, &tx.state.notifications, domain.EntityNotification, id, mutator)
}

func (tx *transaction) DeleteNotification(id string) error {
	return deleteRecord(tx, &tx.state.notifications, domain.EntityNotification, id)
}
