package memory

import "workledger/pkg/domain"

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) transactionView {
	return transactionView{state: state}
}

func (v transactionView) ListUsers() []domain.User { return v.state.users.list(nil) }

func (v transactionView) ListWorks() []domain.Work { return v.state.works.list(nil) }

func (v transactionView) ListSteps(workID string) []domain.Step {
	return v.state.steps.list(func(s domain.Step) bool { return s.WorkID == workID })
}

func (v transactionView) ListExpenses(workID string) []domain.Expense {
	return v.state.expenses.list(func(e domain.Expense) bool { return e.WorkID == workID })
}

func (v transactionView) ListMaterials(workID string) []domain.Material {
	return v.state.materials.list(func(m domain.Material) bool { return m.WorkID == workID })
}

func (v transactionView) ListCollaborators(workID string) []domain.Collaborator {
	return v.state.collaborators.list(func(c domain.Collaborator) bool { return c.WorkID == workID })
}

func (v transactionView) ListSuppliers(workID string) []domain.Supplier {
	return v.state.suppliers.list(func(s domain.Supplier) bool { return s.WorkID == workID })
}

func (v transactionView) ListPhotos(workID string) []domain.Photo {
	return v.state.photos.list(func(p domain.Photo) bool { return p.WorkID == workID })
}

func (v transactionView) ListFiles(workID string) []domain.File {
	return v.state.files.list(func(f domain.File) bool { return f.WorkID == workID })
}

// ListNotifications returns notifications addressed to userID.
func (v transactionView) ListNotifications(userID string) []domain.Notification {
	return v.state.notifications.list(func(n domain.Notification) bool { return n.UserID == userID })
}

func (v transactionView) FindUser(id string) (domain.User, bool) { return v.state.users.get(id) }

func (v transactionView) FindWork(id string) (domain.Work, bool) { return v.state.works.get(id) }

func (v transactionView) FindStep(id string) (domain.Step, bool) { return v.state.steps.get(id) }

func (v transactionView) FindExpense(id string) (domain.Expense, bool) {
	return v.state.expenses.get(id)
}

func (v transactionView) FindMaterial(id string) (domain.Material, bool) {
	return v.state.materials.get(id)
}

func (v transactionView) FindCollaborator(id string) (domain.Collaborator, bool) {
	return v.state.collaborators.get(id)
}

func (v transactionView) FindSupplier(id string) (domain.Supplier, bool) {
	return v.state.suppliers.get(id)
}

func (v transactionView) FindPhoto(id string) (domain.Photo, bool) { return v.state.photos.get(id) }

func (v transactionView) FindFile(id string) (domain.File, bool) { return v.state.files.get(id) }

func (v transactionView) FindNotification(id string) (domain.Notification, bool) {
	return v.state.notifications.get(id)
}
