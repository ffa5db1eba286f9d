package core_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"workledger/internal/core"
	"workledger/internal/events"
	"workledger/pkg/domain"
)

var fixedNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (c *captureLogger) add(level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, level+":"+msg)
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("debug", msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("info", msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("warn", msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("error", msg) }

func (c *captureLogger) has(entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e == entry {
			return true
		}
	}
	return false
}

func newService(t *testing.T, opts ...core.ServiceOption) *core.Service {
	t.Helper()
	base := []core.ServiceOption{core.WithClock(core.ClockFunc(func() time.Time { return fixedNow }))}
	return core.NewInMemoryService(core.NewDefaultRulesEngine(), append(base, opts...)...)
}

func mustWork(t *testing.T, svc *core.Service, work domain.Work) domain.Work {
	t.Helper()
	w, _, err := svc.CreateWork(context.Background(), work, false)
	if err != nil {
		t.Fatalf("create work: %v", err)
	}
	return w
}

func TestCreateWorkGeneratesSchedule(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work, _, err := svc.CreateWork(ctx, domain.Work{UserID: "u1", Name: "Casa", Status: domain.WorkStatusCompleted}, true)
	if err != nil {
		t.Fatalf("create work: %v", err)
	}
	if work.Status != domain.WorkStatusPlanning {
		t.Fatalf("expected PLANNING, got %s", work.Status)
	}
	if !work.StartDate.Equal(domain.NewDate(2024, 6, 10)) {
		t.Fatalf("expected start date defaulted to today, got %s", work.StartDate)
	}
	steps := svc.GetSteps(ctx, work.ID)
	if len(steps) != 64 {
		t.Fatalf("expected 64 steps, got %d", len(steps))
	}
	if steps[0].Phase != "Preparação do terreno" {
		t.Fatalf("unexpected first phase %q", steps[0].Phase)
	}

	if _, _, err := svc.CreateWork(ctx, domain.Work{Name: "bad", BudgetPlanned: -1}, false); !domain.IsInvalidQuantity(err) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestUpdateWorkKeepsDerivedStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{UserID: "u1", Name: "Casa"})
	updated, _, err := svc.UpdateWork(ctx, work.ID, func(w *domain.Work) error {
		w.Name = "Casa Nova"
		w.Status = domain.WorkStatusCompleted
		w.UserID = ""
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Casa Nova" || updated.Status != domain.WorkStatusPlanning || updated.UserID != "u1" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, _, err := svc.UpdateWork(ctx, "missing", nil); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStepLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{Name: "Reforma", BudgetPlanned: 1000})
	for _, s := range svc.GetSteps(ctx, work.ID) {
		if _, _, err := svc.DeleteStep(ctx, s.ID); err != nil {
			t.Fatalf("delete generated step: %v", err)
		}
	}

	first, _, err := svc.AddStep(ctx, domain.Step{WorkID: work.ID, Name: "Pintura - Preparo"})
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	if first.Step.Status != domain.StepStatusNotStarted || first.Step.Phase != "Pintura" {
		t.Fatalf("step not normalised: %+v", first.Step)
	}
	if first.Progress.Work.Status != domain.WorkStatusPlanning {
		t.Fatalf("expected PLANNING, got %s", first.Progress.Work.Status)
	}

	second, _, err := svc.AddStep(ctx, domain.Step{WorkID: work.ID, Name: "Extra", Status: domain.StepStatusCompleted})
	if err != nil {
		t.Fatalf("add started step: %v", err)
	}
	if second.Progress.Work.Status != domain.WorkStatusInProgress {
		t.Fatalf("a step created already started must force IN_PROGRESS, got %s", second.Progress.Work.Status)
	}

	first.Step.Status = domain.StepStatusCompleted
	done, _, err := svc.UpdateStep(ctx, first.Step)
	if err != nil {
		t.Fatalf("update step: %v", err)
	}
	if done.Progress.Work.Status != domain.WorkStatusCompleted || done.Progress.Stats.Progress != 100 {
		t.Fatalf("expected completed work at 100%%, got %+v", done.Progress)
	}

	reopened, _, err := svc.SetStepStatus(ctx, second.Step.ID, domain.StepStatusInProgress)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Progress.Work.Status != domain.WorkStatusInProgress {
		t.Fatalf("reopening a step must move the work back to IN_PROGRESS, got %s", reopened.Progress.Work.Status)
	}

	progress, _, err := svc.DeleteStep(ctx, second.Step.ID)
	if err != nil {
		t.Fatalf("delete step: %v", err)
	}
	if progress.Work.Status != domain.WorkStatusCompleted {
		t.Fatalf("expected COMPLETED after deleting the open step, got %s", progress.Work.Status)
	}

	if _, _, err := svc.AddStep(ctx, domain.Step{WorkID: "missing", Name: "x"}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found for unknown work, got %v", err)
	}
	if _, _, err := svc.AddStep(ctx, domain.Step{WorkID: work.ID, Name: "x", Status: "DONE"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid status error, got %v", err)
	}
	if _, _, err := svc.DeleteStep(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}


func TestSetStepStatusKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{Name: "Reforma", BudgetPlanned: 1000})
	added, _, err := svc.AddStep(ctx, domain.Step{WorkID: work.ID, Name: "Pintura - Preparo"})
	if err != nil {
		t.Fatalf("add step: %v", err)
	}

	renamed := added.Step
	renamed.Name = "Pintura - Acabamento"
	renamed.Phase = "Acabamento"
	if _, _, err := svc.UpdateStep(ctx, renamed); err != nil {
		t.Fatalf("rename step: %v", err)
	}

	changed, _, err := svc.SetStepStatus(ctx, added.Step.ID, domain.StepStatusInProgress)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if changed.Step.Name != renamed.Name || changed.Step.Phase != renamed.Phase {
		t.Fatalf("status change overwrote other fields: %+v", changed.Step)
	}
	if changed.Step.Status != domain.StepStatusInProgress || changed.Progress.Work.Status != domain.WorkStatusInProgress {
		t.Fatalf("unexpected status change %+v", changed)
	}
	for _, stored := range svc.GetSteps(ctx, work.ID) {
		if stored.ID == added.Step.ID && (stored.Name != renamed.Name || stored.Status != domain.StepStatusInProgress) {
			t.Fatalf("unexpected stored step %+v", stored)
		}
	}

	if _, _, err := svc.SetStepStatus(ctx, added.Step.ID, "DONE"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	var notFound domain.ErrNotFound
	if _, _, err := svc.SetStepStatus(ctx, "missing", domain.StepStatusCompleted); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStepCannotMoveWork(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	a := mustWork(t, svc, domain.Work{Name: "A"})
	b := mustWork(t, svc, domain.Work{Name: "B"})
	st := svc.GetSteps(ctx, a.ID)[0]
	st.WorkID = b.ID
	changed, _, err := svc.UpdateStep(ctx, st)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if changed.Step.WorkID != a.ID {
		t.Fatalf("step moved to another work")
	}
}

func TestExpenseDefaultsAndStats(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{Name: "Casa", BudgetPlanned: 1000})
	e, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: work.ID, Description: "Cimento", Amount: 850})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	if e.Quantity != 1 || e.PaidAmount != 0 || e.Category != domain.ExpenseOther || !e.Date.Equal(domain.NewDate(2024, 6, 10)) {
		t.Fatalf("defaults not applied: %+v", e)
	}
	if got := svc.CalculateWorkStats(ctx, work.ID).TotalSpent; got != 0 {
		t.Fatalf("unpaid expense must not count as spent, got %v", got)
	}

	e.PaidAmount = 850
	if _, _, err := svc.UpdateExpense(ctx, e); err != nil {
		t.Fatalf("update expense: %v", err)
	}
	progress, ok := svc.WorkProgress(ctx, work.ID)
	if !ok {
		t.Fatalf("work progress not found")
	}
	if progress.Stats.TotalSpent != 850 || progress.Risk != core.RiskMedium {
		t.Fatalf("expected spent 850 and MEDIUM risk, got %+v", progress)
	}

	if _, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: work.ID, Amount: -1}); !domain.IsInvalidQuantity(err) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := svc.DeleteExpense(ctx, e.ID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if got := svc.CalculateWorkStats(ctx, "unknown"); got != (core.Stats{}) {
		t.Fatalf("expected zero stats for unknown work, got %+v", got)
	}
}

func TestBudgetExceededWarnsWithoutBlocking(t *testing.T) {
	ctx := context.Background()
	logger := &captureLogger{}
	svc := newService(t, core.WithLogger(logger))
	work := mustWork(t, svc, domain.Work{Name: "Casa", BudgetPlanned: 100})
	_, res, err := svc.AddExpense(ctx, domain.Expense{WorkID: work.ID, Amount: 150, PaidAmount: 150})
	if err != nil {
		t.Fatalf("over-budget expense must commit: %v", err)
	}
	warnings := res.Warnings()
	if len(warnings) != 1 || warnings[0].Rule != "budget_exceeded" {
		t.Fatalf("expected budget warning, got %+v", res.Violations)
	}
	if !logger.has("warn:rule warning") {
		t.Fatalf("rule warning not logged: %v", logger.entries)
	}
}

func TestQuantityGuardBlocksDirectWrites(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{Name: "Casa"})
	_, err := svc.Store().RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateExpense(domain.Expense{WorkID: work.ID, Amount: 10, PaidAmount: -3})
		return err
	})
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if !violation.Result.HasBlocking() || violation.Result.Violations[0].Rule != "quantity_guard" {
		t.Fatalf("unexpected violations %+v", violation.Result.Violations)
	}
	if got := len(svc.GetExpenses(ctx, work.ID)); got != 0 {
		t.Fatalf("blocked write was committed")
	}
}

func TestMaterialPurchaseExpenses(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{Name: "Casa"})
	m, _, err := svc.AddMaterial(ctx, domain.Material{WorkID: work.ID, Name: "Cimento CP-II", PlannedQty: 10, PurchasedQty: 4, Unit: "sc"})
	if err != nil {
		t.Fatalf("add material: %v", err)
	}
	if m.PurchasedQty != 0 {
		t.Fatalf("new material must start unpurchased, got %v", m.PurchasedQty)
	}
	if m.Category == "" {
		t.Fatalf("catalog category not applied")
	}

	m.PurchasedQty = 5
	if _, _, err := svc.UpdateMaterial(ctx, m, 300); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	expenses := svc.GetExpenses(ctx, work.ID)
	if len(expenses) != 1 {
		t.Fatalf("expected one purchase expense, got %d", len(expenses))
	}
	e := expenses[0]
	if e.Description != "Compra: Cimento CP-II" || e.Amount != 300 || e.PaidAmount != 300 ||
		e.Category != domain.ExpenseMaterial || e.RelatedMaterialID != m.ID || !e.Date.Equal(domain.NewDate(2024, 6, 10)) {
		t.Fatalf("unexpected purchase expense %+v", e)
	}

	m.PurchasedQty = 8
	if _, _, err := svc.UpdateMaterial(ctx, m, 0); err != nil {
		t.Fatalf("update without cost: %v", err)
	}
	if got := len(svc.GetExpenses(ctx, work.ID)); got != 1 {
		t.Fatalf("zero cost must not add an expense, got %d", got)
	}
	if _, _, err := svc.UpdateMaterial(ctx, m, 120); err != nil {
		t.Fatalf("second purchase: %v", err)
	}
	if _, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: work.ID, Amount: 10}); err != nil {
		t.Fatalf("unrelated expense: %v", err)
	}

	m.PurchasedQty = 0
	if _, _, err := svc.UpdateMaterial(ctx, m, 999); err != nil {
		t.Fatalf("reset: %v", err)
	}
	remaining := svc.GetExpenses(ctx, work.ID)
	if len(remaining) != 1 || remaining[0].RelatedMaterialID != "" {
		t.Fatalf("reset must delete only linked expenses, got %+v", remaining)
	}

	if _, _, err := svc.UpdateMaterial(ctx, m, -5); !domain.IsInvalidQuantity(err) {
		t.Fatalf("expected invalid cost, got %v", err)
	}
	m.PlannedQty = -1
	if _, _, err := svc.UpdateMaterial(ctx, m, 0); !domain.IsInvalidQuantity(err) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := svc.DeleteMaterial(ctx, m.ID); err != nil {
		t.Fatalf("delete material: %v", err)
	}
}

func TestCollaboratorLaborExpense(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{Name: "Casa"})
	c, _, err := svc.AddCollaborator(ctx, domain.Collaborator{WorkID: work.ID, Name: "João", Role: domain.RoleMason, CostType: domain.CostDaily, CostValue: 250})
	if err != nil {
		t.Fatalf("add collaborator: %v", err)
	}
	expenses := svc.GetExpenses(ctx, work.ID)
	if len(expenses) != 1 {
		t.Fatalf("expected labor expense, got %d", len(expenses))
	}
	e := expenses[0]
	if e.Category != domain.ExpenseLabor || e.Amount != 250 || e.PaidAmount != 0 || e.CollaboratorID != c.ID {
		t.Fatalf("unexpected labor expense %+v", e)
	}
	if !strings.Contains(e.Description, "João") {
		t.Fatalf("labor expense description %q lacks collaborator name", e.Description)
	}

	if _, _, err := svc.AddCollaborator(ctx, domain.Collaborator{WorkID: work.ID, Name: "Ajudante"}); err != nil {
		t.Fatalf("add free collaborator: %v", err)
	}
	if got := len(svc.GetExpenses(ctx, work.ID)); got != 1 {
		t.Fatalf("zero cost collaborator must not add an expense, got %d", got)
	}

	c.Phone = "11 99999-0000"
	if _, _, err := svc.UpdateCollaborator(ctx, c); err != nil {
		t.Fatalf("update collaborator: %v", err)
	}
	if _, err := svc.DeleteCollaborator(ctx, c.ID); err != nil {
		t.Fatalf("delete collaborator: %v", err)
	}
	if got := len(svc.GetCollaborators(ctx, work.ID)); got != 1 {
		t.Fatalf("expected one collaborator left, got %d", got)
	}
}

func TestDeleteWorkCascades(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{UserID: "u1", Name: "Casa"})
	other := mustWork(t, svc, domain.Work{UserID: "u1", Name: "Outra"})

	if _, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: work.ID, Amount: 10}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddMaterial(ctx, domain.Material{WorkID: work.ID, Name: "Areia"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddCollaborator(ctx, domain.Collaborator{WorkID: work.ID, Name: "Ana", CostValue: 10}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddSupplier(ctx, domain.Supplier{WorkID: work.ID, Name: "Depósito"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddPhoto(ctx, domain.Photo{WorkID: work.ID, URL: "p.jpg"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddFile(ctx, domain.File{WorkID: work.ID, Name: "planta.pdf"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddNotification(ctx, domain.Notification{UserID: "u1", WorkID: work.ID, Title: "bound"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddNotification(ctx, domain.Notification{UserID: "u1", WorkID: other.ID, Title: "other"}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.DeleteWork(ctx, work.ID); err != nil {
		t.Fatalf("delete work: %v", err)
	}
	if _, ok := svc.GetWorkByID(ctx, work.ID); ok {
		t.Fatalf("work still present")
	}
	if len(svc.GetSteps(ctx, work.ID))+len(svc.GetExpenses(ctx, work.ID))+len(svc.GetMaterials(ctx, work.ID))+
		len(svc.GetCollaborators(ctx, work.ID))+len(svc.GetSuppliers(ctx, work.ID))+len(svc.GetPhotos(ctx, work.ID))+
		len(svc.GetFiles(ctx, work.ID)) != 0 {
		t.Fatalf("dependent records survived the cascade")
	}
	notes := svc.GetNotifications(ctx, "u1")
	if len(notes) != 1 || notes[0].Title != "other" {
		t.Fatalf("expected only the other work's notification, got %+v", notes)
	}
	if len(svc.GetSteps(ctx, other.ID)) != 12 {
		t.Fatalf("other work's steps were touched")
	}
	if _, err := svc.DeleteWork(ctx, work.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

type failingDeleteStore struct {
	domain.PersistentStore
}

type failingDeleteTx struct {
	domain.Transaction
}

func (failingDeleteTx) DeletePhoto(string) error { return errors.New("disk full") }

func (s failingDeleteStore) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	return s.PersistentStore.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return fn(failingDeleteTx{tx})
	})
}

func TestDeleteWorkCascadeFailureIsAtomic(t *testing.T) {
	ctx := context.Background()
	seed := newService(t)
	work := mustWork(t, seed, domain.Work{Name: "Casa"})
	if _, _, err := seed.AddPhoto(ctx, domain.Photo{WorkID: work.ID, URL: "p.jpg"}); err != nil {
		t.Fatal(err)
	}
	svc := core.NewService(failingDeleteStore{seed.Store()})

	_, err := svc.DeleteWork(ctx, work.ID)
	var cascade domain.ErrCascadeFailure
	if !errors.As(err, &cascade) || cascade.Entity != domain.EntityPhoto || cascade.WorkID != work.ID {
		t.Fatalf("expected cascade failure on photos, got %v", err)
	}
	if _, ok := seed.GetWorkByID(ctx, work.ID); !ok {
		t.Fatalf("work deleted despite failed cascade")
	}
	if len(seed.GetSteps(ctx, work.ID)) != 12 {
		t.Fatalf("steps deleted despite failed cascade")
	}
}

func TestPhotosAndNotificationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work := mustWork(t, svc, domain.Work{UserID: "u1", Name: "Casa"})
	for _, d := range []domain.Date{domain.NewDate(2024, 1, 1), domain.NewDate(2024, 3, 1), domain.NewDate(2024, 2, 1)} {
		if _, _, err := svc.AddPhoto(ctx, domain.Photo{WorkID: work.ID, Date: d}); err != nil {
			t.Fatal(err)
		}
	}
	photos := svc.GetPhotos(ctx, work.ID)
	if !photos[0].Date.Equal(domain.NewDate(2024, 3, 1)) || !photos[2].Date.Equal(domain.NewDate(2024, 1, 1)) {
		t.Fatalf("photos not sorted newest first: %v %v %v", photos[0].Date, photos[1].Date, photos[2].Date)
	}

	var ids []string
	for i, title := range []string{"old", "new", "mid"} {
		offsets := []time.Duration{-48 * time.Hour, 0, -24 * time.Hour}
		n, _, err := svc.AddNotification(ctx, domain.Notification{UserID: "u1", Title: title, Date: fixedNow.Add(offsets[i])})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}
	notes := svc.GetNotifications(ctx, "u1")
	if notes[0].Title != "new" || notes[2].Title != "old" || notes[0].Kind != domain.NotificationInfo {
		t.Fatalf("unexpected notification order %+v", notes)
	}

	if _, err := svc.MarkNotificationRead(ctx, ids[0]); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if _, err := svc.MarkAllNotificationsRead(ctx, "u1"); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	for _, n := range svc.GetNotifications(ctx, "u1") {
		if !n.Read {
			t.Fatalf("notification %s still unread", n.ID)
		}
	}
	if _, err := svc.MarkNotificationRead(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.ClearNotifications(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := len(svc.GetNotifications(ctx, "u1")); got != 0 {
		t.Fatalf("expected no notifications, got %d", got)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	u, _, err := svc.CreateUser(ctx, domain.User{Name: "Ana", Email: "ana@example.com", Plan: domain.PlanMonthly})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	found, ok := svc.FindUserByEmail(ctx, "ANA@example.com")
	if !ok || found.ID != u.ID {
		t.Fatalf("lookup by email failed: %+v", found)
	}
	if _, _, err := svc.CreateUser(ctx, domain.User{Email: "ana@example.com"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
	if _, ok := svc.FindUserByEmail(ctx, "nobody@example.com"); ok {
		t.Fatalf("unexpected match")
	}
}

func TestPortfolio(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	healthy := mustWork(t, svc, domain.Work{UserID: "u1", Name: "A", BudgetPlanned: 1000})
	risky := mustWork(t, svc, domain.Work{UserID: "u1", Name: "B", BudgetPlanned: 100})
	mustWork(t, svc, domain.Work{UserID: "u2", Name: "C"})

	if _, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: risky.ID, Amount: 200, PaidAmount: 200, Date: domain.NewDate(2024, 6, 3)}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: healthy.ID, Amount: 50, Date: domain.NewDate(2024, 6, 2)}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddMaterial(ctx, domain.Material{WorkID: healthy.ID, Name: "Areia", PlannedQty: 3}); err != nil {
		t.Fatal(err)
	}

	summary := svc.Portfolio(ctx, "u1")
	if len(summary.Works) != 2 {
		t.Fatalf("expected 2 works, got %d", len(summary.Works))
	}
	if summary.OverallRisk != core.RiskHigh {
		t.Fatalf("expected HIGH overall risk, got %s", summary.OverallRisk)
	}
	if summary.ExpensesLast7Days != 200 {
		t.Fatalf("expected 200 spent in the last 7 days, got %v", summary.ExpensesLast7Days)
	}
	if summary.MissingMaterials != 1 {
		t.Fatalf("expected 1 missing material, got %d", summary.MissingMaterials)
	}
	// fallback schedule starts today, so its first week is not yet late
	if summary.DelayedSteps != 0 {
		t.Fatalf("expected no delayed steps, got %d", summary.DelayedSteps)
	}
	if empty := svc.Portfolio(ctx, "nobody"); empty.OverallRisk != core.RiskLow || len(empty.Works) != 0 {
		t.Fatalf("unexpected empty portfolio %+v", empty)
	}
}

func TestPhaseGroups(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	work, _, err := svc.CreateWork(ctx, domain.Work{Name: "Casa"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.AddStep(ctx, domain.Step{WorkID: work.ID, Name: "Vistoria"}); err != nil {
		t.Fatal(err)
	}
	groups := svc.PhaseGroups(ctx, work.ID)
	if len(groups) != 14 {
		t.Fatalf("expected 13 catalog phases plus custom, got %d", len(groups))
	}
	if groups[0].Phase != "Preparação do terreno" || groups[13].Phase != "Personalizadas" {
		t.Fatalf("unexpected group order %s .. %s", groups[0].Phase, groups[13].Phase)
	}
}

func TestServicePublishesChangeEvents(t *testing.T) {
	ctx := context.Background()
	rec := events.NewRecorder()
	svc := newService(t, core.WithPublisher(rec))
	work, _, err := svc.CreateWork(ctx, domain.Work{Name: "Casa"}, false)
	if err != nil {
		t.Fatal(err)
	}
	evs := rec.Events()
	if len(evs) != 13 {
		t.Fatalf("expected work + 12 step events, got %d", len(evs))
	}
	if evs[0].Type != "workledger.work.create" || evs[0].WorkID != work.ID || evs[0].Version != 1 {
		t.Fatalf("unexpected first event %+v", evs[0])
	}
	if !evs[0].OccurredAt.Equal(fixedNow) {
		t.Fatalf("event not stamped with service clock: %v", evs[0].OccurredAt)
	}

	rec.Reset()
	if _, _, err := svc.AddExpense(ctx, domain.Expense{WorkID: work.ID, Amount: -5}); err == nil {
		t.Fatalf("expected validation error")
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("failed mutation published events")
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	rec := events.NewRecorder()
	_ = rec.Close()
	logger := &captureLogger{}
	svc := newService(t, core.WithPublisher(rec), core.WithLogger(logger))
	if _, _, err := svc.CreateWork(ctx, domain.Work{Name: "Casa"}, false); err != nil {
		t.Fatalf("publish failure leaked into mutation: %v", err)
	}
	if !logger.has("warn:publish change event failed") {
		t.Fatalf("publish failure not logged: %v", logger.entries)
	}
}

type countingMetrics struct {
	mu  sync.Mutex
	ops map[string][]bool
}

func (m *countingMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ops == nil {
		m.ops = make(map[string][]bool)
	}
	m.ops[op] = append(m.ops[op], success)
}

type recordingTracer struct {
	ended []error
}

type recordingSpan struct{ t *recordingTracer }

func (s recordingSpan) End(err error) { s.t.ended = append(s.t.ended, err) }

func (t *recordingTracer) Start(ctx context.Context, _ string) (context.Context, core.TraceSpan) {
	return ctx, recordingSpan{t}
}

func TestServiceObservability(t *testing.T) {
	ctx := context.Background()
	metrics := &countingMetrics{}
	tracer := &recordingTracer{}
	logger := &captureLogger{}
	svc := newService(t, core.WithMetricsRecorder(metrics), core.WithTracer(tracer), core.WithLogger(logger))

	if _, _, err := svc.CreateWork(ctx, domain.Work{Name: "Casa"}, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DeleteExpense(ctx, "missing"); err == nil {
		t.Fatalf("expected not found")
	}
	if got := metrics.ops["create_work"]; len(got) != 1 || !got[0] {
		t.Fatalf("unexpected create_work observations %v", got)
	}
	if got := metrics.ops["delete_expense"]; len(got) != 1 || got[0] {
		t.Fatalf("unexpected delete_expense observations %v", got)
	}
	if len(tracer.ended) != 2 || tracer.ended[0] != nil || tracer.ended[1] == nil {
		t.Fatalf("unexpected span outcomes %v", tracer.ended)
	}
	if !logger.has("error:operation failed") {
		t.Fatalf("failure not logged: %v", logger.entries)
	}
}

func TestServiceOptionsIgnoreNil(t *testing.T) {
	svc := core.NewInMemoryService(nil,
		core.WithClock(nil), core.WithLogger(nil), core.WithMetricsRecorder(nil),
		core.WithTracer(nil), core.WithPublisher(nil), core.WithCatalog(nil), core.WithLocation(nil))
	if svc.Catalog() == nil || svc.Store() == nil {
		t.Fatalf("defaults not applied")
	}
	if _, _, err := svc.CreateWork(context.Background(), domain.Work{Name: "x"}, false); err != nil {
		t.Fatalf("create with defaults: %v", err)
	}
}

func TestTodayUsesLocation(t *testing.T) {
	late := time.Date(2024, 6, 10, 23, 30, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+3", 3*60*60)
	svc := core.NewInMemoryService(nil,
		core.WithClock(core.ClockFunc(func() time.Time { return late })),
		core.WithLocation(loc))
	if !svc.Today().Equal(domain.NewDate(2024, 6, 11)) {
		t.Fatalf("expected local date 2024-06-11, got %s", svc.Today())
	}
}
