package core

import (
	"context"
	"sort"

	"workledger/pkg/domain"
)

// GetWorks lists a user's works in creation order. An empty userID lists all.
func (s *Service) GetWorks(ctx context.Context, userID string) []domain.Work {
	var out []domain.Work
	s.view(ctx, func(v domain.TransactionView) { out = worksOf(v, userID) })
	return out
}

func worksOf(v domain.TransactionView, userID string) []domain.Work {
	var out []domain.Work
	for _, w := range v.ListWorks() {
		if userID == "" || w.UserID == userID {
			out = append(out, w)
		}
	}
	return out
}

// GetWorkByID returns a work, or false when it does not exist.
func (s *Service) GetWorkByID(ctx context.Context, id string) (domain.Work, bool) {
	var (
		work domain.Work
		ok   bool
	)
	s.view(ctx, func(v domain.TransactionView) { work, ok = v.FindWork(id) })
	return work, ok
}

// GetSteps lists a work's steps in insertion order.
func (s *Service) GetSteps(ctx context.Context, workID string) []domain.Step {
	var out []domain.Step
	s.view(ctx, func(v domain.TransactionView) { out = v.ListSteps(workID) })
	return out
}

// GetExpenses lists a work's expenses.
func (s *Service) GetExpenses(ctx context.Context, workID string) []domain.Expense {
	var out []domain.Expense
	s.view(ctx, func(v domain.TransactionView) { out = v.ListExpenses(workID) })
	return out
}

// GetMaterials lists a work's materials.
func (s *Service) GetMaterials(ctx context.Context, workID string) []domain.Material {
	var out []domain.Material
	s.view(ctx, func(v domain.TransactionView) { out = v.ListMaterials(workID) })
	return out
}

// GetCollaborators lists a work's collaborators.
func (s *Service) GetCollaborators(ctx context.Context, workID string) []domain.Collaborator {
	var out []domain.Collaborator
	s.view(ctx, func(v domain.TransactionView) { out = v.ListCollaborators(workID) })
	return out
}

// GetSuppliers lists a work's suppliers.
func (s *Service) GetSuppliers(ctx context.Context, workID string) []domain.Supplier {
	var out []domain.Supplier
	s.view(ctx, func(v domain.TransactionView) { out = v.ListSuppliers(workID) })
	return out
}

// GetPhotos lists a work's photos, newest first.
func (s *Service) GetPhotos(ctx context.Context, workID string) []domain.Photo {
	var out []domain.Photo
	s.view(ctx, func(v domain.TransactionView) { out = v.ListPhotos(workID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// GetFiles lists a work's attachments.
func (s *Service) GetFiles(ctx context.Context, workID string) []domain.File {
	var out []domain.File
	s.view(ctx, func(v domain.TransactionView) { out = v.ListFiles(workID) })
	return out
}

// GetNotifications lists a user's notifications, newest first.
func (s *Service) GetNotifications(ctx context.Context, userID string) []domain.Notification {
	var out []domain.Notification
	s.view(ctx, func(v domain.TransactionView) { out = v.ListNotifications(userID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// CalculateWorkStats derives the current stats of a work. Unknown works yield
// zero stats.
func (s *Service) CalculateWorkStats(ctx context.Context, workID string) Stats {
	progress, _ := s.WorkProgress(ctx, workID)
	return progress.Stats
}

// WorkProgress derives stats and risk of a work as of today.
func (s *Service) WorkProgress(ctx context.Context, workID string) (WorkProgress, bool) {
	today := s.Today()
	var (
		out WorkProgress
		ok  bool
	)
	s.view(ctx, func(v domain.TransactionView) {
		var work domain.Work
		if work, ok = v.FindWork(workID); ok {
			out = progressOf(v, work, today)
		}
	})
	return out, ok
}

// PhaseGroups groups a work's steps by phase in catalog order.
func (s *Service) PhaseGroups(ctx context.Context, workID string) []PhaseGroup {
	return GroupByPhase(s.catalog, s.GetSteps(ctx, workID), s.Today())
}

// PortfolioSummary is the dashboard view over all works of a user.
type PortfolioSummary struct {
	Works             []WorkProgress `json:"works"`
	OverallRisk       RiskLevel      `json:"overallRisk"`
	DelayedSteps      int            `json:"delayedSteps"`
	MissingMaterials  int            `json:"missingMaterials"`
	ExpensesLast7Days float64        `json:"expensesLast7Days"`
}

const recentExpenseDays = 7

// Portfolio summarises a user's works. The overall risk is the worst work
// risk; recent expenses sum committed amounts dated within the last week.
func (s *Service) Portfolio(ctx context.Context, userID string) PortfolioSummary {
	today := s.Today()
	since := today.AddDays(-recentExpenseDays)
	out := PortfolioSummary{OverallRisk: RiskLow}
	s.view(ctx, func(v domain.TransactionView) {
		for _, work := range worksOf(v, userID) {
			p := progressOf(v, work, today)
			out.Works = append(out.Works, p)
			out.OverallRisk = CombineRisk(out.OverallRisk, p.Risk)
			out.DelayedSteps += p.Stats.DelayedSteps
			for _, m := range v.ListMaterials(work.ID) {
				if m.PurchasedQty < m.PlannedQty {
					out.MissingMaterials++
				}
			}
			for _, e := range v.ListExpenses(work.ID) {
				if !e.Date.Before(since) {
					out.ExpensesLast7Days += e.Amount
				}
			}
		}
	})
	return out
}
