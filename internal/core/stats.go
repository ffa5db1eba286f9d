package core

import (
	"math"

	"workledger/pkg/domain"
)

// Stats are the derived progress and spend figures of a work.
type Stats struct {
	TotalSpent     float64 `json:"totalSpent"`
	TotalCommitted float64 `json:"totalCommitted"`
	Progress       int     `json:"progress"`
	DelayedSteps   int     `json:"delayedSteps"`
	TotalSteps     int     `json:"totalSteps"`
	CompletedSteps int     `json:"completedSteps"`
	BudgetUsage    float64 `json:"budgetUsage"`
}

// ComputeStats aggregates steps and expenses as of today. TotalSpent sums
// cash disbursed (paidAmount) while TotalCommitted sums amount.
func ComputeStats(steps []domain.Step, expenses []domain.Expense, today domain.Date) Stats {
	var st Stats
	for _, e := range expenses {
		st.TotalSpent += e.PaidAmount
		st.TotalCommitted += e.Amount
	}
	st.TotalSteps = len(steps)
	for _, s := range steps {
		if s.Status == domain.StepStatusCompleted {
			st.CompletedSteps++
		}
		if s.IsDelayed(today) {
			st.DelayedSteps++
		}
	}
	st.Progress = percent(st.CompletedSteps, st.TotalSteps)
	return st
}

// ComputeWorkStats is ComputeStats plus the work's budget usage.
func ComputeWorkStats(work domain.Work, steps []domain.Step, expenses []domain.Expense, today domain.Date) Stats {
	st := ComputeStats(steps, expenses, today)
	st.BudgetUsage = BudgetUsage(work.BudgetPlanned, st.TotalSpent)
	return st
}

// BudgetUsage is spent/planned, or 0 when nothing was planned.
func BudgetUsage(planned, spent float64) float64 {
	if planned <= 0 {
		return 0
	}
	return spent / planned
}

// SpendByCategory totals disbursed cash per expense category.
func SpendByCategory(expenses []domain.Expense) map[domain.ExpenseCategory]float64 {
	out := make(map[domain.ExpenseCategory]float64)
	for _, e := range expenses {
		out[e.Category] += e.PaidAmount
	}
	return out
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
