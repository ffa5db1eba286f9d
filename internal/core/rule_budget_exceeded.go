package core

import (
	"context"
	"fmt"

	"workledger/pkg/domain"
)

// NewBudgetExceededRule returns the rule that warns when a work touched by the
// transaction has disbursed more than its planned budget.
func NewBudgetExceededRule() domain.Rule {
	return budgetExceededRule{}
}

type budgetExceededRule struct{}

func (budgetExceededRule) Name() string { return "budget_exceeded" }

func (r budgetExceededRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	seen := make(map[string]bool)
	for _, change := range changes {
		if change.Entity != domain.EntityExpense && change.Entity != domain.EntityWork {
			continue
		}
		_, workID := domain.ChangeRef(change)
		if workID == "" || seen[workID] {
			continue
		}
		seen[workID] = true
		work, ok := view.FindWork(workID)
		if !ok || work.BudgetPlanned <= 0 {
			continue
		}
		var spent float64
		for _, e := range view.ListExpenses(workID) {
			spent += e.PaidAmount
		}
		if spent > work.BudgetPlanned {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("work %s spent %.2f of a %.2f budget", work.Name, spent, work.BudgetPlanned),
				Entity:   domain.EntityWork,
				EntityID: workID,
			})
		}
	}
	return res, nil
}
