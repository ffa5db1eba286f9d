package core

import (
	"context"
	"fmt"

	"workledger/pkg/domain"
)

// NewQuantityGuardRule returns the rule that blocks commits carrying negative
// quantities or monetary values.
func NewQuantityGuardRule() domain.Rule {
	return quantityGuardRule{}
}

type quantityGuardRule struct{}

func (quantityGuardRule) Name() string { return "quantity_guard" }

func (r quantityGuardRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	for _, change := range changes {
		if change.Action == domain.ActionDelete || change.After == nil {
			continue
		}
		for _, bad := range negativeFields(change.After) {
			id, _ := domain.RecordRef(change.After)
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s %s: %s must not be negative (got %g)", change.Entity, id, bad.Field, bad.Value),
				Entity:   change.Entity,
				EntityID: id,
			})
		}
	}
	return res, nil
}

// negativeFields lists the quantity errors of a record, in field order.
func negativeFields(record any) []domain.ErrInvalidQuantity {
	var out []domain.ErrInvalidQuantity
	check := func(entity domain.EntityType, field string, v float64) {
		if v < 0 {
			out = append(out, domain.ErrInvalidQuantity{Entity: entity, Field: field, Value: v})
		}
	}
	switch r := record.(type) {
	case domain.Work:
		check(domain.EntityWork, "budgetPlanned", r.BudgetPlanned)
		check(domain.EntityWork, "area", r.Area)
	case domain.Expense:
		check(domain.EntityExpense, "amount", r.Amount)
		check(domain.EntityExpense, "paidAmount", r.PaidAmount)
		check(domain.EntityExpense, "quantity", r.Quantity)
	case domain.Material:
		check(domain.EntityMaterial, "plannedQty", r.PlannedQty)
		check(domain.EntityMaterial, "purchasedQty", r.PurchasedQty)
	case domain.Collaborator:
		check(domain.EntityCollaborator, "costValue", r.CostValue)
	}
	return out
}

// validateQuantities returns the first quantity error of record, if any.
func validateQuantities(record any) error {
	if bad := negativeFields(record); len(bad) > 0 {
		return bad[0]
	}
	return nil
}
