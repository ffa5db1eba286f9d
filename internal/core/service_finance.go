package core

import (
	"context"

	"workledger/pkg/domain"
)

const (
	purchaseDescriptionPrefix = "Compra: "
	laborDescriptionPrefix    = "Mão de Obra: "
)

// AddExpense records an expense. Quantity defaults to one, the date to today
// and the category to OTHER; paidAmount is taken as given (zero when unset).
func (s *Service) AddExpense(ctx context.Context, expense domain.Expense) (domain.Expense, domain.Result, error) {
	if err := validateQuantities(expense); err != nil {
		return domain.Expense{}, domain.Result{}, err
	}
	if expense.Quantity == 0 {
		expense.Quantity = 1
	}
	if expense.Date.IsZero() {
		expense.Date = s.Today()
	}
	if expense.Category == "" {
		expense.Category = domain.ExpenseOther
	}
	var created domain.Expense
	res, err := s.run(ctx, "add_expense", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), expense.WorkID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateExpense(expense)
		return err
	})
	return created, res, err
}

// UpdateExpense replaces an expense's fields; its work cannot change.
func (s *Service) UpdateExpense(ctx context.Context, expense domain.Expense) (domain.Expense, domain.Result, error) {
	if err := validateQuantities(expense); err != nil {
		return domain.Expense{}, domain.Result{}, err
	}
	var updated domain.Expense
	res, err := s.run(ctx, "update_expense", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateExpense(expense.ID, func(cur *domain.Expense) error {
			workID := cur.WorkID
			*cur = expense
			cur.WorkID = workID
			if cur.Quantity == 0 {
				cur.Quantity = 1
			}
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteExpense removes an expense.
func (s *Service) DeleteExpense(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_expense", func(tx domain.Transaction) error {
		return tx.DeleteExpense(id)
	})
}

// AddMaterial records a planned material. Nothing is purchased yet; an empty
// category is looked up in the catalog taxonomy.
func (s *Service) AddMaterial(ctx context.Context, material domain.Material) (domain.Material, domain.Result, error) {
	material.PurchasedQty = 0
	if err := validateQuantities(material); err != nil {
		return domain.Material{}, domain.Result{}, err
	}
	if material.Category == "" {
		if category, ok := s.catalog.MaterialCategoryOf(material.Name); ok {
			material.Category = category
		}
	}
	var created domain.Material
	res, err := s.run(ctx, "add_material", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), material.WorkID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateMaterial(material)
		return err
	})
	return created, res, err
}

// UpdateMaterial replaces a material and reconciles its purchase expenses.
// Resetting the purchased quantity to zero deletes every expense linked to the
// material. Otherwise a positive cost records one purchase expense, fully
// paid, dated today.
func (s *Service) UpdateMaterial(ctx context.Context, material domain.Material, cost float64) (domain.Material, domain.Result, error) {
	if err := validateQuantities(material); err != nil {
		return domain.Material{}, domain.Result{}, err
	}
	if cost < 0 {
		return domain.Material{}, domain.Result{}, domain.ErrInvalidQuantity{Entity: domain.EntityMaterial, Field: "cost", Value: cost}
	}
	today := s.Today()
	var updated domain.Material
	res, err := s.run(ctx, "update_material", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateMaterial(material.ID, func(cur *domain.Material) error {
			workID := cur.WorkID
			*cur = material
			cur.WorkID = workID
			return nil
		})
		if err != nil {
			return err
		}
		if updated.PurchasedQty == 0 {
			for _, e := range tx.Snapshot().ListExpenses(updated.WorkID) {
				if e.RelatedMaterialID != updated.ID {
					continue
				}
				if err := tx.DeleteExpense(e.ID); err != nil {
					return err
				}
			}
			return nil
		}
		if cost > 0 {
			_, err = tx.CreateExpense(domain.Expense{
				WorkID:            updated.WorkID,
				Description:       purchaseDescriptionPrefix + updated.Name,
				Amount:            cost,
				PaidAmount:        cost,
				Quantity:          1,
				Category:          domain.ExpenseMaterial,
				Date:              today,
				StepID:            updated.StepID,
				RelatedMaterialID: updated.ID,
			})
		}
		return err
	})
	return updated, res, err
}

// DeleteMaterial removes a material. Its purchase expenses stay on the books.
func (s *Service) DeleteMaterial(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_material", func(tx domain.Transaction) error {
		return tx.DeleteMaterial(id)
	})
}

// AddCollaborator records a collaborator. A positive cost value books an
// unpaid LABOR expense linked back to the collaborator.
func (s *Service) AddCollaborator(ctx context.Context, collaborator domain.Collaborator) (domain.Collaborator, domain.Result, error) {
	if err := validateQuantities(collaborator); err != nil {
		return domain.Collaborator{}, domain.Result{}, err
	}
	today := s.Today()
	var created domain.Collaborator
	res, err := s.run(ctx, "add_collaborator", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), collaborator.WorkID); err != nil {
			return err
		}
		var err error
		created, err = tx.CreateCollaborator(collaborator)
		if err != nil || created.CostValue <= 0 {
			return err
		}
		_, err = tx.CreateExpense(domain.Expense{
			WorkID:         created.WorkID,
			Description:    laborDescriptionPrefix + created.Name,
			Amount:         created.CostValue,
			PaidAmount:     0,
			Quantity:       1,
			Category:       domain.ExpenseLabor,
			Date:           today,
			StepID:         created.StepID,
			CollaboratorID: created.ID,
		})
		return err
	})
	return created, res, err
}

// UpdateCollaborator replaces a collaborator's fields. Labor expenses already
// booked are left untouched.
func (s *Service) UpdateCollaborator(ctx context.Context, collaborator domain.Collaborator) (domain.Collaborator, domain.Result, error) {
	if err := validateQuantities(collaborator); err != nil {
		return domain.Collaborator{}, domain.Result{}, err
	}
	var updated domain.Collaborator
	res, err := s.run(ctx, "update_collaborator", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateCollaborator(collaborator.ID, func(cur *domain.Collaborator) error {
			workID := cur.WorkID
			*cur = collaborator
			cur.WorkID = workID
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteCollaborator removes a collaborator.
func (s *Service) DeleteCollaborator(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_collaborator", func(tx domain.Transaction) error {
		return tx.DeleteCollaborator(id)
	})
}
