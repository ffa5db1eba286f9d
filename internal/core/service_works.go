package core

import (
	"context"

	"workledger/pkg/domain"
)

// CreateWork persists a work together with its generated schedule. A zero
// start date means today.
func (s *Service) CreateWork(ctx context.Context, work domain.Work, useTemplate bool) (domain.Work, domain.Result, error) {
	if err := validateQuantities(work); err != nil {
		return domain.Work{}, domain.Result{}, err
	}
	if work.StartDate.IsZero() {
		work.StartDate = s.Today()
	}
	work.Status = domain.WorkStatusPlanning
	var created domain.Work
	res, err := s.run(ctx, "create_work", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateWork(work)
		if err != nil {
			return err
		}
		for _, step := range GenerateSchedule(s.catalog, created.ID, created.StartDate, useTemplate) {
			if _, err := tx.CreateStep(step); err != nil {
				return err
			}
		}
		created, err = recomputeWorkStatus(tx, created.ID)
		return err
	})
	return created, res, err
}

// UpdateWork applies mutator to a work. The lifecycle status is derived state
// and any change the mutator makes to it is discarded.
func (s *Service) UpdateWork(ctx context.Context, id string, mutator func(*domain.Work) error) (domain.Work, domain.Result, error) {
	var updated domain.Work
	res, err := s.run(ctx, "update_work", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateWork(id, func(w *domain.Work) error {
			status, owner := w.Status, w.UserID
			if mutator != nil {
				if err := mutator(w); err != nil {
					return err
				}
			}
			w.Status = status
			if w.UserID == "" {
				w.UserID = owner
			}
			return validateQuantities(*w)
		})
		return err
	})
	return updated, res, err
}

// DeleteWork removes a work and every record that belongs to it.
func (s *Service) DeleteWork(ctx context.Context, id string) (domain.Result, error) {
	return s.run(ctx, "delete_work", func(tx domain.Transaction) error {
		view := tx.Snapshot()
		work, err := requireWork(view, id)
		if err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntityStep, view.ListSteps(id), tx.DeleteStep); err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntityExpense, view.ListExpenses(id), tx.DeleteExpense); err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntityMaterial, view.ListMaterials(id), tx.DeleteMaterial); err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntityPhoto, view.ListPhotos(id), tx.DeletePhoto); err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntityFile, view.ListFiles(id), tx.DeleteFile); err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntityCollaborator, view.ListCollaborators(id), tx.DeleteCollaborator); err != nil {
			return err
		}
		if err := cascadeDelete(id, domain.EntitySupplier, view.ListSuppliers(id), tx.DeleteSupplier); err != nil {
			return err
		}
		var notes []domain.Notification
		for _, n := range view.ListNotifications(work.UserID) {
			if n.WorkID == id {
				notes = append(notes, n)
			}
		}
		if err := cascadeDelete(id, domain.EntityNotification, notes, tx.DeleteNotification); err != nil {
			return err
		}
		return tx.DeleteWork(id)
	})
}

func cascadeDelete[T any](workID string, entity domain.EntityType, records []T, del func(string) error) error {
	for _, r := range records {
		id, _ := domain.RecordRef(r)
		if err := del(id); err != nil {
			return domain.ErrCascadeFailure{WorkID: workID, Entity: entity, Err: err}
		}
	}
	return nil
}
