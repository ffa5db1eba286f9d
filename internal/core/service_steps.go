package core

import (
	"context"
	"fmt"

	"workledger/pkg/domain"
)

// WorkProgress is a work with its derived figures, computed in the same
// transaction as the mutation that produced it.
type WorkProgress struct {
	Work  domain.Work `json:"work"`
	Stats Stats       `json:"stats"`
	Risk  RiskLevel   `json:"risk"`
}

// StepChange is the outcome of a step mutation.
type StepChange struct {
	Step     domain.Step  `json:"step"`
	Progress WorkProgress `json:"progress"`
}

func progressOf(view domain.TransactionView, work domain.Work, today domain.Date) WorkProgress {
	stats := ComputeWorkStats(work, view.ListSteps(work.ID), view.ListExpenses(work.ID), today)
	return WorkProgress{Work: work, Stats: stats, Risk: ClassifyRisk(work, stats)}
}

func normalizeStep(step *domain.Step) error {
	switch step.Status {
	case "":
		step.Status = domain.StepStatusNotStarted
	case domain.StepStatusNotStarted, domain.StepStatusInProgress, domain.StepStatusCompleted:
	default:
		return fmt.Errorf("%w: step status %q", domain.ErrInvalidInput, step.Status)
	}
	if step.Phase == "" {
		if phase, _, ok := domain.StepPhaseFromName(step.Name); ok {
			step.Phase = phase
		}
	}
	return nil
}

// AddStep persists a step. A step created already started moves its work
// straight to IN_PROGRESS; otherwise the work status is recomputed.
func (s *Service) AddStep(ctx context.Context, step domain.Step) (StepChange, domain.Result, error) {
	if err := normalizeStep(&step); err != nil {
		return StepChange{}, domain.Result{}, err
	}
	today := s.Today()
	var out StepChange
	res, err := s.run(ctx, "add_step", func(tx domain.Transaction) error {
		if _, err := requireWork(tx.Snapshot(), step.WorkID); err != nil {
			return err
		}
		created, err := tx.CreateStep(step)
		if err != nil {
			return err
		}
		var work domain.Work
		if created.Status != domain.StepStatusNotStarted {
			work, err = setWorkStatus(tx, created.WorkID, domain.WorkStatusInProgress)
		} else {
			work, err = recomputeWorkStatus(tx, created.WorkID)
		}
		if err != nil {
			return err
		}
		out = StepChange{Step: created, Progress: progressOf(tx.Snapshot(), work, today)}
		return nil
	})
	return out, res, err
}

// UpdateStep replaces a step's fields and recomputes its work's status. The
// owning work cannot change.
func (s *Service) UpdateStep(ctx context.Context, step domain.Step) (StepChange, domain.Result, error) {
	if err := normalizeStep(&step); err != nil {
		return StepChange{}, domain.Result{}, err
	}
	today := s.Today()
	var out StepChange
	res, err := s.run(ctx, "update_step", func(tx domain.Transaction) error {
		updated, err := tx.UpdateStep(step.ID, func(cur *domain.Step) error {
			workID := cur.WorkID
			*cur = step
			cur.WorkID = workID
			return nil
		})
		if err != nil {
			return err
		}
		work, err := recomputeWorkStatus(tx, updated.WorkID)
		if err != nil {
			return err
		}
		out = StepChange{Step: updated, Progress: progressOf(tx.Snapshot(), work, today)}
		return nil
	})
	return out, res, err
}

// SetStepStatus changes only the status of a step and recomputes its work's
// status. Other fields keep their committed values.
func (s *Service) SetStepStatus(ctx context.Context, id string, status domain.StepStatus) (StepChange, domain.Result, error) {
	switch status {
	case domain.StepStatusNotStarted, domain.StepStatusInProgress, domain.StepStatusCompleted:
	default:
		return StepChange{}, domain.Result{}, fmt.Errorf("%w: step status %q", domain.ErrInvalidInput, status)
	}
	today := s.Today()
	var out StepChange
	res, err := s.run(ctx, "set_step_status", func(tx domain.Transaction) error {
		updated, err := tx.UpdateStep(id, func(cur *domain.Step) error {
			cur.Status = status
			return nil
		})
		if err != nil {
			return err
		}
		work, err := recomputeWorkStatus(tx, updated.WorkID)
		if err != nil {
			return err
		}
		out = StepChange{Step: updated, Progress: progressOf(tx.Snapshot(), work, today)}
		return nil
	})
	return out, res, err
}

// DeleteStep removes a step and recomputes its work's status.
func (s *Service) DeleteStep(ctx context.Context, id string) (WorkProgress, domain.Result, error) {
	today := s.Today()
	var out WorkProgress
	res, err := s.run(ctx, "delete_step", func(tx domain.Transaction) error {
		step, ok := tx.Snapshot().FindStep(id)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityStep, ID: id}
		}
		if err := tx.DeleteStep(id); err != nil {
			return err
		}
		work, err := recomputeWorkStatus(tx, step.WorkID)
		if err != nil {
			return err
		}
		out = progressOf(tx.Snapshot(), work, today)
		return nil
	})
	return out, res, err
}
