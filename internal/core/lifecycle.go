package core

import "workledger/pkg/domain"

// DeriveWorkStatus maps a step set to the work lifecycle state. There is no
// ratchet: reopening a step moves a completed work back to IN_PROGRESS.
func DeriveWorkStatus(steps []domain.Step) domain.WorkStatus {
	if len(steps) == 0 {
		return domain.WorkStatusPlanning
	}
	allNotStarted, allCompleted := true, true
	for _, s := range steps {
		if s.Status != domain.StepStatusNotStarted {
			allNotStarted = false
		}
		if s.Status != domain.StepStatusCompleted {
			allCompleted = false
		}
	}
	switch {
	case allNotStarted:
		return domain.WorkStatusPlanning
	case allCompleted:
		return domain.WorkStatusCompleted
	default:
		return domain.WorkStatusInProgress
	}
}

// recomputeWorkStatus refreshes the stored status of workID from its current
// steps inside tx.
func recomputeWorkStatus(tx domain.Transaction, workID string) (domain.Work, error) {
	status := DeriveWorkStatus(tx.Snapshot().ListSteps(workID))
	return setWorkStatus(tx, workID, status)
}

func setWorkStatus(tx domain.Transaction, workID string, status domain.WorkStatus) (domain.Work, error) {
	work, ok := tx.Snapshot().FindWork(workID)
	if !ok {
		return domain.Work{}, domain.ErrNotFound{Entity: domain.EntityWork, ID: workID}
	}
	if work.Status == status {
		return work, nil
	}
	return tx.UpdateWork(workID, func(w *domain.Work) error {
		w.Status = status
		return nil
	})
}
