package core

import (
	"workledger/internal/catalog"
	"workledger/pkg/domain"
)

// Standard template timing: every step lasts three days and the next one
// starts two days later, so neighbouring steps overlap by a day.
const (
	templateStepDays   = 3
	templateStepStride = 2
	fallbackStepDays   = 7
)

// GenerateSchedule builds the initial step set of a work. With useTemplate the
// catalog phases are expanded into "<Phase> - <Activity>" steps; otherwise the
// catalog's generic fallback list is laid out in consecutive weekly windows.
// The output depends only on its arguments.
func GenerateSchedule(cat *catalog.Catalog, workID string, start domain.Date, useTemplate bool) []domain.Step {
	if cat == nil {
		cat = catalog.Default()
	}
	if useTemplate {
		return templateSchedule(cat, workID, start)
	}
	return fallbackSchedule(cat, workID, start)
}

func templateSchedule(cat *catalog.Catalog, workID string, start domain.Date) []domain.Step {
	var steps []domain.Step
	offset := 0
	for _, phase := range cat.Phases {
		for _, activity := range phase.Activities {
			begin := start.AddDays(offset)
			steps = append(steps, domain.Step{
				WorkID:    workID,
				Name:      phase.Name + domain.PhaseSeparator + activity,
				Phase:     phase.Name,
				StartDate: begin,
				EndDate:   begin.AddDays(templateStepDays),
				Status:    domain.StepStatusNotStarted,
			})
			offset += templateStepStride
		}
	}
	return steps
}

func fallbackSchedule(cat *catalog.Catalog, workID string, start domain.Date) []domain.Step {
	steps := make([]domain.Step, 0, len(cat.FallbackSteps))
	for i, name := range cat.FallbackSteps {
		begin := start.AddDays(i * fallbackStepDays)
		steps = append(steps, domain.Step{
			WorkID:    workID,
			Name:      name,
			StartDate: begin,
			EndDate:   begin.AddDays(fallbackStepDays),
			Status:    domain.StepStatusNotStarted,
		})
	}
	return steps
}
