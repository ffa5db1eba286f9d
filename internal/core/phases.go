package core

import (
	"sort"

	"workledger/internal/catalog"
	"workledger/pkg/domain"
)

// PhaseGroup is a set of steps sharing a phase, with its derived progress.
type PhaseGroup struct {
	Phase     string        `json:"phase"`
	Steps     []domain.Step `json:"steps"`
	Total     int           `json:"total"`
	Completed int           `json:"completed"`
	Progress  int           `json:"progress"`
	Delayed   bool          `json:"delayed"`
}

// PhaseOf returns the grouping key of a step: its phase attribute, the name
// prefix for legacy records, or "Personalizadas".
func PhaseOf(s domain.Step) string {
	if s.Phase != "" {
		return s.Phase
	}
	if phase, _, ok := domain.StepPhaseFromName(s.Name); ok {
		return phase
	}
	return catalog.CustomPhase
}

// GroupByPhase groups steps by phase in catalog order. Phases unknown to the
// catalog follow in order of first appearance, then "Personalizadas", then
// "Geral". Steps keep their input order within a group.
func GroupByPhase(cat *catalog.Catalog, steps []domain.Step, today domain.Date) []PhaseGroup {
	if cat == nil {
		cat = catalog.Default()
	}
	index := make(map[string]int)
	var groups []PhaseGroup
	for _, s := range steps {
		name := PhaseOf(s)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, PhaseGroup{Phase: name})
		}
		g := &groups[i]
		g.Steps = append(g.Steps, s)
		g.Total++
		if s.Status == domain.StepStatusCompleted {
			g.Completed++
		}
		if s.IsDelayed(today) {
			g.Delayed = true
		}
	}
	for i := range groups {
		groups[i].Progress = percent(groups[i].Completed, groups[i].Total)
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return phaseRank(cat, groups[a].Phase).less(phaseRank(cat, groups[b].Phase))
	})
	return groups
}

type rank struct {
	index  int
	custom bool
}

func (r rank) less(o rank) bool {
	if r.index != o.index {
		return r.index < o.index
	}
	return !r.custom && o.custom
}

func phaseRank(cat *catalog.Catalog, phase string) rank {
	return rank{index: cat.PhaseIndex(phase), custom: phase == catalog.CustomPhase}
}
