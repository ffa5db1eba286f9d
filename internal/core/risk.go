package core

import "workledger/pkg/domain"

// RiskLevel is the derived health rating of a work.
type RiskLevel string

// Risk levels in increasing severity.
const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

const (
	highBudgetUsage   = 1.0
	mediumBudgetUsage = 0.8
	highDelayedSteps  = 3
)

// ClassifyRisk rates a work from its budget usage and delayed step count.
func ClassifyRisk(work domain.Work, stats Stats) RiskLevel {
	usage := BudgetUsage(work.BudgetPlanned, stats.TotalSpent)
	switch {
	case usage > highBudgetUsage || stats.DelayedSteps > highDelayedSteps:
		return RiskHigh
	case usage > mediumBudgetUsage || stats.DelayedSteps > 0:
		return RiskMedium
	default:
		return RiskLow
	}
}

// CombineRisk returns the most severe level, LOW when none are given.
func CombineRisk(levels ...RiskLevel) RiskLevel {
	out := RiskLow
	for _, l := range levels {
		if l.severity() > out.severity() {
			out = l
		}
	}
	return out
}

func (r RiskLevel) severity() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskMedium:
		return 1
	default:
		return 0
	}
}
