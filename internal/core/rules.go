package core

import "workledger/pkg/domain"

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *domain.RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewQuantityGuardRule())
	engine.Register(NewBudgetExceededRule())
	return engine
}
