package core

import "workledger/pkg/domain"

// MaterialStatus is the purchase badge of a material.
type MaterialStatus string

// Material purchase badges.
const (
	MaterialMissing  MaterialStatus = "FALTANDO"
	MaterialComplete MaterialStatus = "COMPLETO"
	MaterialPartial  MaterialStatus = "PARCIAL"
)

// MaterialStatusOf reports whether a material was not bought, fully bought or
// partially bought. Over-purchase counts as complete.
func MaterialStatusOf(m domain.Material) MaterialStatus {
	switch {
	case m.PurchasedQty <= 0:
		return MaterialMissing
	case m.PurchasedQty >= m.PlannedQty:
		return MaterialComplete
	default:
		return MaterialPartial
	}
}

// PaymentStatus is the payment badge of an expense.
type PaymentStatus string

// Expense payment badges.
const (
	PaymentPaid    PaymentStatus = "PAGO"
	PaymentPartial PaymentStatus = "PARCIAL"
	PaymentPending PaymentStatus = "PENDENTE"
)

// PaymentStatusOf compares paid and committed amounts. Paid amounts above the
// commitment are reported as paid, not clamped. A zero commitment has nothing
// left to pay and is reported as paid even when nothing was paid.
func PaymentStatusOf(e domain.Expense) PaymentStatus {
	switch {
	case e.PaidAmount >= e.Amount:
		return PaymentPaid
	case e.PaidAmount > 0:
		return PaymentPartial
	default:
		return PaymentPending
	}
}

// PaymentRatio is paid/amount as a percentage, unclamped; 0 when amount is 0.
func PaymentRatio(e domain.Expense) int {
	if e.Amount <= 0 {
		return 0
	}
	return int(e.PaidAmount / e.Amount * 100)
}
