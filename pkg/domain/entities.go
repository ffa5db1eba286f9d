// Package domain defines the persistent ledger records, value types, and
// rule evaluation primitives used by workledger.
package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the ledger.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	EntityUser         EntityType = "user"
	EntityWork         EntityType = "work"
	EntityStep         EntityType = "step"
	EntityExpense      EntityType = "expense"
	EntityMaterial     EntityType = "material"
	EntityCollaborator EntityType = "collaborator"
	EntitySupplier     EntityType = "supplier"
	EntityPhoto        EntityType = "photo"
	EntityFile         EntityType = "file"
	EntityNotification EntityType = "notification"
)

// WorkStatus is the derived lifecycle state of a work.
type WorkStatus string

// Work lifecycle states. A work's status is a pure function of its steps.
const (
	WorkStatusPlanning   WorkStatus = "PLANNING"
	WorkStatusInProgress WorkStatus = "IN_PROGRESS"
	WorkStatusCompleted  WorkStatus = "COMPLETED"
)

// StepStatus enumerates the progress states of a scheduled step.
type StepStatus string

// Canonical step states.
const (
	StepStatusNotStarted StepStatus = "NOT_STARTED"
	StepStatusInProgress StepStatus = "IN_PROGRESS"
	StepStatusCompleted  StepStatus = "COMPLETED"
)

// ExpenseCategory classifies an expense.
type ExpenseCategory string

// Expense categories recognised by the ledger.
const (
	ExpenseMaterial ExpenseCategory = "MATERIAL"
	ExpenseLabor    ExpenseCategory = "LABOR"
	ExpensePermits  ExpenseCategory = "PERMITS"
	ExpenseOther    ExpenseCategory = "OTHER"
)

// CostType describes how a collaborator is paid.
type CostType string

// Collaborator payment arrangements.
const (
	CostDaily    CostType = "DIARIA"
	CostContract CostType = "EMPREITA"
	CostMonthly  CostType = "MENSAL"
)

// CollaboratorRole enumerates trades on site.
type CollaboratorRole string

// Collaborator roles.
const (
	RoleMason       CollaboratorRole = "PEDREIRO"
	RoleElectrician CollaboratorRole = "ELETRICISTA"
	RolePlumber     CollaboratorRole = "ENCANADOR"
	RolePainter     CollaboratorRole = "PINTOR"
	RoleForeman     CollaboratorRole = "MESTRE_DE_OBRAS"
	RoleEngineer    CollaboratorRole = "ENGENHEIRO"
	RoleArchitect   CollaboratorRole = "ARQUITETO"
	RoleHelper      CollaboratorRole = "AJUDANTE"
	RoleOther       CollaboratorRole = "OUTRO"
)

// PlanType is the subscription plan recorded on a user.
type PlanType string

// Subscription plans. Stored only; billing is handled elsewhere.
const (
	PlanMonthly  PlanType = "MENSAL"
	PlanSemester PlanType = "SEMESTRAL"
	PlanLifetime PlanType = "VITALICIO"
)

// NotificationKind tags the urgency of a notification.
type NotificationKind string

// Notification kinds.
const (
	NotificationInfo    NotificationKind = "INFO"
	NotificationWarning NotificationKind = "WARNING"
	NotificationDanger  NotificationKind = "DANGER"
	NotificationSuccess NotificationKind = "SUCCESS"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all ledger records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordID returns the record identifier.
func (b Base) RecordID() string { return b.ID }

// User owns works. Authentication and billing live outside the ledger.
type User struct {
	Base
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	WhatsApp              string    `json:"whatsapp,omitempty"`
	Plan                  PlanType  `json:"plan,omitempty"`
	SubscriptionExpiresAt time.Time `json:"subscriptionExpiresAt,omitempty"`
}

// Work is a renovation or construction project.
type Work struct {
	Base
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	BudgetPlanned float64    `json:"budgetPlanned"`
	Area          float64    `json:"area"`
	StartDate     Date       `json:"startDate"`
	EndDate       Date       `json:"endDate"`
	Status        WorkStatus `json:"status"`
	Notes         string     `json:"notes,omitempty"`
}

// PhaseSeparator joins phase and activity in generated step names.
const PhaseSeparator = " - "

// Step is a scheduled activity within a work.
type Step struct {
	Base
	WorkID    string     `json:"workId"`
	Name      string     `json:"name"`
	Phase     string     `json:"phase,omitempty"`
	StartDate Date       `json:"startDate"`
	EndDate   Date       `json:"endDate"`
	Status    StepStatus `json:"status"`
}

// IsDelayed reports whether the step is unfinished and its end date has passed.
// A step ending today is not delayed, nor is one without an end date.
func (s Step) IsDelayed(today Date) bool {
	return s.Status != StepStatusCompleted && !s.EndDate.IsZero() && s.EndDate.Before(today)
}

// StepPhaseFromName splits a "<Phase> - <Activity>" name. ok is false when the
// name carries no separator.
func StepPhaseFromName(name string) (phase, activity string, ok bool) {
	idx := strings.Index(name, PhaseSeparator)
	if idx < 0 {
		return "", name, false
	}
	return name[:idx], name[idx+len(PhaseSeparator):], true
}

// Activity returns the step name without its phase prefix.
func (s Step) Activity() string {
	if s.Phase != "" && strings.HasPrefix(s.Name, s.Phase+PhaseSeparator) {
		return strings.TrimPrefix(s.Name, s.Phase+PhaseSeparator)
	}
	return s.Name
}

// Expense records a committed cost (Amount) and the cash actually disbursed (PaidAmount).
type Expense struct {
	Base
	WorkID            string          `json:"workId"`
	Description       string          `json:"description"`
	Amount            float64         `json:"amount"`
	PaidAmount        float64         `json:"paidAmount"`
	Quantity          float64         `json:"quantity"`
	Category          ExpenseCategory `json:"category"`
	Date              Date            `json:"date"`
	StepID            string          `json:"stepId,omitempty"`
	RelatedMaterialID string          `json:"relatedMaterialId,omitempty"`
	CollaboratorID    string          `json:"collaboratorId,omitempty"`
}

// UnmarshalJSON decodes a stored expense, defaulting fields absent from
// older documents: a missing paidAmount means the full amount was paid and a
// missing quantity means one unit. New expenses start with nothing paid; the
// HTTP layer decodes its own request body for them.
func (e *Expense) UnmarshalJSON(data []byte) error {
	type expenseAlias Expense
	aux := struct {
		expenseAlias
		PaidAmount *float64 `json:"paidAmount"`
		Quantity   *float64 `json:"quantity"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Expense(aux.expenseAlias)
	if aux.PaidAmount != nil {
		e.PaidAmount = *aux.PaidAmount
	} else {
		e.PaidAmount = e.Amount
	}
	if aux.Quantity != nil {
		e.Quantity = *aux.Quantity
	} else {
		e.Quantity = 1
	}
	return nil
}

// Material tracks planned versus purchased quantities of a physical input.
type Material struct {
	Base
	WorkID       string  `json:"workId"`
	Name         string  `json:"name"`
	Category     string  `json:"category,omitempty"`
	PlannedQty   float64 `json:"plannedQty"`
	PurchasedQty float64 `json:"purchasedQty"`
	Unit         string  `json:"unit"`
	StepID       string  `json:"stepId,omitempty"`
}

// Collaborator is a worker or professional engaged on a work.
type Collaborator struct {
	Base
	WorkID    string           `json:"workId"`
	Name      string           `json:"name"`
	Role      CollaboratorRole `json:"role"`
	Phone     string           `json:"phone,omitempty"`
	CostType  CostType         `json:"costType"`
	CostValue float64          `json:"costValue"`
	StepID    string           `json:"stepId,omitempty"`
}

// Supplier is a vendor contact attached to a work.
type Supplier struct {
	Base
	WorkID   string `json:"workId"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Photo is photo metadata; the binary lives outside the ledger.
type Photo struct {
	Base
	WorkID      string `json:"workId"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Date        Date   `json:"date"`
	Type        string `json:"type,omitempty"`
}

// File is attachment metadata; the binary lives outside the ledger.
type File struct {
	Base
	WorkID   string `json:"workId"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url"`
	Type     string `json:"type,omitempty"`
	Date     Date   `json:"date"`
}

// Notification is a message addressed to a user.
type Notification struct {
	Base
	UserID  string           `json:"userId"`
	WorkID  string           `json:"workId,omitempty"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Kind    NotificationKind `json:"type"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Supported mutation actions.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from other into r.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking reports whether any violation blocks the commit.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityWarn {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "transaction blocked by rules: " + v.Message
		}
	}
	return "transaction blocked by rules"
}

// BaseRef exposes the embedded base fields to persistence implementations.
func (b *Base) BaseRef() *Base { return b }
