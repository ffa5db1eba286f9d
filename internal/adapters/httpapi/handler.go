// Package httpapi exposes the ledger service over a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workledger/internal/core"
	"workledger/pkg/domain"
)

// Handler serves the /v1 routes.
type Handler struct {
	svc    *core.Service
	logger core.Logger
}

// NewHandler constructs a handler over svc. A nil logger discards output.
func NewHandler(svc *core.Service, logger core.Logger) *Handler {
	if logger == nil {
		logger = core.NewZapLogger(nil)
	}
	return &Handler{svc: svc, logger: logger}
}

// mutationResponse carries a mutation outcome with any non-blocking rule
// warnings raised while committing it.
type mutationResponse struct {
	Data     any                `json:"data"`
	Warnings []domain.Violation `json:"warnings,omitempty"`
}

func (h *Handler) committed(c *gin.Context, status int, data any, res domain.Result) {
	c.JSON(status, mutationResponse{Data: data, Warnings: res.Warnings()})
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")

	v1.GET("/users/:userId/works", h.listWorks)
	v1.GET("/users/:userId/portfolio", h.portfolio)

	v1.POST("/works", h.createWork)
	v1.GET("/works/:id", h.getWork)
	v1.PUT("/works/:id", h.updateWork)
	v1.DELETE("/works/:id", h.deleteWork)
	v1.GET("/works/:id/stats", h.workStats)
	v1.GET("/works/:id/phases", h.workPhases)

	v1.GET("/works/:id/steps", h.listSteps)
	v1.POST("/works/:id/steps", h.addStep)
	v1.PUT("/steps/:id", h.updateStep)
	v1.DELETE("/steps/:id", h.deleteStep)

	v1.GET("/works/:id/expenses", h.listExpenses)
	v1.POST("/works/:id/expenses", h.addExpense)
	v1.PUT("/expenses/:id", h.updateExpense)
	v1.DELETE("/expenses/:id", h.deleteExpense)

	v1.GET("/works/:id/materials", h.listMaterials)
	v1.POST("/works/:id/materials", h.addMaterial)
	v1.PUT("/materials/:id", h.updateMaterial)
	v1.DELETE("/materials/:id", h.deleteMaterial)

	v1.GET("/works/:id/collaborators", h.listCollaborators)
	v1.POST("/works/:id/collaborators", h.addCollaborator)
	v1.DELETE("/collaborators/:id", h.deleteCollaborator)
}

func (h *Handler) listWorks(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.GetWorks(c.Request.Context(), c.Param("userId"))))
}

func (h *Handler) portfolio(c *gin.Context) {
	summary := h.svc.Portfolio(c.Request.Context(), c.Param("userId"))
	summary.Works = nonNil(summary.Works)
	c.JSON(http.StatusOK, summary)
}

type createWorkRequest struct {
	domain.Work
	UseTemplate bool `json:"useTemplate"`
}

func (h *Handler) createWork(c *gin.Context) {
	var req createWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	work, res, err := h.svc.CreateWork(c.Request.Context(), req.Work, req.UseTemplate)
	if err != nil {
		h.fail(c, "create_work", err)
		return
	}
	h.committed(c, http.StatusCreated, work, res)
}

func (h *Handler) getWork(c *gin.Context) {
	id := c.Param("id")
	progress, ok := h.svc.WorkProgress(c.Request.Context(), id)
	if !ok {
		notFound(c, domain.EntityWork, id)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handler) updateWork(c *gin.Context) {
	var body domain.Work
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	work, res, err := h.svc.UpdateWork(c.Request.Context(), c.Param("id"), func(w *domain.Work) error {
		base := w.Base
		*w = body
		w.Base = base
		return nil
	})
	if err != nil {
		h.fail(c, "update_work", err)
		return
	}
	h.committed(c, http.StatusOK, work, res)
}

func (h *Handler) deleteWork(c *gin.Context) {
	if _, err := h.svc.DeleteWork(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete_work", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) workStats(c *gin.Context) {
	id := c.Param("id")
	progress, ok := h.svc.WorkProgress(c.Request.Context(), id)
	if !ok {
		notFound(c, domain.EntityWork, id)
		return
	}
	c.JSON(http.StatusOK, progress.Stats)
}

func (h *Handler) workPhases(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.svc.GetWorkByID(c.Request.Context(), id); !ok {
		notFound(c, domain.EntityWork, id)
		return
	}
	c.JSON(http.StatusOK, nonNil(h.svc.PhaseGroups(c.Request.Context(), id)))
}

func (h *Handler) listSteps(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.GetSteps(c.Request.Context(), c.Param("id"))))
}

func (h *Handler) addStep(c *gin.Context) {
	var step domain.Step
	if err := c.ShouldBindJSON(&step); err != nil {
		badRequest(c, err)
		return
	}
	step.WorkID = c.Param("id")
	out, res, err := h.svc.AddStep(c.Request.Context(), step)
	if err != nil {
		h.fail(c, "add_step", err)
		return
	}
	h.committed(c, http.StatusCreated, out, res)
}

func (h *Handler) updateStep(c *gin.Context) {
	var step domain.Step
	if err := c.ShouldBindJSON(&step); err != nil {
		badRequest(c, err)
		return
	}
	step.ID = c.Param("id")
	out, res, err := h.svc.UpdateStep(c.Request.Context(), step)
	if err != nil {
		h.fail(c, "update_step", err)
		return
	}
	h.committed(c, http.StatusOK, out, res)
}

func (h *Handler) deleteStep(c *gin.Context) {
	progress, res, err := h.svc.DeleteStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "delete_step", err)
		return
	}
	h.committed(c, http.StatusOK, progress, res)
}

func (h *Handler) listExpenses(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.GetExpenses(c.Request.Context(), c.Param("id"))))
}

// expenseRequest is the expense body accepted over HTTP. Unlike stored
// documents, a request without paidAmount records nothing paid yet.
type expenseRequest struct {
	Description       string                 `json:"description"`
	Amount            float64                `json:"amount"`
	PaidAmount        *float64               `json:"paidAmount"`
	Quantity          float64                `json:"quantity"`
	Category          domain.ExpenseCategory `json:"category"`
	Date              domain.Date            `json:"date"`
	StepID            string                 `json:"stepId"`
	RelatedMaterialID string                 `json:"relatedMaterialId"`
	CollaboratorID    string                 `json:"collaboratorId"`
}

func (r expenseRequest) expense() domain.Expense {
	e := domain.Expense{
		Description:       r.Description,
		Amount:            r.Amount,
		Quantity:          r.Quantity,
		Category:          r.Category,
		Date:              r.Date,
		StepID:            r.StepID,
		RelatedMaterialID: r.RelatedMaterialID,
		CollaboratorID:    r.CollaboratorID,
	}
	if r.PaidAmount != nil {
		e.PaidAmount = *r.PaidAmount
	}
	return e
}

func (h *Handler) addExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	expense := req.expense()
	expense.WorkID = c.Param("id")
	created, res, err := h.svc.AddExpense(c.Request.Context(), expense)
	if err != nil {
		h.fail(c, "add_expense", err)
		return
	}
	h.committed(c, http.StatusCreated, created, res)
}

func (h *Handler) updateExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	expense := req.expense()
	expense.ID = c.Param("id")
	updated, res, err := h.svc.UpdateExpense(c.Request.Context(), expense)
	if err != nil {
		h.fail(c, "update_expense", err)
		return
	}
	h.committed(c, http.StatusOK, updated, res)
}

func (h *Handler) deleteExpense(c *gin.Context) {
	if _, err := h.svc.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete_expense", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listMaterials(c *gin.Context) {
	materials := h.svc.GetMaterials(c.Request.Context(), c.Param("id"))
	out := make([]materialView, 0, len(materials))
	for _, m := range materials {
		out = append(out, materialView{Material: m, Status: core.MaterialStatusOf(m)})
	}
	c.JSON(http.StatusOK, out)
}

type materialView struct {
	domain.Material
	Status core.MaterialStatus `json:"status"`
}

func (h *Handler) addMaterial(c *gin.Context) {
	var material domain.Material
	if err := c.ShouldBindJSON(&material); err != nil {
		badRequest(c, err)
		return
	}
	material.WorkID = c.Param("id")
	created, res, err := h.svc.AddMaterial(c.Request.Context(), material)
	if err != nil {
		h.fail(c, "add_material", err)
		return
	}
	h.committed(c, http.StatusCreated, created, res)
}

// updateMaterialRequest carries the purchase cost alongside the material.
type updateMaterialRequest struct {
	domain.Material
	Cost float64 `json:"cost"`
}

func (h *Handler) updateMaterial(c *gin.Context) {
	var req updateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Material.ID = c.Param("id")
	updated, res, err := h.svc.UpdateMaterial(c.Request.Context(), req.Material, req.Cost)
	if err != nil {
		h.fail(c, "update_material", err)
		return
	}
	h.committed(c, http.StatusOK, updated, res)
}

func (h *Handler) deleteMaterial(c *gin.Context) {
	if _, err := h.svc.DeleteMaterial(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete_material", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listCollaborators(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.svc.GetCollaborators(c.Request.Context(), c.Param("id"))))
}

func (h *Handler) addCollaborator(c *gin.Context) {
	var collaborator domain.Collaborator
	if err := c.ShouldBindJSON(&collaborator); err != nil {
		badRequest(c, err)
		return
	}
	collaborator.WorkID = c.Param("id")
	created, res, err := h.svc.AddCollaborator(c.Request.Context(), collaborator)
	if err != nil {
		h.fail(c, "add_collaborator", err)
		return
	}
	h.committed(c, http.StatusCreated, created, res)
}

func (h *Handler) deleteCollaborator(c *gin.Context) {
	if _, err := h.svc.DeleteCollaborator(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete_collaborator", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// nonNil renders empty lists as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
