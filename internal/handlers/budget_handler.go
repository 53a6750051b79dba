package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/middleware"
	"cashtrackr/internal/services"
)

// BudgetHandler handles budget-related HTTP requests.
// Routes under /budgets/:budgetId run behind the ownership middlewares, so
// the budget is already loaded and owned by the caller.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// BudgetRequest represents the request body for creating or replacing a budget.
type BudgetRequest struct {
	Name   string   `json:"name" binding:"required,max=100" msg:"Nombre del presupuesto es obligatorio" msg_max:"El nombre no puede superar los 100 caracteres"`
	Amount *float64 `json:"amount" binding:"required,money" msg_required:"Monto del presupuesto es obligatorio" msg_type:"Cantidad no es un número válido" msg:"El monto debe ser un número mayor que cero"`
}

// GetBudgets lists the caller's budgets.
// @Summary     List budgets
// @Description Budgets of the authenticated user, newest first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Budget
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.GetUserBudgets(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budgets)
}

// CreateBudget creates a budget for the caller.
// @Summary     Create a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BudgetRequest true "Budget data"
// @Success     201 {string} string "Presupuesto creado exitosamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), userID, req.Name, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.ActionCreateBudget, services.ResourceBudget, budget.ID, c.ClientIP(), map[string]interface{}{
		"name":   budget.Name,
		"amount": budget.Amount,
	})

	c.JSON(http.StatusCreated, "Presupuesto creado exitosamente")
}

// GetBudget returns a budget with its expenses.
// @Summary     Get a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId path int true "Budget ID"
// @Success     200 {object} models.Budget
// @Failure     400 {object} ValidationErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{budgetId} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	current, ok := middleware.CurrentBudget(c)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	budget, err := h.budgetService.GetBudgetWithExpenses(c.Request.Context(), current.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// UpdateBudget replaces the name and amount of a budget.
// @Summary     Update a budget
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId path int           true "Budget ID"
// @Param       request  body BudgetRequest true "Budget data"
// @Success     200 {string} string "Presupuesto actualizado exitosamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{budgetId} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	budget, ok := middleware.CurrentBudget(c)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	var req BudgetRequest
	if !bindJSON(c, &req) {
		return
	}

	before := map[string]interface{}{"name": budget.Name, "amount": budget.Amount}
	updated, err := h.budgetService.UpdateBudget(c.Request.Context(), budget, req.Name, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(updated.UserID, services.ActionUpdateBudget, services.ResourceBudget, updated.ID, c.ClientIP(), map[string]interface{}{
		"before": before,
		"after":  map[string]interface{}{"name": updated.Name, "amount": updated.Amount},
	})

	c.JSON(http.StatusOK, "Presupuesto actualizado exitosamente")
}

// DeleteBudget deletes a budget and its expenses.
// @Summary     Delete a budget
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId path int true "Budget ID"
// @Success     200 {string} string "Presupuesto eliminado exitosamente"
// @Failure     400 {object} ValidationErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{budgetId} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	budget, ok := middleware.CurrentBudget(c)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	if err := h.budgetService.DeleteBudget(c.Request.Context(), budget); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionDeleteBudget, services.ResourceBudget, budget.ID, c.ClientIP(), map[string]interface{}{
		"name": budget.Name,
	})

	c.JSON(http.StatusOK, "Presupuesto eliminado exitosamente")
}
