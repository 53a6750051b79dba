package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/middleware"
	"cashtrackr/internal/pagination"
	"cashtrackr/internal/services"
)

// ExpenseHandler handles expense-related HTTP requests inside an authorized budget.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest represents the request body for creating or replacing an expense.
type ExpenseRequest struct {
	Name   string   `json:"name" binding:"required,max=100" msg:"Nombre del gasto es obligatorio" msg_max:"El nombre no puede superar los 100 caracteres"`
	Amount *float64 `json:"amount" binding:"required,money" msg_required:"Monto del gasto es obligatorio" msg_type:"Cantidad no es un número válido" msg:"El monto debe ser un número mayor que cero"`
}

// GetExpenses lists a page of the budget's expenses.
// @Summary     List expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path  int true  "Budget ID"
// @Param       page      query int false "Page number" minimum(1)
// @Param       page_size query int false "Page size"   minimum(1) maximum(100)
// @Success     200 {object} pagination.PageResponse[models.Expense]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Router      /budgets/{budgetId}/expenses [get]
func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	budget, ok := middleware.CurrentBudget(c)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	result, err := h.expenseService.GetBudgetExpenses(c.Request.Context(), budget.ID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateExpense adds an expense to the budget.
// @Summary     Create an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId path int            true "Budget ID"
// @Param       request  body ExpenseRequest true "Expense data"
// @Success     201 {string} string "Gasto creado con éxito"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{budgetId}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	budget, ok := middleware.CurrentBudget(c)
	if !ok {
		respondWithError(c, apperrors.ErrBudgetNotFound)
		return
	}

	var req ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), budget.ID, req.Name, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionCreateExpense, services.ResourceExpense, expense.ID, c.ClientIP(), map[string]interface{}{
		"budget_id": budget.ID,
		"name":      expense.Name,
		"amount":    expense.Amount,
	})

	c.JSON(http.StatusCreated, "Gasto creado con éxito")
}

// GetExpense returns one expense.
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path int true "Budget ID"
// @Param       expenseId path int true "Expense ID"
// @Success     200 {object} models.Expense
// @Failure     400 {object} ValidationErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{budgetId}/expenses/{expenseId} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, ok := middleware.CurrentExpense(c)
	if !ok {
		respondWithError(c, apperrors.ErrExpenseNotFound)
		return
	}
	c.JSON(http.StatusOK, expense)
}

// UpdateExpense replaces the name and amount of an expense.
// @Summary     Update an expense
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path int            true "Budget ID"
// @Param       expenseId path int            true "Expense ID"
// @Param       request   body ExpenseRequest true "Expense data"
// @Success     200 {string} string "Gasto actualizado con éxito"
// @Failure     400 {object} ValidationErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{budgetId}/expenses/{expenseId} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	budget, _ := middleware.CurrentBudget(c)
	expense, ok := middleware.CurrentExpense(c)
	if !ok || budget == nil {
		respondWithError(c, apperrors.ErrExpenseNotFound)
		return
	}

	var req ExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	before := map[string]interface{}{"name": expense.Name, "amount": expense.Amount}
	updated, err := h.expenseService.UpdateExpense(c.Request.Context(), expense, req.Name, *req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionUpdateExpense, services.ResourceExpense, updated.ID, c.ClientIP(), map[string]interface{}{
		"before": before,
		"after":  map[string]interface{}{"name": updated.Name, "amount": updated.Amount},
	})

	c.JSON(http.StatusOK, "Gasto actualizado con éxito")
}

// DeleteExpense removes an expense.
// @Summary     Delete an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       budgetId  path int true "Budget ID"
// @Param       expenseId path int true "Expense ID"
// @Success     200 {string} string "Gasto eliminado con éxito"
// @Failure     400 {object} ValidationErrorResponse "Invalid id"
// @Failure     401 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /budgets/{budgetId}/expenses/{expenseId} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	budget, _ := middleware.CurrentBudget(c)
	expense, ok := middleware.CurrentExpense(c)
	if !ok || budget == nil {
		respondWithError(c, apperrors.ErrExpenseNotFound)
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), expense); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(budget.UserID, services.ActionDeleteExpense, services.ResourceExpense, expense.ID, c.ClientIP(), map[string]interface{}{
		"budget_id": budget.ID,
		"name":      expense.Name,
	})

	c.JSON(http.StatusOK, "Gasto eliminado con éxito")
}
