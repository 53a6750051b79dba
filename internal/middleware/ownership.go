package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/models"
	"cashtrackr/internal/validator"
)

// Path parameters guarded by the ownership chain.
const (
	BudgetIDParam  = "budgetId"
	ExpenseIDParam = "expenseId"
)

const invalidIDMessage = "ID no válido"

// BudgetLoader finds a budget by id regardless of owner.
type BudgetLoader interface {
	GetBudgetByID(ctx context.Context, budgetID uint) (*models.Budget, error)
}

// ExpenseLoader finds an expense inside a budget.
type ExpenseLoader interface {
	GetExpenseByID(ctx context.Context, budgetID, expenseID uint) (*models.Expense, error)
}

// ValidateBudgetID rejects a :budgetId that is not a positive integer.
func ValidateBudgetID() gin.HandlerFunc {
	return validateIDParam(BudgetIDParam)
}

// ValidateExpenseID rejects an :expenseId that is not a positive integer.
func ValidateExpenseID() gin.HandlerFunc {
	return validateIDParam(ExpenseIDParam)
}

func validateIDParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ParseID(c.Param(param)); !ok {
			abortWithFieldErrors(c, validator.NewFieldError(param, validator.LocationParams, invalidIDMessage, c.Param(param)))
			return
		}
		c.Next()
	}
}

// idBits bounds ids to the positive BIGINT range of the id columns.
const idBits = 63

// ParseID parses a positive decimal id.
func ParseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, idBits)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// BudgetExists loads the budget named by :budgetId into the context.
func BudgetExists(budgets BudgetLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := ParseID(c.Param(BudgetIDParam))
		budget, err := budgets.GetBudgetByID(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(BudgetKey, budget)
		c.Next()
	}
}

// HasAccess stops requests for a budget owned by another account. It runs
// after BudgetExists, so a missing budget is reported before a foreign one.
func HasAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		budget, ok := CurrentBudget(c)
		userID, hasUser := c.Get(UserIDKey)
		if !ok || !hasUser {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !budget.OwnedBy(userID.(uint)) {
			abortWithError(c, apperrors.ErrForbiddenAction)
			return
		}
		c.Next()
	}
}

// ExpenseExists loads the expense named by :expenseId from the budget
// already in the context.
func ExpenseExists(expenses ExpenseLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		budget, ok := CurrentBudget(c)
		if !ok {
			abortWithError(c, apperrors.ErrBudgetNotFound)
			return
		}
		id, _ := ParseID(c.Param(ExpenseIDParam))
		expense, err := expenses.GetExpenseByID(c.Request.Context(), budget.ID, id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(ExpenseKey, expense)
		c.Next()
	}
}

// CurrentBudget returns the budget set by BudgetExists.
func CurrentBudget(c *gin.Context) (*models.Budget, bool) {
	v, ok := c.Get(BudgetKey)
	if !ok {
		return nil, false
	}
	budget, ok := v.(*models.Budget)
	return budget, ok
}

// CurrentExpense returns the expense set by ExpenseExists.
func CurrentExpense(c *gin.Context) (*models.Expense, bool) {
	v, ok := c.Get(ExpenseKey)
	if !ok {
		return nil, false
	}
	expense, ok := v.(*models.Expense)
	return expense, ok
}
