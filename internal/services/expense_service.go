package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/models"
	"cashtrackr/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// GetBudgetExpenses returns a page of a budget's expenses, oldest first.
func (s *expenseService) GetBudgetExpenses(ctx context.Context, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	// A new session per chain keeps Count from leaking into Find.
	base := s.db.WithContext(ctx).Model(&models.Expense{}).Where("budget_id = ?", budgetID).Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExpenseLoad, err)
	}

	var expenses []models.Expense
	if err := base.
		Scopes(pagination.Paginate(page)).
		Order("created_at ASC, id ASC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExpenseLoad, err)
	}

	resp := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &resp, nil
}

// GetExpenseByID loads an expense that belongs to budgetID.
func (s *expenseService) GetExpenseByID(ctx context.Context, budgetID, expenseID uint) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.WithContext(ctx).
		Where("id = ? AND budget_id = ?", expenseID, budgetID).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrExpenseLoad, err)
	}
	return &expense, nil
}

// CreateExpense adds an expense to budgetID.
func (s *expenseService) CreateExpense(ctx context.Context, budgetID uint, name string, amount float64) (*models.Expense, error) {
	expense := &models.Expense{
		BudgetID: budgetID,
		Name:     name,
		Amount:   amount,
	}
	if err := s.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrExpenseCreate, err)
	}
	return expense, nil
}

// UpdateExpense replaces the name and amount of an expense.
func (s *expenseService) UpdateExpense(ctx context.Context, expense *models.Expense, name string, amount float64) (*models.Expense, error) {
	if err := s.db.WithContext(ctx).Model(expense).Updates(map[string]interface{}{
		"name":   name,
		"amount": amount,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.Name = name
	expense.Amount = amount
	return expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *expenseService) DeleteExpense(ctx context.Context, expense *models.Expense) error {
	if err := s.db.WithContext(ctx).Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
