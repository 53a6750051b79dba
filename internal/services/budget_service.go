package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/models"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetUserBudgets returns the user's budgets, newest first.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID uint) ([]models.Budget, error) {
	budgets := []models.Budget{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBudgetList, err)
	}
	return budgets, nil
}

// GetBudgetByID loads a budget regardless of owner.
func (s *budgetService) GetBudgetByID(ctx context.Context, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.WithContext(ctx).First(&budget, budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrBudgetLoad, err)
	}
	return &budget, nil
}

// GetBudgetWithExpenses loads a budget and its expenses, oldest expense first.
func (s *budgetService) GetBudgetWithExpenses(ctx context.Context, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.WithContext(ctx).
		Preload("Expenses", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&budget, budgetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrBudgetLoad, err)
	}
	if budget.Expenses == nil {
		budget.Expenses = []models.Expense{}
	}
	return &budget, nil
}

// CreateBudget creates a new budget owned by userID.
func (s *budgetService) CreateBudget(ctx context.Context, userID uint, name string, amount float64) (*models.Budget, error) {
	budget := &models.Budget{
		UserID: userID,
		Name:   name,
		Amount: amount,
	}
	if err := s.db.WithContext(ctx).Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBudgetCreate, err)
	}
	return budget, nil
}

// UpdateBudget replaces the name and amount of an already authorized budget.
func (s *budgetService) UpdateBudget(ctx context.Context, budget *models.Budget, name string, amount float64) (*models.Budget, error) {
	if err := s.db.WithContext(ctx).Model(budget).Updates(map[string]interface{}{
		"name":   name,
		"amount": amount,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Name = name
	budget.Amount = amount
	return budget, nil
}

// DeleteBudget soft-deletes a budget together with its expenses.
func (s *budgetService) DeleteBudget(ctx context.Context, budget *models.Budget) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		return tx.Delete(budget).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
