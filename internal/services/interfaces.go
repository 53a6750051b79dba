package services

import (
	"context"

	"gorm.io/gorm"

	"cashtrackr/internal/email"
	"cashtrackr/internal/models"
	"cashtrackr/internal/pagination"
)

// UserServicer is the account directory. Token transitions are single
// conditional updates, so a token is consumed at most once.
type UserServicer interface {
	CreateUser(tx *gorm.DB, user *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByToken(ctx context.Context, token string) (*models.User, error)
	SetToken(tx *gorm.DB, userID uint, token string) error
	ConfirmByToken(ctx context.Context, token string) (*models.User, error)
	ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error
}

// AuthServicer defines the account lifecycle and credential operations.
type AuthServicer interface {
	CreateAccount(ctx context.Context, name, email, password string) (*models.User, error)
	ConfirmAccount(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) (*models.User, error)
	ValidateToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, password string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, currentPassword, password string) error
	CheckPassword(ctx context.Context, userID uint, password string) error
}

// EmailOutbox stores emails with the transaction that caused them and
// delivers them afterwards.
type EmailOutbox interface {
	Enqueue(tx *gorm.DB, msg email.Message) (string, error)
	Dispatch(ctx context.Context, id string) error
}

// BudgetServicer defines the contract for budget-related business logic.
// Ownership is checked by the caller; lookups by id are not scoped to a user.
type BudgetServicer interface {
	GetUserBudgets(ctx context.Context, userID uint) ([]models.Budget, error)
	GetBudgetByID(ctx context.Context, budgetID uint) (*models.Budget, error)
	GetBudgetWithExpenses(ctx context.Context, budgetID uint) (*models.Budget, error)
	CreateBudget(ctx context.Context, userID uint, name string, amount float64) (*models.Budget, error)
	UpdateBudget(ctx context.Context, budget *models.Budget, name string, amount float64) (*models.Budget, error)
	DeleteBudget(ctx context.Context, budget *models.Budget) error
}

// ExpenseServicer defines the contract for expense-related business logic.
// Every lookup is scoped to the budget the expense belongs to.
type ExpenseServicer interface {
	GetBudgetExpenses(ctx context.Context, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(ctx context.Context, budgetID, expenseID uint) (*models.Expense, error)
	CreateExpense(ctx context.Context, budgetID uint, name string, amount float64) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense, name string, amount float64) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expense *models.Expense) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
