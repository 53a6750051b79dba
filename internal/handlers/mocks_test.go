package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"cashtrackr/internal/middleware"
	"cashtrackr/internal/models"
	"cashtrackr/internal/pagination"
	"cashtrackr/internal/services"
	"cashtrackr/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	createAccountFn  func(name, email, password string) (*models.User, error)
	confirmAccountFn func(token string) (*models.User, error)
	loginFn          func(email, password string) (string, error)
	forgotPasswordFn func(email string) (*models.User, error)
	validateTokenFn  func(token string) error
	resetPasswordFn  func(token, password string) (*models.User, error)
	updatePasswordFn func(userID uint, current, password string) error
	checkPasswordFn  func(userID uint, password string) error
}

func (m *mockAuthService) CreateAccount(_ context.Context, name, email, password string) (*models.User, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(name, email, password)
	}
	return &models.User{Base: models.Base{ID: 1}, Name: name, Email: email}, nil
}

func (m *mockAuthService) ConfirmAccount(_ context.Context, token string) (*models.User, error) {
	if m.confirmAccountFn != nil {
		return m.confirmAccountFn(token)
	}
	return &models.User{Base: models.Base{ID: 1}, Confirmed: true}, nil
}

func (m *mockAuthService) Login(_ context.Context, email, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password)
	}
	return "token", nil
}

func (m *mockAuthService) ForgotPassword(_ context.Context, email string) (*models.User, error) {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(email)
	}
	return &models.User{Base: models.Base{ID: 1}, Email: email}, nil
}

func (m *mockAuthService) ValidateToken(_ context.Context, token string) error {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(token)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(_ context.Context, token, password string) (*models.User, error) {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(token, password)
	}
	return &models.User{Base: models.Base{ID: 1}}, nil
}

func (m *mockAuthService) UpdatePassword(_ context.Context, userID uint, current, password string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(userID, current, password)
	}
	return nil
}

func (m *mockAuthService) CheckPassword(_ context.Context, userID uint, password string) error {
	if m.checkPasswordFn != nil {
		return m.checkPasswordFn(userID, password)
	}
	return nil
}

var _ services.AuthServicer = (*mockAuthService)(nil)

type mockBudgetService struct {
	getUserBudgetsFn        func(userID uint) ([]models.Budget, error)
	getBudgetWithExpensesFn func(budgetID uint) (*models.Budget, error)
	createBudgetFn          func(userID uint, name string, amount float64) (*models.Budget, error)
	updateBudgetFn          func(budget *models.Budget, name string, amount float64) (*models.Budget, error)
	deleteBudgetFn          func(budget *models.Budget) error
}

func (m *mockBudgetService) GetUserBudgets(_ context.Context, userID uint) ([]models.Budget, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) GetBudgetByID(_ context.Context, budgetID uint) (*models.Budget, error) {
	return &models.Budget{Base: models.Base{ID: budgetID}}, nil
}

func (m *mockBudgetService) GetBudgetWithExpenses(_ context.Context, budgetID uint) (*models.Budget, error) {
	if m.getBudgetWithExpensesFn != nil {
		return m.getBudgetWithExpensesFn(budgetID)
	}
	return &models.Budget{Base: models.Base{ID: budgetID}, Expenses: []models.Expense{}}, nil
}

func (m *mockBudgetService) CreateBudget(_ context.Context, userID uint, name string, amount float64) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, name, amount)
	}
	return &models.Budget{Base: models.Base{ID: 1}, UserID: userID, Name: name, Amount: amount}, nil
}

func (m *mockBudgetService) UpdateBudget(_ context.Context, budget *models.Budget, name string, amount float64) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(budget, name, amount)
	}
	budget.Name, budget.Amount = name, amount
	return budget, nil
}

func (m *mockBudgetService) DeleteBudget(_ context.Context, budget *models.Budget) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(budget)
	}
	return nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

type mockExpenseService struct {
	getBudgetExpensesFn func(budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error)
	createExpenseFn     func(budgetID uint, name string, amount float64) (*models.Expense, error)
	updateExpenseFn     func(expense *models.Expense, name string, amount float64) (*models.Expense, error)
	deleteExpenseFn     func(expense *models.Expense) error
}

func (m *mockExpenseService) GetBudgetExpenses(_ context.Context, budgetID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Expense], error) {
	if m.getBudgetExpensesFn != nil {
		return m.getBudgetExpensesFn(budgetID, page)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) GetExpenseByID(_ context.Context, budgetID, expenseID uint) (*models.Expense, error) {
	return &models.Expense{Base: models.Base{ID: expenseID}, BudgetID: budgetID}, nil
}

func (m *mockExpenseService) CreateExpense(_ context.Context, budgetID uint, name string, amount float64) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(budgetID, name, amount)
	}
	return &models.Expense{Base: models.Base{ID: 1}, BudgetID: budgetID, Name: name, Amount: amount}, nil
}

func (m *mockExpenseService) UpdateExpense(_ context.Context, expense *models.Expense, name string, amount float64) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(expense, name, amount)
	}
	expense.Name, expense.Amount = name, amount
	return expense, nil
}

func (m *mockExpenseService) DeleteExpense(_ context.Context, expense *models.Expense) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(expense)
	}
	return nil
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

type auditEntry struct {
	userID     uint
	action     string
	resourceID uint
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(userID uint, action, _ string, resourceID uint, _ string, _ map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{userID: userID, action: action, resourceID: resourceID})
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func injectUser(user middleware.AuthUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserKey, user)
		c.Set(middleware.UserIDKey, user.ID)
		c.Next()
	}
}

func injectBudget(budget models.Budget) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := budget
		c.Set(middleware.BudgetKey, &b)
		c.Next()
	}
}

func injectExpense(expense models.Expense) gin.HandlerFunc {
	return func(c *gin.Context) {
		e := expense
		c.Set(middleware.ExpenseKey, &e)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func parseMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var msg string
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("expected a JSON string, got %s", rec.Body.String())
	}
	return msg
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	if result["code"] != code {
		t.Errorf("expected error code %q, got %v (body %v)", code, result["code"], result)
	}
}

// fieldErrors returns the msg of every field error keyed by path.
func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	errs, ok := parseJSON(t, rec)["errors"].([]interface{})
	if !ok {
		t.Fatalf("expected errors array, got %s", rec.Body.String())
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		fe := e.(map[string]interface{})
		out[fe["path"].(string)] = fe["msg"].(string)
	}
	return out
}
