package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"cashtrackr/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

func hashTestPassword(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

// CreateTestUser creates a confirmed user with a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a confirmed user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:      fmt.Sprintf("Test User %d", nextID()),
		Email:     email,
		Password:  hashTestPassword(t),
		Confirmed: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateUnconfirmedUser creates a user still waiting to confirm with token.
func CreateUnconfirmedUser(t *testing.T, db *gorm.DB, token string) *models.User {
	t.Helper()

	user := &models.User{
		Name:     fmt.Sprintf("Pending User %d", nextID()),
		Email:    fmt.Sprintf("pending%d@test.com", nextID()),
		Password: hashTestPassword(t),
		Token:    &token,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create unconfirmed user: %v", err)
	}
	return user
}

// SetUserToken stores a pending token on an existing user.
func SetUserToken(t *testing.T, db *gorm.DB, userID uint, token string) {
	t.Helper()
	if err := db.Model(&models.User{}).Where("id = ?", userID).Update("token", token).Error; err != nil {
		t.Fatalf("failed to set user token: %v", err)
	}
}

// CreateTestBudget creates a budget of 1000.00 owned by userID.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID: userID,
		Name:   fmt.Sprintf("Test Budget %d", nextID()),
		Amount: 1000,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestExpense creates an expense in the given budget.
func CreateTestExpense(t *testing.T, db *gorm.DB, budgetID uint, amount float64) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		BudgetID: budgetID,
		Name:     fmt.Sprintf("Test Expense %d", nextID()),
		Amount:   amount,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
