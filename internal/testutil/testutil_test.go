package testutil_test

import (
	stderrors "errors"
	"testing"

	"cashtrackr/internal/errors"
	"cashtrackr/internal/models"
	"cashtrackr/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "budgets", "expenses", "audit_logs", "email_outbox"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestUser(t, a)

	var count int64
	if err := b.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}
	if !user.Confirmed {
		t.Error("fixture user should be confirmed")
	}

	pending := testutil.CreateUnconfirmedUser(t, db, "123456")
	if pending.Confirmed || pending.Token == nil {
		t.Error("pending user should carry a token and be unconfirmed")
	}

	budget := testutil.CreateTestBudget(t, db, user.ID)
	if budget.Amount != 1000 {
		t.Errorf("expected budget amount 1000, got %v", budget.Amount)
	}

	expense := testutil.CreateTestExpense(t, db, budget.ID, 25.5)
	if expense.BudgetID != budget.ID {
		t.Errorf("expected expense in budget %d, got %d", budget.ID, expense.BudgetID)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.Wrap(errors.ErrBudgetLoad, stderrors.New("connection reset"))
	appErr := testutil.AssertAppError(t, err, "BUDGET_LOAD_FAILED")
	if appErr.StatusCode != 500 {
		t.Errorf("expected status 500, got %d", appErr.StatusCode)
	}
	testutil.AssertWrappedCause(t, err, "BUDGET_LOAD_FAILED")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
