package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"cashtrackr/internal/auth"
	"cashtrackr/internal/email"
	"cashtrackr/internal/email/emailtest"
	"cashtrackr/internal/models"
	"cashtrackr/internal/testutil"
)

type authFixture struct {
	db       *gorm.DB
	svc      AuthServicer
	users    UserServicer
	mail     *emailtest.Recorder
	sessions *auth.SessionManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	mail := emailtest.New()
	sessions := auth.NewSessionManager("test-secret", time.Hour)
	users := NewUserService(db)
	outbox := email.NewOutbox(db, mail, nil, email.OutboxConfig{})
	svc := NewAuthService(db, users, sessions, outbox, email.NewTemplates("http://localhost:3000"))

	return &authFixture{db: db, svc: svc, users: users, mail: mail, sessions: sessions}
}

func (f *authFixture) outboxRows(t *testing.T) []models.OutboxMessage {
	t.Helper()
	var rows []models.OutboxMessage
	if err := f.db.Order("created_at ASC").Find(&rows).Error; err != nil {
		t.Fatalf("failed to load outbox: %v", err)
	}
	return rows
}

func TestCreateAccount(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := newAuthFixture(t)
		ctx := context.Background()

		user, err := f.svc.CreateAccount(ctx, "Jane", "jane@x.com", "password123")
		testutil.AssertNoError(t, err)

		if user.ID == 0 || user.Confirmed {
			t.Fatalf("expected a new unconfirmed user, got %+v", user)
		}
		if user.Password == "password123" {
			t.Error("password must be stored hashed")
		}

		token := f.mail.LastTokenFor("jane@x.com")
		if len(token) != 6 {
			t.Fatalf("expected a 6-digit token in the confirmation email, got %q", token)
		}
		stored, err := f.users.GetUserByToken(ctx, token)
		testutil.AssertNoError(t, err)
		if stored.ID != user.ID {
			t.Errorf("token belongs to user %d, want %d", stored.ID, user.ID)
		}

		rows := f.outboxRows(t)
		if len(rows) != 1 || rows[0].Status != models.OutboxStatusSent || rows[0].Kind != email.KindConfirmAccount {
			t.Errorf("expected one sent confirmation in the outbox, got %+v", rows)
		}
	})

	t.Run("duplicate_email_does_not_mutate", func(t *testing.T) {
		f := newAuthFixture(t)
		existing := testutil.CreateTestUser(t, f.db)

		_, err := f.svc.CreateAccount(context.Background(), "Other", existing.Email, "password123")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")

		var count int64
		f.db.Model(&models.User{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 user, got %d", count)
		}
		if len(f.outboxRows(t)) != 0 {
			t.Error("expected no email to be queued")
		}
	})

	t.Run("email_failure_still_registers", func(t *testing.T) {
		f := newAuthFixture(t)
		f.mail.FailWith(errors.New("smtp down"))

		user, err := f.svc.CreateAccount(context.Background(), "Jane", "jane@x.com", "password123")
		testutil.AssertNoError(t, err)
		if user.ID == 0 {
			t.Fatal("expected the account to exist")
		}

		rows := f.outboxRows(t)
		if len(rows) != 1 || rows[0].Status != models.OutboxStatusPending || rows[0].Attempts != 1 {
			t.Errorf("expected one pending email with one attempt, got %+v", rows)
		}
	})
}

func TestConfirmAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAccount(ctx, "Jane", "jane@x.com", "password123")
	testutil.AssertNoError(t, err)
	token := f.mail.LastTokenFor("jane@x.com")

	user, err := f.svc.ConfirmAccount(ctx, token)
	testutil.AssertNoError(t, err)
	if !user.Confirmed {
		t.Error("expected confirmed account")
	}

	_, err = f.svc.ConfirmAccount(ctx, token)
	testutil.AssertAppError(t, err, "INVALID_TOKEN")
}

func TestLogin(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testutil.CreateTestUser(t, f.db)

		session, err := f.svc.Login(context.Background(), user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)

		id, err := f.sessions.Verify(session)
		testutil.AssertNoError(t, err)
		if id != user.ID {
			t.Errorf("session decodes to %d, want %d", id, user.ID)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Login(context.Background(), "nobody@x.com", testutil.TestPassword)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("unconfirmed_regardless_of_password", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testutil.CreateUnconfirmedUser(t, f.db, "123456")

		for _, pw := range []string{testutil.TestPassword, "wrong-password"} {
			_, err := f.svc.Login(context.Background(), user.Email, pw)
			testutil.AssertAppError(t, err, "ACCOUNT_NOT_CONFIRMED")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testutil.CreateTestUser(t, f.db)

		_, err := f.svc.Login(context.Background(), user.Email, "wrong-password")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestForgotPassword(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f := newAuthFixture(t)
		user := testutil.CreateTestUser(t, f.db)

		_, err := f.svc.ForgotPassword(context.Background(), user.Email)
		testutil.AssertNoError(t, err)

		msgs := f.mail.Messages()
		if len(msgs) != 1 || msgs[0].Kind != email.KindResetPassword {
			t.Fatalf("expected one reset email, got %+v", msgs)
		}
		testutil.AssertNoError(t, f.svc.ValidateToken(context.Background(), f.mail.LastTokenFor(user.Email)))
	})

	t.Run("unknown_email", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.ForgotPassword(context.Background(), "nobody@x.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
		if len(f.mail.Messages()) != 0 {
			t.Error("expected no email")
		}
	})
}

func TestValidateToken(t *testing.T) {
	f := newAuthFixture(t)
	testutil.CreateUnconfirmedUser(t, f.db, "123456")

	testutil.AssertNoError(t, f.svc.ValidateToken(context.Background(), "123456"))
	testutil.AssertAppError(t, f.svc.ValidateToken(context.Background(), "654321"), "TOKEN_NOT_FOUND")
}

func TestResetPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, f.db)

	_, err := f.svc.ForgotPassword(ctx, user.Email)
	testutil.AssertNoError(t, err)
	token := f.mail.LastTokenFor(user.Email)

	_, err = f.svc.ResetPassword(ctx, token, "brand-new-password")
	testutil.AssertNoError(t, err)

	_, err = f.svc.Login(ctx, user.Email, testutil.TestPassword)
	testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	_, err = f.svc.Login(ctx, user.Email, "brand-new-password")
	testutil.AssertNoError(t, err)

	_, err = f.svc.ResetPassword(ctx, token, "another-password")
	testutil.AssertAppError(t, err, "TOKEN_NOT_FOUND")
}

func TestUpdatePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, f.db)

	err := f.svc.UpdatePassword(ctx, user.ID, "wrong-password", "new-password-1")
	testutil.AssertAppError(t, err, "CURRENT_PASSWORD_INVALID")

	testutil.AssertNoError(t, f.svc.UpdatePassword(ctx, user.ID, testutil.TestPassword, "new-password-1"))
	testutil.AssertNoError(t, f.svc.CheckPassword(ctx, user.ID, "new-password-1"))
}

func TestCheckPassword(t *testing.T) {
	f := newAuthFixture(t)
	user := testutil.CreateTestUser(t, f.db)

	testutil.AssertNoError(t, f.svc.CheckPassword(context.Background(), user.ID, testutil.TestPassword))
	testutil.AssertAppError(t, f.svc.CheckPassword(context.Background(), user.ID, "nope-nope"), "PASSWORD_MISMATCH")
	testutil.AssertAppError(t, f.svc.CheckPassword(context.Background(), 9999, "whatever"), "USER_NOT_FOUND")
}
