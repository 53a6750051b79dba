package handlers

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cashtrackr/internal/errors"
	"cashtrackr/internal/middleware"
	"cashtrackr/internal/models"
	"cashtrackr/internal/services"
	"cashtrackr/internal/validator"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/create-account", handler.CreateAccount)
	r.POST("/auth/confirm-account", handler.ConfirmAccount)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/forgot-password", handler.ForgotPassword)
	r.POST("/auth/validate-token", handler.ValidateToken)
	r.POST("/auth/reset-password/:token", handler.ResetPassword)

	authed := r.Group("/auth", injectUser(middleware.AuthUser{ID: 1, Name: "Jane", Email: "jane@x.com"}))
	authed.GET("/user", handler.GetUser)
	authed.POST("/update-password", handler.UpdatePassword)
	authed.POST("/check-password", handler.CheckPassword)
	return r
}

func TestAuthHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotName, gotEmail string
		svc := &mockAuthService{
			createAccountFn: func(name, email, _ string) (*models.User, error) {
				gotName, gotEmail = name, email
				return &models.User{Base: models.Base{ID: 5}, Name: name, Email: email}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/create-account",
			`{"name":"Jane","email":"jane@x.com","password":"password123"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if msg := parseMessage(t, rec); msg != "Cuenta creada exitosamente" {
			t.Errorf("unexpected message %q", msg)
		}
		if gotName != "Jane" || gotEmail != "jane@x.com" {
			t.Errorf("service got %q %q", gotName, gotEmail)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.ActionCreateAccount || audit.entries[0].resourceID != 5 {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("returns exactly three errors for an empty body", func(t *testing.T) {
		called := false
		svc := &mockAuthService{
			createAccountFn: func(_, _, _ string) (*models.User, error) {
				called = true
				return nil, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		for _, body := range []string{"", "{}"} {
			rec := doRequest(r, "POST", "/auth/create-account", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			fields := fieldErrors(t, rec)
			if len(fields) != 3 {
				t.Fatalf("expected 3 errors, got %v", fields)
			}
			if fields["name"] != "El nombre es obligatorio" {
				t.Errorf("name msg = %q", fields["name"])
			}
			if fields["email"] != "El email no es válido" {
				t.Errorf("email msg = %q", fields["email"])
			}
			if fields["password"] != "La contraseña debe tener al menos 8 caracteres" {
				t.Errorf("password msg = %q", fields["password"])
			}
		}
		if called {
			t.Error("service should not be called on invalid input")
		}
	})

	t.Run("returns one error for an invalid email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/create-account",
			`{"name":"John Doe","email":"invalid-email","password":"password123"}`)

		fields := fieldErrors(t, rec)
		if rec.Code != http.StatusBadRequest || len(fields) != 1 || fields["email"] != "El email no es válido" {
			t.Errorf("unexpected response %d %v", rec.Code, fields)
		}
	})

	t.Run("returns one error for a short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/create-account",
			`{"name":"John Doe","email":"correo@correo.com","password":"short"}`)

		fields := fieldErrors(t, rec)
		if len(fields) != 1 || fields["password"] != "La contraseña debe tener al menos 8 caracteres" {
			t.Errorf("unexpected errors %v", fields)
		}
	})

	t.Run("returns 400 on malformed JSON", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		for _, body := range []string{`{"name":`, `{"name" "Jane"}`, `{"name":"Jane",}`} {
			rec := doRequest(r, "POST", "/auth/create-account", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", body, rec.Code)
			}
			errs, ok := parseJSON(t, rec)["errors"].([]interface{})
			if !ok || len(errs) != 1 {
				t.Fatalf("%s: expected one error, got %s", body, rec.Body.String())
			}
			fe := errs[0].(map[string]interface{})
			if fe["type"] != "body" || fe["location"] != "body" || fe["msg"] != validator.MalformedBodyMessage {
				t.Errorf("%s: unexpected error %v", body, fe)
			}
		}
	})

	t.Run("reports only field errors for a body that is not an object", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		for _, body := range []string{`[]`, `"x"`, `null`} {
			rec := doRequest(r, "POST", "/auth/create-account", body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", body, rec.Code)
			}
			fields := fieldErrors(t, rec)
			if len(fields) != 3 {
				t.Fatalf("%s: expected 3 errors, got %v", body, fields)
			}
			if _, ok := fields[""]; ok {
				t.Errorf("%s: unexpected error without a field: %v", body, fields)
			}
		}
	})

	t.Run("rejects values longer than their columns", func(t *testing.T) {
		called := false
		svc := &mockAuthService{
			createAccountFn: func(_, _, _ string) (*models.User, error) {
				called = true
				return nil, nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		body := `{"name":"` + strings.Repeat("n", 61) + `","email":"` + strings.Repeat("a", 55) + `@x.com","password":"` + strings.Repeat("p", 73) + `"}`
		rec := doRequest(r, "POST", "/auth/create-account", body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		fields := fieldErrors(t, rec)
		if fields["name"] != "El nombre no puede superar los 60 caracteres" {
			t.Errorf("name msg = %q", fields["name"])
		}
		if fields["email"] != "El email no puede superar los 60 caracteres" {
			t.Errorf("email msg = %q", fields["email"])
		}
		if fields["password"] != "La contraseña no puede superar los 72 caracteres" {
			t.Errorf("password msg = %q", fields["password"])
		}
		if called {
			t.Error("service should not be called on invalid input")
		}
	})

	t.Run("returns 409 on duplicate email", func(t *testing.T) {
		svc := &mockAuthService{
			createAccountFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/create-account",
			`{"name":"Jane","email":"jane@x.com","password":"password123"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "DUPLICATE_EMAIL")
		if result["error"] != "El Usuario ya está registrado" {
			t.Errorf("unexpected message %v", result["error"])
		}
		if len(audit.entries) != 0 {
			t.Error("failed registration should not be audited")
		}
	})

	t.Run("hides internal errors", func(t *testing.T) {
		svc := &mockAuthService{
			createAccountFn: func(_, _, _ string) (*models.User, error) {
				return nil, apperrors.Wrap(apperrors.ErrCreateAccount, errors.New("pq: connection refused"))
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/create-account",
			`{"name":"Jane","email":"jane@x.com","password":"password123"}`)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["error"] != "Error al crear la cuenta" {
			t.Errorf("unexpected message %v", result["error"])
		}
	})
}

func TestAuthHandler_ConfirmAccount(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, audit))

		rec := doRequest(r, "POST", "/auth/confirm-account", `{"token":"123456"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if msg := parseMessage(t, rec); msg != "Cuenta confirmada exitosamente" {
			t.Errorf("unexpected message %q", msg)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.ActionConfirmAccount {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("rejects malformed tokens", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		for _, body := range []string{`{}`, `{"token":"12345"}`, `{"token":"1234567"}`, `{"token":"12a456"}`} {
			rec := doRequest(r, "POST", "/auth/confirm-account", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s: expected 400, got %d", body, rec.Code)
			}
			if fields := fieldErrors(t, rec); fields["token"] != "Token no válido" {
				t.Errorf("%s: unexpected errors %v", body, fields)
			}
		}
	})

	t.Run("returns 401 for an unknown token", func(t *testing.T) {
		svc := &mockAuthService{
			confirmAccountFn: func(_ string) (*models.User, error) {
				return nil, apperrors.ErrInvalidToken
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/confirm-account", `{"token":"000000"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_TOKEN")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "unknown email", err: apperrors.ErrUserNotFound, wantStatus: http.StatusNotFound, wantCode: "USER_NOT_FOUND"},
		{name: "unconfirmed", err: apperrors.ErrAccountNotConfirmed, wantStatus: http.StatusForbidden, wantCode: "ACCOUNT_NOT_CONFIRMED"},
		{name: "wrong password", err: apperrors.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				loginFn: func(_, _ string) (string, error) { return "", tt.err },
			}
			r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/auth/login", `{"email":"jane@x.com","password":"password123"}`)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.wantCode)
		})
	}

	t.Run("returns the raw token", func(t *testing.T) {
		svc := &mockAuthService{
			loginFn: func(email, password string) (string, error) {
				if email != "jane@x.com" || password != "password123" {
					t.Errorf("unexpected credentials %q %q", email, password)
				}
				return "header.payload.signature", nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"jane@x.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if token := parseMessage(t, rec); token != "header.payload.signature" {
			t.Errorf("unexpected token %q", token)
		}
	})

	t.Run("validates input", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/login", `{"email":"nope"}`)

		fields := fieldErrors(t, rec)
		if len(fields) != 2 || fields["email"] != "El email no es válido" || fields["password"] != "El password es obligatorio" {
			t.Errorf("unexpected errors %v", fields)
		}
	})
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	t.Run("returns 200 and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, audit))

		rec := doRequest(r, "POST", "/auth/forgot-password", `{"email":"jane@x.com"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if msg := parseMessage(t, rec); msg != "Revisa tu email para instrucciones" {
			t.Errorf("unexpected message %q", msg)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.ActionForgotPassword {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("returns 404 for an unknown email", func(t *testing.T) {
		svc := &mockAuthService{
			forgotPasswordFn: func(_ string) (*models.User, error) { return nil, apperrors.ErrUserNotFound },
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/forgot-password", `{"email":"ghost@x.com"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_ValidateToken(t *testing.T) {
	svc := &mockAuthService{
		validateTokenFn: func(token string) error {
			if token == "123456" {
				return nil
			}
			return apperrors.ErrTokenNotFound
		},
	}
	r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "POST", "/auth/validate-token", `{"token":"123456"}`)
	if rec.Code != http.StatusOK || parseMessage(t, rec) != "Token válido, asigna un nuevo password" {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, "POST", "/auth/validate-token", `{"token":"654321"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "TOKEN_NOT_FOUND")
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotToken, gotPassword string
		svc := &mockAuthService{
			resetPasswordFn: func(token, password string) (*models.User, error) {
				gotToken, gotPassword = token, password
				return &models.User{Base: models.Base{ID: 3}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/reset-password/123456", `{"password":"newpassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotToken != "123456" || gotPassword != "newpassword" {
			t.Errorf("service got %q %q", gotToken, gotPassword)
		}
		if len(audit.entries) != 1 || audit.entries[0].userID != 3 {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("rejects a malformed path token", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/reset-password/abc", `{"password":"newpassword"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if fields := fieldErrors(t, rec); fields["token"] != "Token no válido" {
			t.Errorf("unexpected errors %v", fields)
		}
	})

	t.Run("rejects a short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/reset-password/123456", `{"password":"short"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for an unknown token", func(t *testing.T) {
		svc := &mockAuthService{
			resetPasswordFn: func(_, _ string) (*models.User, error) { return nil, apperrors.ErrTokenNotFound },
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/reset-password/123456", `{"password":"newpassword"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_GetUser(t *testing.T) {
	r := setupAuthRouter(NewAuthHandler(&mockAuthService{}, &mockAuditService{}))

	rec := doRequest(r, "GET", "/auth/user", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	result := parseJSON(t, rec)
	if result["id"].(float64) != 1 || result["name"] != "Jane" || result["email"] != "jane@x.com" {
		t.Errorf("unexpected user %v", result)
	}
	if len(result) != 3 {
		t.Errorf("expected only id, name and email, got %v", result)
	}
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotUser uint
		svc := &mockAuthService{
			updatePasswordFn: func(userID uint, current, password string) error {
				gotUser = userID
				if current != "password123" || password != "newpassword" {
					t.Errorf("unexpected passwords %q %q", current, password)
				}
				return nil
			},
		}
		audit := &mockAuditService{}
		r := setupAuthRouter(NewAuthHandler(svc, audit))

		rec := doRequest(r, "POST", "/auth/update-password",
			`{"current_password":"password123","password":"newpassword"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotUser != 1 {
			t.Errorf("expected user 1, got %d", gotUser)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != services.ActionUpdatePassword {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("returns 401 on wrong current password", func(t *testing.T) {
		svc := &mockAuthService{
			updatePasswordFn: func(_ uint, _, _ string) error { return apperrors.ErrCurrentPasswordInvalid },
		}
		r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/auth/update-password",
			`{"current_password":"wrongpass","password":"newpassword"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if parseJSON(t, rec)["error"] != "El password actual es incorrecto" {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		r := gin.New()
		r.POST("/auth/update-password", NewAuthHandler(&mockAuthService{}, &mockAuditService{}).UpdatePassword)

		rec := doRequest(r, "POST", "/auth/update-password",
			`{"current_password":"password123","password":"newpassword"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_CheckPassword(t *testing.T) {
	svc := &mockAuthService{
		checkPasswordFn: func(_ uint, password string) error {
			if password == "password123" {
				return nil
			}
			return apperrors.ErrPasswordMismatch
		},
	}
	r := setupAuthRouter(NewAuthHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "POST", "/auth/check-password", `{"password":"password123"}`)
	if rec.Code != http.StatusOK || parseMessage(t, rec) != "Password Correcto" {
		t.Errorf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, "POST", "/auth/check-password", `{"password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "PASSWORD_MISMATCH")
}
