package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hamrosewa/internal/backend"
	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"
	"hamrosewa/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, maxAttempts int) (*AuthService, *MockGateway, *repository.MemoryVisitorRepository) {
	t.Helper()
	gateway := new(MockGateway)
	store := repository.NewMemoryVisitorRepository(time.Hour)
	logger := zerolog.Nop()
	return NewAuthService(gateway, store, maxAttempts, time.Minute, &logger), gateway, store
}

func validRegisterForm() RegisterForm {
	return RegisterForm{
		Name:            "Sita Sharma",
		Email:           "sita@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Role:            models.RoleCustomer,
		Location:        "Lalitpur",
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, gateway, store := newAuthService(t, 5)
	ctx := context.Background()

	gateway.On("Login", mock.Anything, "sita@example.com", "secret123").Return(&models.AuthResult{
		Token: "tok",
		User:  models.User{ID: "u1", Name: "Sita", Email: "sita@example.com", Phone: "9800000000"},
	}, nil).Once()

	session, err := svc.Login(ctx, "v1", LoginForm{Email: " sita@example.com ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)

	stored, err := svc.Session(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, session, stored)

	prefs, err := store.GetPreferences(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Equal(t, "Sita", prefs.Name)
	assert.Equal(t, "9800000000", prefs.Phone)
	gateway.AssertExpectations(t)
}

func TestAuthService_LoginKeepsTypedPreferences(t *testing.T) {
	svc, gateway, store := newAuthService(t, 5)
	ctx := context.Background()
	require.NoError(t, store.SetPreferences(ctx, "v1", &models.Preferences{Name: "Sita S.", Location: "Pokhara"}))

	gateway.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(&models.AuthResult{
		Token: "tok",
		User:  models.User{ID: "u1", Name: "Sita", Email: "sita@example.com"},
	}, nil).Once()

	_, err := svc.Login(ctx, "v1", LoginForm{Email: "sita@example.com", Password: "x"})
	require.NoError(t, err)

	prefs, _ := store.GetPreferences(ctx, "v1")
	assert.Equal(t, "Sita S.", prefs.Name)
	assert.Equal(t, "Pokhara", prefs.Location)
	assert.Equal(t, "sita@example.com", prefs.Email)
}

func TestAuthService_LoginValidation(t *testing.T) {
	svc, gateway, _ := newAuthService(t, 5)

	_, err := svc.Login(context.Background(), "v1", LoginForm{Email: "not-an-email"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")
	gateway.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_LoginErrors(t *testing.T) {
	t.Run("Unreachable", func(t *testing.T) {
		svc, gateway, _ := newAuthService(t, 5)
		gateway.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: connection refused", domain.ErrUnreachable)).Once()

		_, err := svc.Login(context.Background(), "v1", LoginForm{Email: "sita@example.com", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrUnreachable)
		assert.Contains(t, UserMessage(err), "can't reach the server")
	})

	t.Run("Rejected", func(t *testing.T) {
		svc, gateway, _ := newAuthService(t, 5)
		gateway.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &backend.APIError{Status: 401, Message: "Invalid credentials"}).Once()

		_, err := svc.Login(context.Background(), "v1", LoginForm{Email: "sita@example.com", Password: "x"})
		assert.Error(t, err)
		assert.Equal(t, "Invalid credentials", UserMessage(err))

		session, err := svc.Session(context.Background(), "v1")
		require.NoError(t, err)
		assert.Nil(t, session)
	})
}

func TestAuthService_Throttle(t *testing.T) {
	svc, gateway, _ := newAuthService(t, 2)
	gateway.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &backend.APIError{Status: 401, Message: "Invalid credentials"}).Twice()

	form := LoginForm{Email: "sita@example.com", Password: "wrong"}
	for i := 0; i < 2; i++ {
		_, err := svc.Login(context.Background(), "v1", form)
		assert.NotErrorIs(t, err, ErrTooManyAttempts)
	}
	_, err := svc.Login(context.Background(), "v1", form)
	assert.ErrorIs(t, err, ErrTooManyAttempts)
	gateway.AssertNumberOfCalls(t, "Login", 2)
}

func TestAuthService_Register(t *testing.T) {
	svc, gateway, store := newAuthService(t, 5)
	ctx := context.Background()

	gateway.On("Register", mock.Anything, domain.RegisterRequest{
		Name:     "Sita Sharma",
		Email:    "sita@example.com",
		Password: "secret123",
		Role:     models.RoleCustomer,
	}).Return(&models.AuthResult{
		Token: "tok-r",
		User:  models.User{ID: "u9", Name: "Sita Sharma", Email: "sita@example.com", Role: models.RoleCustomer},
	}, nil).Once()

	session, err := svc.Register(ctx, "v1", validRegisterForm())
	require.NoError(t, err)
	assert.Equal(t, "tok-r", session.Token)

	prefs, _ := store.GetPreferences(ctx, "v1")
	require.NotNil(t, prefs)
	assert.Equal(t, "Lalitpur", prefs.Location)
	gateway.AssertExpectations(t)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *RegisterForm)
		field  string
		msg    string
	}{
		{"PasswordMismatch", func(f *RegisterForm) { f.ConfirmPassword = "different" }, "confirmPassword", "passwords do not match"},
		{"MissingRole", func(f *RegisterForm) { f.Role = "" }, "role", "please choose whether you are a customer or a provider"},
		{"UnknownRole", func(f *RegisterForm) { f.Role = "admin" }, "role", "role must be one of: customer, provider"},
		{"ShortPassword", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, "password", "password must be at least 6 characters"},
		{"BadEmail", func(f *RegisterForm) { f.Email = "sita" }, "email", "email must be a valid email address"},
		{"ShortPhone", func(f *RegisterForm) { f.Phone = "123" }, "phone", "phone must be at least 7 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, gateway, _ := newAuthService(t, 5)
			form := validRegisterForm()
			tt.mutate(&form)

			_, err := svc.Register(context.Background(), "v1", form)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field])
			gateway.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, store := newAuthService(t, 5)
	ctx := context.Background()
	require.NoError(t, store.SetSession(ctx, "v1", &models.Session{Token: "tok"}))
	require.NoError(t, store.SetPreferences(ctx, "v1", &models.Preferences{Name: "Sita"}))

	require.NoError(t, svc.Logout(ctx, "v1"))
	session, _ := svc.Session(ctx, "v1")
	assert.Nil(t, session)

	prefs, _ := store.GetPreferences(ctx, "v1")
	assert.NotNil(t, prefs, "logout keeps contact preferences")
}
