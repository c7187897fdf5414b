package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hamrosewa/internal/domain"
	"hamrosewa/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// LoginForm is the login form as typed.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the register form as typed.
type RegisterForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"omitempty,min=7,max=20"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=customer provider"`
	Location        string `json:"location"`
}

type AuthService struct {
	gateway     domain.AuthGateway
	store       domain.VisitorStore
	validate    *validator.Validate
	maxAttempts int
	window      time.Duration
	logger      *zerolog.Logger
}

func NewAuthService(gateway domain.AuthGateway, store domain.VisitorStore, maxAttempts int, window time.Duration, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		gateway:     gateway,
		store:       store,
		validate:    newValidator(),
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

// Login validates the form, exchanges the credentials for a token and stores
// the session for the visitor.
func (s *AuthService) Login(ctx context.Context, visitorID string, form LoginForm) (*models.Session, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := s.validate.Struct(form); err != nil {
		return nil, validationError(err)
	}
	if err := s.throttle(ctx, "login", visitorID); err != nil {
		return nil, err
	}

	res, err := s.gateway.Login(ctx, form.Email, form.Password)
	if err != nil {
		s.logger.Warn().Err(err).Str("visitor_id", visitorID).Msg("login failed")
		return nil, err
	}
	return s.startSession(ctx, visitorID, res, "")
}

// Register validates the form, creates the account and signs the visitor in.
func (s *AuthService) Register(ctx context.Context, visitorID string, form RegisterForm) (*models.Session, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	if err := s.validate.Struct(form); err != nil {
		return nil, validationError(err)
	}
	if err := s.throttle(ctx, "register", visitorID); err != nil {
		return nil, err
	}

	res, err := s.gateway.Register(ctx, domain.RegisterRequest{
		Name:     form.Name,
		Email:    form.Email,
		Phone:    form.Phone,
		Password: form.Password,
		Role:     form.Role,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("visitor_id", visitorID).Msg("register failed")
		return nil, err
	}
	return s.startSession(ctx, visitorID, res, form.Location)
}

func (s *AuthService) Logout(ctx context.Context, visitorID string) error {
	return s.store.ClearSession(ctx, visitorID)
}

// Session returns the stored session, or nil when signed out.
func (s *AuthService) Session(ctx context.Context, visitorID string) (*models.Session, error) {
	return s.store.GetSession(ctx, visitorID)
}

func (s *AuthService) throttle(ctx context.Context, action, visitorID string) error {
	if s.maxAttempts <= 0 {
		return nil
	}
	allowed, err := s.store.CheckRateLimit(ctx, action+":"+visitorID, s.maxAttempts, s.window)
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("rate limit check failed")
		return nil
	}
	if !allowed {
		return ErrTooManyAttempts
	}
	return nil
}

// startSession stores the token and seeds contact preferences from the user
// record without overwriting anything the visitor already typed.
func (s *AuthService) startSession(ctx context.Context, visitorID string, res *models.AuthResult, location string) (*models.Session, error) {
	session := &models.Session{Token: res.Token, User: res.User}
	if err := s.store.SetSession(ctx, visitorID, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	current, err := s.store.GetPreferences(ctx, visitorID)
	if err != nil {
		s.logger.Warn().Err(err).Str("visitor_id", visitorID).Msg("read preferences")
	}
	var prefs models.Preferences
	if current != nil {
		prefs = *current
	}
	seed := models.Preferences{
		Name:     res.User.Name,
		Email:    res.User.Email,
		Phone:    res.User.Phone,
		Location: firstNonEmpty(location, res.User.Location),
	}
	prefs = seed.Merge(prefs)
	if err := s.store.SetPreferences(ctx, visitorID, &prefs); err != nil {
		s.logger.Warn().Err(err).Str("visitor_id", visitorID).Msg("seed preferences")
	}

	s.logger.Info().Str("visitor_id", visitorID).Str("user_id", res.User.ID).Str("role", res.User.Role).Msg("signed in")
	return session, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
