package domain

import (
	"context"
	"time"

	"hamrosewa/internal/models"
)

// ServiceQuery narrows the service list server-side.
type ServiceQuery struct {
	Popular bool
	Status  string
}

// RegisterRequest is the register form after client-side validation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type CatalogSource interface {
	ListServices(ctx context.Context, q ServiceQuery) ([]models.Service, error)
	ParentCategories(ctx context.Context) ([]models.Category, error)
	AllCategories(ctx context.Context) ([]models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (*models.CategoryDetail, error)
	ServicesByCategory(ctx context.Context, slug, subcategory string) ([]models.Service, error)
	ServiceBySlug(ctx context.Context, slug string) (*models.Service, error)
}

type SlotFetcher interface {
	BookedSlots(ctx context.Context, serviceID, date string) ([]string, error)
}

type BookingSubmitter interface {
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
}

// BookingBackend is what a booking panel needs from the backend.
type BookingBackend interface {
	SlotFetcher
	BookingSubmitter
}

type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*models.AuthResult, error)
}

// Backend is the full REST backend contract.
type Backend interface {
	CatalogSource
	BookingBackend
	AuthGateway
}

// PreferenceRepository is the local storage of contact preferences and the
// auth session, keyed by visitor id.
type PreferenceRepository interface {
	GetPreferences(ctx context.Context, visitorID string) (*models.Preferences, error)
	SetPreferences(ctx context.Context, visitorID string, prefs *models.Preferences) error
	GetSession(ctx context.Context, visitorID string) (*models.Session, error)
	SetSession(ctx context.Context, visitorID string, session *models.Session) error
	ClearSession(ctx context.Context, visitorID string) error
}

// RateLimiter counts attempts per key inside a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// VisitorStore is everything kept per visitor.
type VisitorStore interface {
	PreferenceRepository
	RateLimiter
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
