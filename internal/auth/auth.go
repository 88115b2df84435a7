// Package auth registers users and authenticates callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"inara-impact/internal/domain"
	"inara-impact/internal/observability"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
)

var (
	// ErrEmailTaken is returned when registering an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingInput = simulation.ErrMissingRequiredInput
)

// DefaultBcryptCost matches the cost used for stored hashes when none is configured.
const DefaultBcryptCost = 10

// Service manages user accounts.
type Service struct {
	users   storage.UserStore
	cost    int
	metrics *observability.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

// Options configures a Service.
type Options struct {
	Users      storage.UserStore
	BcryptCost int
	Metrics    *observability.Metrics
	Logger     *zerolog.Logger
	Clock      func() time.Time
}

// NewService creates an auth service.
func NewService(opts Options) *Service {
	s := &Service{
		users:   opts.Users,
		cost:    opts.BcryptCost,
		metrics: opts.Metrics,
		logger:  zerolog.Nop(),
		now:     opts.Clock,
	}
	if s.cost < bcrypt.MinCost || s.cost > bcrypt.MaxCost {
		s.cost = DefaultBcryptCost
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "auth").Logger()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Register creates an account. The role is PROVIDER only when requested,
// otherwise CONSUMER; ADMIN cannot be self-assigned.
func (s *Service) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleProvider {
		role = domain.RoleConsumer
	}
	return s.create(ctx, email, password, name, role)
}

// EnsureAdmin creates an ADMIN account unless the email is already registered.
// Returns the existing or created user.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (*domain.User, error) {
	u, err := s.create(ctx, email, password, name, domain.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return s.users.GetByEmail(ctx, normalizeEmail(email))
	}
	return u, err
}

func (s *Service) create(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password: %w", ErrMissingInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.Insert(ctx, u); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	s.metrics.RecordUserRegistered(string(role))
	s.logger.Info().Str("user_id", u.ID).Str("role", string(role)).Msg("user registered")
	return u, nil
}

// Authenticate checks credentials and returns the caller's principal.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &domain.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
