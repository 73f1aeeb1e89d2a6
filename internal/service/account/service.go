package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"postershop/internal/domain"
	sessionrepo "postershop/internal/repository/session"
	userrepo "postershop/internal/repository/user"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when email/password do not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service registers users and manages their sessions. It is the identity
// provider the cart and checkout services rely on.
type Service struct {
	users    userrepo.Repository
	sessions *sessionManager
	logger   *log.Logger
	cost     int
	validate *validator.Validate
}

// New creates a Service issuing sessions that live for ttl.
func New(users userrepo.Repository, sessions sessionrepo.Repository, ttl time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		users:    users,
		sessions: newSessionManager(sessions, ttl),
		logger:   logger,
		cost:     bcrypt.DefaultCost,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"min=8,max=72"`
}

// Auth is a signed-in principal together with its session.
type Auth struct {
	User      domain.Principal
	Token     string
	ExpiresAt time.Time
}

// Register creates the user and signs them in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Auth, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("password", "too long")
		}
		return nil, err
	}

	u, err := s.users.Create(ctx, domain.User{Name: in.Name, Email: in.Email, PasswordHash: string(hashed)})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("account service: registered user_id=%d", u.ID)
	return s.signIn(ctx, u)
}

// Login validates credentials and opens a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*Auth, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.signIn(ctx, u)
}

// Logout ends the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

// Authenticate resolves a session token to its principal. Any token that is
// unknown, expired or orphaned yields domain.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	userID, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	p := u.Principal()
	return &p, nil
}

// toValidationError reports the first failed field rule.
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, "required")
	case "email":
		return domain.NewValidationError(field, "must be a valid email address")
	case "min":
		return domain.NewValidationError(field, fmt.Sprintf("must be at least %s characters", fe.Param()))
	case "max":
		return domain.NewValidationError(field, fmt.Sprintf("must be at most %s characters", fe.Param()))
	default:
		return domain.NewValidationError(field, "is invalid")
	}
}

func (s *Service) signIn(ctx context.Context, u *domain.User) (*Auth, error) {
	token, expiresAt, err := s.sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Auth{User: u.Principal(), Token: token, ExpiresAt: expiresAt}, nil
}
