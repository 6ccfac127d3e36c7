package service

import (
	"context"
	"log/slog"
	"strings"

	"inkwell/internal/access"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService registers and authenticates accounts.
type UserService struct {
	tx     repository.Transactor
	users  repository.UserRepository
	gate   *access.Gate
	tokens *TokenManager
	now    Clock
}

// SignUpInput carries a registration request.
type SignUpInput struct {
	Email    string
	Username string
	Password string
}

// AuthResult is a signed token and the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// NewUserService creates a UserService.
func NewUserService(store *repository.Store, gate *access.Gate, tokens *TokenManager, now Clock) *UserService {
	return newUserService(store, store.Users, gate, tokens, now)
}

func newUserService(tx repository.Transactor, users repository.UserRepository, gate *access.Gate, tokens *TokenManager, now Clock) *UserService {
	return &UserService{tx: tx, users: users, gate: gate, tokens: tokens, now: orUTC(now)}
}

// SignUp creates an account and signs the new user in.
func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("email, username and password are required")
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("email already in use")
	}
	existing, err = s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewValidationError("username already in use")
	}
	if err := access.ValidateUsername(in.Username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		Password:  string(hash),
		Role:      s.gate.RoleForNewUser(ctx, in.Username),
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.authResult(user)
}

// SignIn checks credentials and issues a token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	invalid := models.NewUnauthorizedError("invalid email or password")

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	return s.authResult(user)
}

func (s *UserService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate verifies a bearer token.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Claims, error) {
	return s.tokens.Verify(ctx, token)
}

// Logout revokes the token described by claims.
func (s *UserService) Logout(ctx context.Context, claims *Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

// GetUser loads an account by ID.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// SetRole changes username's role and writes an audit record. actor names
// whoever requested the change.
func (s *UserService) SetRole(ctx context.Context, actor, username string, role int) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, models.NewValidationError("unknown role")
	}

	var updated *models.User
	err := s.tx.InTx(ctx, func(r repository.Repos) error {
		user, err := r.Users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if user == nil {
			return models.NewNotFoundError("User", username)
		}
		if err := r.Users.UpdateRole(ctx, user.ID, role); err != nil {
			return err
		}
		user.Role = role
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	if role == models.RoleAdmin {
		observability.AdminRoleGrants.WithLabelValues("cli").Inc()
	}
	middleware.Logger.WarnContext(ctx, "user role changed",
		slog.String("audit", "role_change"),
		slog.String("actor", actor),
		slog.String("username", username),
		slog.Int("role", role),
	)
	return updated, nil
}
