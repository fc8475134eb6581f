package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/tournament-api/models"
	"github.com/Dosada05/tournament-api/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, input TokenPair) (*TokenPair, error)
	ManageAdmin(ctx context.Context, input ManageAdminInput) (*models.User, error)
}

type RegisterInput struct {
	UserName string  `json:"userName,omitempty"`
	Name     string  `json:"name" validate:"required"`
	Age      int     `json:"age" validate:"min=18,max=100"`
	Position *string `json:"position,omitempty"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type ManageAdminInput struct {
	UserName string `json:"userName" validate:"required"`
	IsAdmin  bool   `json:"isAdmin"`
}

type authService struct {
	users    repositories.UserRepository
	tokens   *TokenIssuer
	logger   *slog.Logger
	hashCost int
	now      func() time.Time
}

func NewAuthService(users repositories.UserRepository, tokens *TokenIssuer, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		users:    users,
		tokens:   tokens,
		logger:   logger,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.UserName = strings.TrimSpace(input.UserName)
	if msgs := validateStruct(input); len(msgs) > 0 {
		return nil, validationError("Invalid registration data", msgs...)
	}
	if input.UserName == "" {
		input.UserName = input.Email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, internalError(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     input.UserName,
		Email:        input.Email,
		Name:         input.Name,
		Age:          input.Age,
		Position:     input.Position,
		PasswordHash: string(hash),
		Roles:        []models.UserRole{models.RoleForPosition(input.Position)},
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNameConflict):
			return nil, conflictError(fmt.Sprintf("User name '%s' is already taken.", user.UserName), err)
		case errors.Is(err, repositories.ErrEmailConflict):
			return nil, conflictError(fmt.Sprintf("Email '%s' is already taken.", user.Email), err)
		default:
			return nil, internalError(err)
		}
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID), slog.String("role", string(user.Roles[0])))
	user.PasswordHash = ""
	return user, nil
}

// Login authenticates by user name and password and issues a token pair
// with a fresh refresh token expiry.
func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	if msgs := validateStruct(input); len(msgs) > 0 {
		return nil, validationError("Username and password cannot be empty.", msgs...)
	}

	user, err := s.users.GetByUserName(ctx, input.UserName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, notFoundError("User not found.", err)
		}
		return nil, internalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, unauthorizedError("Invalid username or password.", ErrInvalidCredentials)
		}
		return nil, internalError(fmt.Errorf("failed to compare password hash: %w", err))
	}

	return s.createTokenPair(ctx, user)
}

// Refresh exchanges an expired access token plus the stored refresh token for
// a new pair. The refresh token value rotates; its expiry does not.
func (s *authService) Refresh(ctx context.Context, input TokenPair) (*TokenPair, error) {
	claims, err := s.tokens.ParseExpiredAccessToken(input.AccessToken)
	if err != nil {
		return nil, &Error{
			Kind:    KindValidation,
			Message: "Error occurred when trying update token",
			Details: []string{err.Error()},
			Err:     ErrInvalidToken,
		}
	}

	user, err := s.users.GetByUserName(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, &Error{Kind: KindValidation, Message: "Invalid token values provided", Err: ErrInvalidToken}
		}
		return nil, internalError(err)
	}

	if !s.refreshTokenMatches(user, input.RefreshToken) {
		return nil, &Error{Kind: KindValidation, Message: "Invalid token values provided", Err: ErrInvalidToken}
	}

	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, internalError(err)
	}
	refresh, err := NewRefreshToken()
	if err != nil {
		return nil, internalError(err)
	}

	// Rotation is conditional on the token just checked, so two concurrent
	// exchanges of the same refresh token cannot both succeed.
	err = s.users.RotateRefreshToken(ctx, user.ID, input.RefreshToken, refresh, *user.RefreshTokenExpiresAt)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenMismatch) {
			return nil, &Error{Kind: KindValidation, Message: "Invalid token values provided", Err: ErrInvalidToken}
		}
		return nil, internalError(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) refreshTokenMatches(user *models.User, supplied string) bool {
	if user.RefreshToken == nil || user.RefreshTokenExpiresAt == nil || supplied == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(supplied)) != 1 {
		return false
	}
	return user.RefreshTokenExpiresAt.After(s.now())
}

// createTokenPair issues a pair for a fresh login and restarts the refresh
// token lifetime.
func (s *authService) createTokenPair(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, internalError(err)
	}
	refresh, err := NewRefreshToken()
	if err != nil {
		return nil, internalError(err)
	}

	expiresAt := s.now().Add(RefreshTokenTTL)
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refresh, expiresAt); err != nil {
		return nil, internalError(err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// ManageAdmin grants or revokes the Admin role. A revoked user always keeps
// the User role, including accounts registered as Admin only.
func (s *authService) ManageAdmin(ctx context.Context, input ManageAdminInput) (*models.User, error) {
	if msgs := validateStruct(input); len(msgs) > 0 {
		return nil, validationError("Invalid role assignment", msgs...)
	}

	user, err := s.users.GetByUserName(ctx, input.UserName)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, notFoundError(fmt.Sprintf("User '%s' was not found.", input.UserName), err)
		}
		return nil, internalError(err)
	}

	if input.IsAdmin {
		err = s.users.AddRole(ctx, user.ID, models.RoleAdmin)
	} else if err = s.users.AddRole(ctx, user.ID, models.RoleUser); err == nil {
		err = s.users.RemoveRole(ctx, user.ID, models.RoleAdmin)
	}
	if err != nil {
		return nil, internalError(err)
	}

	updated, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, internalError(err)
	}
	s.logger.InfoContext(ctx, "admin role changed",
		slog.String("user_id", user.ID), slog.Bool("is_admin", input.IsAdmin))
	updated.PasswordHash = ""
	return updated, nil
}
