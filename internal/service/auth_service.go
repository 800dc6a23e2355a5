package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flyerhub/internal/auth"
	apperrors "flyerhub/internal/errors"
	"flyerhub/internal/model"
	"flyerhub/internal/repository"
)

// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// Identity is what the client holds for the session after login.
type Identity struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	CompanyID   *uint      `json:"companyId"`
	CompanyName *string    `json:"companyName"`
}

// NewIdentity projects a user (company joined) to an Identity.
func NewIdentity(u *model.User) *Identity {
	return &Identity{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		CompanyName: u.CompanyName(),
	}
}

// LoginResult is the identity plus the tokens issued for it.
type LoginResult struct {
	Identity     *Identity
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	// Logout revokes the refresh token and, when accessClaims is non-nil,
	// blacklists the access token for the rest of its lifetime.
	Logout(ctx context.Context, refreshToken string, accessClaims *auth.Claims) error
	Me(ctx context.Context, userID uint) (*Identity, error)
}

type authService struct {
	userRepo   repository.UserRepository
	hasher     auth.PasswordHasher
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Login matches email exactly and verifies the password, then issues tokens.
// Unknown email and wrong password fail the same way.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	candidates, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	var user *model.User
	for i := range candidates {
		// SQL collations may fold case; the match must be exact.
		if candidates[i].Email != email {
			continue
		}
		if s.hasher.Verify(candidates[i].Password, password) {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &LoginResult{
		Identity:     NewIdentity(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedEmail != claims.Email {
		return "", ErrInvalidRefreshToken
	}

	// Role and company are re-read so the new token reflects current data.
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	_, accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token and the presented access token.
// With an access token, the refresh token must belong to the same user.
func (s *authService) Logout(ctx context.Context, refreshToken string, accessClaims *auth.Claims) error {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if accessClaims != nil && accessClaims.UserID != claims.UserID {
		return ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	if accessClaims != nil && accessClaims.ID != "" && accessClaims.ExpiresAt != nil {
		ttl := time.Until(accessClaims.ExpiresAt.Time)
		if err := s.tokenStore.BlacklistAccessToken(ctx, accessClaims.ID, ttl); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// Me returns the current identity of a user.
func (s *authService) Me(ctx context.Context, userID uint) (*Identity, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return NewIdentity(user), nil
}
