package auth

import (
	"context"
	"fmt"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/internal/service"
	"intervue-api/pkg/errors"
	"intervue-api/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Service implements the AuthService interface: Google sign-in verification
// plus app-issued HS256 session tokens.
type Service struct {
	clientID     string
	clientSecret string
	jwtSecret    []byte
	tokenExpiry  time.Duration
	logger       *logger.Logger
}

// NewService creates a new auth service
func NewService(clientID, clientSecret, jwtSecret string, tokenExpiry time.Duration, logger *logger.Logger) service.AuthService {
	return &Service{
		clientID:     clientID,
		clientSecret: clientSecret,
		jwtSecret:    []byte(jwtSecret),
		tokenExpiry:  tokenExpiry,
		logger:       logger,
	}
}

// SignInWithGoogle verifies a Google authorization code or access token and
// returns the verified profile.
func (s *Service) SignInWithGoogle(ctx context.Context, req *domain.GoogleSignInRequest) (*domain.UserProfile, error) {
	accessToken := req.AccessToken

	if accessToken == "" {
		if req.Code == "" {
			return nil, errors.NewValidationError("either code or access_token is required", nil)
		}

		token, err := s.exchangeCode(ctx, req.Code, req.RedirectURI)
		if err != nil {
			s.logger.WithError(err).Error("Google code exchange failed")
			return nil, errors.NewAuthenticationError("Failed to exchange authorization code")
		}
		accessToken = token.AccessToken
	}

	return s.fetchProfile(ctx, accessToken)
}

// exchangeCode trades an OAuth authorization code for tokens
func (s *Service) exchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	config := &oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return config.Exchange(ctx, code)
}

// fetchProfile verifies the access token against Google and reads the
// user's profile
func (s *Service) fetchProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	oauthService, err := oauth2api.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		s.logger.WithError(err).Error("Failed to create Google OAuth service")
		return nil, errors.NewInternalError("Failed to initialize token verification", err)
	}

	tokenInfo, err := oauthService.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		s.logger.WithError(err).Warn("Google token verification failed")
		return nil, errors.NewAuthenticationError("Invalid or expired Google token")
	}

	// Tokens minted for another application are rejected even when valid.
	if s.clientID != "" && tokenInfo.Audience != "" && tokenInfo.Audience != s.clientID {
		s.logger.WithFields(map[string]interface{}{
			"expected_audience": s.clientID,
			"actual_audience":   tokenInfo.Audience,
		}).Warn("Token audience mismatch")
		return nil, errors.NewAuthenticationError("Token not intended for this application")
	}

	userInfo, err := oauthService.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		s.logger.WithError(err).Warn("Google userinfo fetch failed")
		return nil, errors.NewAuthenticationError("Failed to fetch Google profile")
	}

	profile := &domain.UserProfile{
		Sub:           userInfo.Id,
		Email:         userInfo.Email,
		EmailVerified: userInfo.VerifiedEmail != nil && *userInfo.VerifiedEmail,
		Name:          userInfo.Name,
		Picture:       userInfo.Picture,
	}

	if profile.Sub == "" {
		return nil, errors.NewAuthenticationError("Google profile has no subject")
	}

	s.logger.WithField("user_id", profile.Sub).Debug("Google sign-in verified")
	return profile, nil
}

// sessionClaims are the JWT claims carried by app session tokens
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken mints an app session token for a user
func (s *Service) IssueToken(user *domain.User) (*domain.AuthResponse, error) {
	if len(s.jwtSecret) == 0 {
		return nil, fmt.Errorf("auth: JWT secret is not configured")
	}

	expiresAt := time.Now().Add(s.tokenExpiry)
	claims := sessionClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    "intervue-api",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return &domain.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

// ValidateToken validates an app session token and returns its claims
func (s *Service) ValidateToken(_ context.Context, tokenString string) (*domain.AuthClaims, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.NewAuthenticationError("Invalid or expired token")
	}

	if claims.Subject == "" {
		return nil, errors.NewAuthenticationError("Token has no subject")
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &domain.AuthClaims{
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: expiresAt,
	}, nil
}
