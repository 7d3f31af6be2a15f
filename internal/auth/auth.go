package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ukydev/mobile-garage/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrRevokedToken       = errors.New("token revoked")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service handles authentication operations
type Service struct {
	jwtSecret []byte
	tokenExp  time.Duration
	revoked   Revoker
	now       func() time.Time
}

// NewService creates a new authentication service. Tokens listed by revoked
// fail validation until they expire.
func NewService(secret string, tokenExp time.Duration, revoked Revoker) *Service {
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &Service{
		jwtSecret: []byte(secret),
		tokenExp:  tokenExp,
		revoked:   revoked,
		now:       time.Now,
	}
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a hash
func (s *Service) CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateToken generates a JWT token for a user
func (s *Service) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":        strconv.FormatInt(user.ID, 10),
		"role":       string(user.Role),
		"profile_id": user.ProfileID,
		"jti":        uuid.NewString(),
		"exp":        now.Add(s.tokenExp).Unix(),
		"iat":        now.Unix(),
	}
	if user.Role == models.RoleCustomer {
		claims["customer_id"] = user.ProfileID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a JWT token and returns the claims. Revoked tokens
// are rejected with ErrRevokedToken.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims, err := claimsFromMap(mc)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

func claimsFromMap(mc jwt.MapClaims) (*models.Claims, error) {
	sub, ok := mc["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	roleStr, ok := mc["role"].(string)
	if !ok || !models.IsValidRole(models.Role(roleStr)) {
		return nil, ErrInvalidToken
	}

	profileID, ok := mc["profile_id"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	jti, ok := mc["jti"].(string)
	if !ok || jti == "" {
		return nil, ErrInvalidToken
	}

	exp, ok := mc["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{
		UserID:    userID,
		Role:      models.Role(roleStr),
		ProfileID: int64(profileID),
		TokenID:   jti,
		Exp:       int64(exp),
	}, nil
}

// Revoke blocks the token identified by claims until it would have expired.
func (s *Service) Revoke(ctx context.Context, claims *models.Claims) error {
	if claims == nil || claims.TokenID == "" {
		return ErrInvalidToken
	}
	return s.revoked.Revoke(ctx, claims.TokenID, claims.ExpiresAt())
}

// ExtractTokenFromHeader extracts token from Authorization header
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}

	return parts[1], nil
}
