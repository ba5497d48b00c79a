package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Claims represents JWT token claims
type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Session converts the claims into the request-scoped session.
func (c *Claims) Session() *internal.Session {
	return &internal.Session{Email: c.Email, Role: string(c.Role)}
}

// TokenGenerator issues and checks session tokens.
type TokenGenerator interface {
	GenerateSessionToken(email string, role Role) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// ServiceAPI performs the mock authentication flows.
type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, role Role) (*SessionResponse, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ChangePassword(ctx context.Context, dto ChangePasswordDTO) (*MessageResponse, error)
}

type JWTTokenGenerator struct {
	Secret []byte
	TTL    time.Duration
	Issuer string

	now func() time.Time
}

// NewJWTTokenGenerator creates an HS256 generator for session tokens.
func NewJWTTokenGenerator(secret string, ttl time.Duration, issuer string) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
		Issuer: issuer,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for issuing and checking tokens.
func (j *JWTTokenGenerator) WithClock(now func() time.Time) *JWTTokenGenerator {
	j.now = now
	return j
}

func (j *JWTTokenGenerator) GenerateSessionToken(email string, role Role) (string, time.Time, error) {
	issuedAt := j.now()
	expiresAt := issuedAt.Add(j.TTL)

	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" || !claims.Role.Valid() {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}
