package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "taskd"

// TokenConfig is the immutable signing configuration of a TokenCodec.
// Changing Secret invalidates every token issued under the old one.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims are the identity assertions carried by an access token.
// Subject holds the user's email at issuance time.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 JWT access tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be greater than zero")
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = defaultIssuer
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &TokenCodec{secret: secret, ttl: cfg.TTL, issuer: issuer}, nil
}

// ExpiryFor returns the expiry embedded in a token issued at now. JWT
// timestamps have second precision, so now+TTL is rounded up to the next
// whole second and a token never expires before its full lifetime.
func (c *TokenCodec) ExpiryFor(now time.Time) time.Time {
	exp := now.Add(c.ttl)
	if whole := exp.Truncate(time.Second); whole.Before(exp) {
		return whole.Add(time.Second)
	}
	return exp
}

// Issue signs a token for the user that expires at ExpiryFor(now).
func (c *TokenCodec) Issue(userID int, email string, now time.Time) (string, error) {
	if userID < 1 {
		return "", errors.New("user id is required")
	}
	if strings.TrimSpace(email) == "" {
		return "", errors.New("subject email is required")
	}
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiryFor(now)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks structure, signature and expiry of tokenString as of now.
// It returns ErrMalformed, ErrInvalidSignature or ErrExpired on failure.
func (c *TokenCodec) Verify(tokenString string, now time.Time) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	if !token.Valid {
		return nil, ErrMalformed
	}
	if claims.UserID < 1 || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
