package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Config holds token settings.
type Config struct {
	Secret   string        `env:"AUTH_JWT_SECRET,required"`
	Issuer   string        `env:"AUTH_JWT_ISSUER" envDefault:"internhub"`
	TokenTTL time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
}

// Claims are the token claims the notification surface relies on: the user
// id in "sub" and the app role in "role".
type Claims struct {
	Role string `json:"role,omitempty"`
	jwtlib.RegisteredClaims
}

// Service signs and verifies HS256 tokens.
type Service struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New creates a Service with the given signing key.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{key: signingKey, ttl: 24 * time.Hour, now: time.Now}, nil
}

// NewFromConfig creates a Service from cfg.
func NewFromConfig(cfg Config) (*Service, error) {
	s, err := New([]byte(cfg.Secret))
	if err != nil {
		return nil, err
	}
	s.issuer = cfg.Issuer
	if cfg.TokenTTL > 0 {
		s.ttl = cfg.TokenTTL
	}
	return s, nil
}

// Issue signs a token for userID with role.
func (s *Service) Issue(userID, role string) (string, error) {
	if userID == "" {
		return "", ErrMissingSubject
	}

	now := s.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.key)
}

// Parse verifies token and returns its claims. Only HS256 is accepted.
func (s *Service) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return s.key, nil
	}, opts...)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}
