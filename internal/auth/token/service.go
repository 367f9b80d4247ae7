// Package token issues and verifies the service's bearer tokens.
//
// Tokens are standard JWTs signed with HMAC-SHA256 over a process-wide
// secret. They are self-contained: subject id, email, and role travel in
// the claims, so verification needs no store lookup and there is no
// revocation — a token stays valid until its expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/studentms/internal/auth"
)

// Verification failure kinds. Callers map all of them to a single generic
// unauthorized signal at the HTTP boundary; the distinction is for logs.
var (
	// ErrMalformed indicates the token could not be decoded.
	ErrMalformed = errors.New("token: malformed")
	// ErrExpired indicates the token's expiry is in the past.
	ErrExpired = errors.New("token: expired")
	// ErrSignatureInvalid indicates the signature does not verify.
	ErrSignatureInvalid = errors.New("token: signature invalid")
)

// Claims is the JWT payload carried by every issued token.
type Claims struct {
	gojwt.RegisteredClaims
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

// Service issues and verifies bearer tokens.
type Service struct {
	cfg Config
}

// NewService creates a token service from configuration.
func NewService(cfg *Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: *cfg}, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.cfg.TTL }

// IssueToken creates a signed token carrying the identity, valid from now
// until now + TTL. Implements auth.TokenIssuer.
func (s *Service) IssueToken(id auth.Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		Email: id.Email,
		Role:  id.Role,
	}

	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// VerifyToken validates the signature and expiry of a token and returns the
// identity embedded in it. Implements auth.TokenVerifier.
//
// Verification is a pure function of (token, current time, secret): account
// state is never consulted, so claims may be stale until the token expires.
func (s *Service) VerifyToken(tokenString string) (*auth.Identity, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

// Parse validates a token string and returns the full claims.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		return nil, classify(err)
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}
	if !claims.Role.Valid() {
		// A valid signature with an out-of-enum role means the token was
		// minted by an incompatible issuer.
		return nil, fmt.Errorf("%w: unknown role %q", ErrMalformed, claims.Role)
	}
	return claims, nil
}

// keyFunc is the jwt.Keyfunc used during token parsing.
func (s *Service) keyFunc(tok *gojwt.Token) (interface{}, error) {
	if tok.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("token: unexpected signing method: %s", tok.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

// parserOptions returns jwt.ParserOption based on config.
func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	return opts
}

// classify maps golang-jwt errors onto this package's failure kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
