package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

var reservedClaims = map[string]struct{}{
	"sub": {}, "tenant_id": {}, "is_admin": {}, "exp": {}, "iat": {},
}

// Claims is the decoded content of a session token.
type Claims struct {
	Subject   string
	UserID    int64
	TenantID  int64
	IsAdmin   bool
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}

	var method jwt.SigningMethod
	switch strings.ToUpper(algorithm) {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &TokenService{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock swaps the time source; tests use it to move past expiry.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for the subject. Extra claims cannot override the
// reserved ones; an "is_admin" entry is honored as the admin flag.
func (s *TokenService) Issue(userID, tenantID int64, extra map[string]any) (string, time.Time, error) {
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	claims := jwt.MapClaims{}
	for key, value := range extra {
		if _, reserved := reservedClaims[key]; reserved {
			continue
		}
		claims[key] = value
	}
	claims["sub"] = strconv.FormatInt(userID, 10)
	claims["tenant_id"] = tenantID
	claims["iat"] = issuedAt.Unix()
	claims["exp"] = expiresAt.Unix()
	if isAdmin, ok := extra["is_admin"].(bool); ok {
		claims["is_admin"] = isAdmin
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry. Every failure wraps ErrInvalidToken.
func (s *TokenService) Decode(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, _ := mapClaims["sub"].(string)
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	tenantID, ok := numericClaim(mapClaims["tenant_id"])
	if !ok {
		return nil, fmt.Errorf("%w: bad tenant_id", ErrInvalidToken)
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: bad exp", ErrInvalidToken)
	}

	claims := &Claims{
		Subject:   subject,
		UserID:    userID,
		TenantID:  tenantID,
		ExpiresAt: exp.Time,
		Extra:     map[string]any{},
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.IsAdmin, _ = mapClaims["is_admin"].(bool)
	for key, value := range mapClaims {
		if _, reserved := reservedClaims[key]; !reserved {
			claims.Extra[key] = value
		}
	}
	return claims, nil
}

// ExtractUserID returns false for any token that does not decode.
func (s *TokenService) ExtractUserID(token string) (int64, bool) {
	claims, err := s.Decode(token)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}

func numericClaim(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
