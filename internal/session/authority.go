package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "stocktracker/internal/errors"
	"stocktracker/internal/logger"
)

const (
	// CookieName is the name of the cookie carrying the session token.
	CookieName = "session"

	defaultTTL = 24 * time.Hour
	issuer     = "stocktracker-api"
)

// Claims is the payload of a session token. ID (jti) holds the raw session id.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Authority issues and validates session tokens.
type Authority struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthority returns an Authority signing tokens with secret. A
// non-positive ttl falls back to 24 hours.
func NewAuthority(store Store, secret string, ttl time.Duration) *Authority {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Authority{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the absolute lifetime of a session.
func (a *Authority) TTL() time.Duration { return a.ttl }

// Login starts a new session for userID and returns its signed token. A
// token presented from an earlier session is revoked first.
func (a *Authority) Login(ctx context.Context, userID uint, previousToken string) (string, time.Time, error) {
	if previousToken != "" {
		if err := a.Logout(ctx, previousToken); err != nil {
			logger.Named("session").Warnw("failed to revoke previous session", "error", err)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	if err := a.store.Create(ctx, hashID(id), userID, expiresAt); err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, expiresAt, nil
}

// Logout revokes the session behind token. Unknown, expired or malformed
// tokens are ignored.
func (a *Authority) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	// Expired tokens still name a record worth deleting.
	claims, err := a.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := a.store.Delete(ctx, hashID(claims.ID)); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CurrentUser resolves token to the id of its user. Every failure to prove a
// live session yields ErrUnauthenticated.
func (a *Authority) CurrentUser(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, apperrors.ErrUnauthenticated
	}

	claims, err := a.parse(token, jwt.WithExpirationRequired(), jwt.WithTimeFunc(a.now))
	if err != nil {
		return 0, apperrors.ErrUnauthenticated
	}

	userID, err := a.store.Lookup(ctx, hashID(claims.ID))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return 0, apperrors.ErrUnauthenticated
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if userID != claims.UserID {
		return 0, apperrors.ErrUnauthenticated
	}
	return userID, nil
}

func (a *Authority) parse(token string, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if claims.ID == "" {
		return nil, errors.New("session token has no id")
	}
	return claims, nil
}
