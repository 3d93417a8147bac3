package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/service"
)

const (
	KeyJwtSessionCookieName = "jwt_session"
	bearerPrefix            = "Bearer "
)

// JWTAuth verifies HS256 session tokens.
type JWTAuth struct {
	Secret []byte
}

func NewJWTAuth(secret []byte) *JWTAuth {
	if len(secret) == 0 {
		panic("jwt auth expects a non-empty secret")
	}
	return &JWTAuth{Secret: secret}
}

// Issue signs a session token for the user.
func (a *JWTAuth) Issue(userID uuid.UUID, userName string, ttl time.Duration) (string, time.Time, error) {
	expiry := time.Now().Add(ttl)
	claims := service.UserCredentialClaims{
		UserId:   userID,
		UserName: userName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   userID.String(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w, cannot sign token, %w", arena_errors.ErrInternal, err)
	}
	return token, expiry, nil
}

// Parse validates the token and returns its claims.
func (a *JWTAuth) Parse(tokenString string) (service.UserCredentialClaims, error) {
	if tokenString == "" {
		return service.UserCredentialClaims{}, fmt.Errorf("%w, no session token", arena_errors.ErrUnAuthorized)
	}

	var claims service.UserCredentialClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.Secret, nil
	})
	if err != nil || !token.Valid {
		return service.UserCredentialClaims{}, fmt.Errorf("%w, invalid session token, %v", arena_errors.ErrUnAuthorized, err)
	}
	if claims.UserId == uuid.Nil {
		return service.UserCredentialClaims{}, fmt.Errorf("%w, token carries no user", arena_errors.ErrUnAuthorized)
	}
	return claims, nil
}

// JWTMiddleware rejects requests without a valid session and puts the
// user's claims into the request context.
func (a *JWTAuth) JWTMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Parse(requestToken(r))
		if err != nil {
			log.WithField("path", r.URL.Path).Debug(err)
			unauthorized(w, err)
			return
		}
		next(w, r.WithContext(service.WithClaims(r.Context(), claims)))
	}
}

// requestToken prefers the Authorization header over the session cookie.
func requestToken(r *http.Request) string {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return strings.TrimSpace(bearer)
	}
	cookie, err := r.Cookie(KeyJwtSessionCookieName)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			log.Warnf("cannot read session cookie, %v", err)
		}
		return ""
	}
	return cookie.Value
}

func unauthorized(w http.ResponseWriter, err error) {
	msg := arena_errors.ErrUnAuthorized.Error()
	if errors.Is(err, arena_errors.ErrUnAuthorized) {
		msg = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
		"code":  "unauthorized",
	})
}
