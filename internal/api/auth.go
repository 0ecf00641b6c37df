package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cashmind/engine/internal/domain"
)

// The identity provider is an external collaborator: the engine only needs a
// verified user id per request. Two verifier modes are supported — "static"
// treats the bearer token as the user id (local development and tests), and
// "jwt" verifies an HS256 token whose subject claim is the user id.

// Verifier resolves a bearer token to a user identity.
type Verifier interface {
	Verify(token string) (userID string, err error)
}

type ctxKey string

const userCtxKey ctxKey = "cashmind:user"

// authenticate wraps a handler, requiring a resolvable caller identity.
// Every operation checks this first and short-circuits without any other
// effect.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			return
		}

		userID, err := s.verifier.Verify(token)
		if err != nil || userID == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrNotAuthenticated.Error())
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromRequest pulls the credential from the Authorization header.
// An X-User-ID header is honored for internal calls in static mode setups.
func tokenFromRequest(r *http.Request) string {
	if uid := r.Header.Get("X-User-ID"); uid != "" {
		return uid
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// userID extracts the authenticated user from the request context.
func userID(r *http.Request) string {
	uid, _ := r.Context().Value(userCtxKey).(string)
	return uid
}

// ─── Verifiers ──────────────────────────────────────────────────────────────

// StaticVerifier treats the presented token as the user id itself.
type StaticVerifier struct{}

// Verify returns the token unchanged.
func (StaticVerifier) Verify(token string) (string, error) {
	return token, nil
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	Secret []byte
}

// Verify parses and validates the token and returns its subject claim.
func (v JWTVerifier) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.Secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", fmt.Errorf("invalid token")
	}
	return parsed.Claims.GetSubject()
}

// NewVerifier constructs a verifier for the configured auth mode.
func NewVerifier(mode, secret string) (Verifier, error) {
	switch mode {
	case "", "static":
		return StaticVerifier{}, nil
	case "jwt":
		if secret == "" {
			return nil, fmt.Errorf("auth mode jwt requires a secret")
		}
		return JWTVerifier{Secret: []byte(secret)}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", mode)
	}
}
