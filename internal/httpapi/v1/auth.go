package v1

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthConfig enables HS256 bearer authentication when Secret is non-empty.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
	// TokenTTL bounds tokens minted by POST /v1/sessions. Zero means 24h.
	TokenTTL time.Duration
}

func (c AuthConfig) enabled() bool { return c.Secret != "" }

type JWTClaims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Audience  any    `json:"aud,omitempty"` // string or []string
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

type ctxKey string

const ctxKeySubject ctxKey = "authSubject"

func subjectFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxKeySubject).(uuid.UUID)
	return id, ok
}

func parseBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(h[len("Bearer "):]), true
}

func hs256(secret, signingInput string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func verifyHS256(token, secret string) (JWTClaims, error) {
	var empty JWTClaims
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return empty, errors.New("invalid token format")
	}
	headerB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return empty, errors.New("bad header b64")
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return empty, errors.New("bad payload b64")
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return empty, errors.New("bad signature b64")
	}

	var hdr struct{ Alg, Typ string }
	if err := json.Unmarshal(headerB, &hdr); err != nil {
		return empty, errors.New("bad header json")
	}
	if !strings.EqualFold(hdr.Alg, "HS256") {
		return empty, errors.New("unsupported alg")
	}
	if !hmac.Equal(sigB, hs256(secret, parts[0]+"."+parts[1])) {
		return empty, errors.New("invalid signature")
	}

	var claims JWTClaims
	if err := json.Unmarshal(payloadB, &claims); err != nil {
		return empty, errors.New("bad claims json")
	}
	return claims, nil
}

// signHS256 mints a compact HS256 token for claims.
func signHS256(claims JWTClaims, secret string) (string, error) {
	header, _ := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	input := base64.RawURLEncoding.EncodeToString(header) + "." + base64.RawURLEncoding.EncodeToString(payload)
	return input + "." + base64.RawURLEncoding.EncodeToString(hs256(secret, input)), nil
}

func audContains(aud any, expected string) bool {
	if expected == "" {
		return true
	}
	switch v := aud.(type) {
	case string:
		return strings.EqualFold(v, expected)
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && strings.EqualFold(s, expected) {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if strings.EqualFold(s, expected) {
				return true
			}
		}
	}
	return false
}

// publicRoute reports whether a request may skip authentication.
func publicRoute(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return true
	case "/v1/users", "/v1/sessions":
		return r.Method == http.MethodPost
	}
	return false
}

// authJWT returns a middleware that enforces Authorization: Bearer JWT (HS256)
// and stores the token subject as the caller's user id. It returns nil when
// auth is not configured.
func authJWT(cfg AuthConfig) func(http.Handler) http.Handler {
	if !cfg.enabled() {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicRoute(r) {
				next.ServeHTTP(w, r)
				return
			}
			tok, ok := parseBearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}
			claims, err := verifyHS256(tok, cfg.Secret)
			if err != nil {
				unauthorized(w)
				return
			}
			now := time.Now().Unix()
			if claims.NotBefore != 0 && now < claims.NotBefore {
				unauthorized(w)
				return
			}
			if claims.ExpiresAt != 0 && now >= claims.ExpiresAt {
				unauthorized(w)
				return
			}
			if cfg.Issuer != "" && !strings.EqualFold(claims.Issuer, cfg.Issuer) {
				unauthorized(w)
				return
			}
			if !audContains(claims.Audience, cfg.Audience) {
				unauthorized(w)
				return
			}
			sub, err := uuid.Parse(claims.Subject)
			if err != nil {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySubject, sub)))
		})
	}
}

// issueToken mints a session token for userID.
func (s *Server) issueToken(userID uuid.UUID, now time.Time) (string, time.Time, error) {
	ttl := s.auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := now.Add(ttl)
	claims := JWTClaims{Issuer: s.auth.Issuer, Subject: userID.String(), IssuedAt: now.Unix(), ExpiresAt: exp.Unix()}
	if s.auth.Audience != "" {
		claims.Audience = s.auth.Audience
	}
	tok, err := signHS256(claims, s.auth.Secret)
	return tok, exp, err
}
