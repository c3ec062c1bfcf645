package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/amontes/storefront-backend/pkg/config"
	"github.com/amontes/storefront-backend/pkg/logger"
)

const (
	sessionCartCookie = "sessionCartId"
	sessionCartHeader = "X-Session-Cart"
)

// Session resolves the shopper identity for cart routes. The anonymous cart
// key comes from the sessionCartId cookie or the X-Session-Cart header; a
// bearer token, when present and valid, additionally identifies the user.
// Requests without either still pass through so handlers can answer with the
// proper session error.
func Session(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionCartID := sessionCartIDFromRequest(r)
			if sessionCartID != "" {
				ctx = WithSessionCartID(ctx, sessionCartID)
				if logg != nil {
					ctx = logg.WithSessionCartID(ctx, sessionCartID)
				}
			}

			if userID := userIDFromBearer(r, cfg); userID != "" {
				ctx = WithUserID(ctx, userID)
				if logg != nil {
					ctx = logg.WithUserID(ctx, userID)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionCartIDFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCartCookie); err == nil {
		if v := strings.TrimSpace(cookie.Value); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.Header.Get(sessionCartHeader))
}

// userIDFromBearer parses an optional access token. An invalid token degrades
// the request to anonymous rather than failing it.
func userIDFromBearer(r *http.Request, cfg config.JWTConfig) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" || cfg.Secret == "" {
		return ""
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return ""
	}

	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer))
	if err != nil || !parsed.Valid {
		return ""
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return ""
	}
	return claims.Subject
}
