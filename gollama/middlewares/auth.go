package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gollama/gollama/config"
	"gollama/gollama/sources/guest"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	SessionKeyKey contextKey = "session_key"
)

const (
	TokenCookie = "access_token"
	GuestCookie = "guest_session"
)

func GenerateToken(userID int, secret string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// userIDFromRequest resolves the authenticated user from the Authorization
// header or, failing that, the access_token cookie.
func userIDFromRequest(r *http.Request, secret string) (int, bool) {
	tokenStr := ""
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.Split(auth, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenStr = parts[1]
		}
	}
	if tokenStr == "" {
		if cookie, err := r.Cookie(TokenCookie); err == nil {
			tokenStr = cookie.Value
		}
	}
	if tokenStr == "" {
		return 0, false
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return int(userID), true
}

// AuthMiddleware requires a valid token. Used by the JSON API surface.
func AuthMiddleware(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := userIDFromRequest(r, cfg.JWTSecret)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerMiddleware resolves the viewer for the web chat surface: an
// authenticated user when a valid token is present, otherwise an anonymous
// guest identified by a session-key cookie minted on first visit.
func ViewerMiddleware(cfg config.Config, registry *guest.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, ok := userIDFromRequest(r, cfg.JWTSecret); ok {
				ctx := context.WithValue(r.Context(), UserIDKey, userID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			sessionKey := ""
			if cookie, err := r.Cookie(GuestCookie); err == nil {
				sessionKey = cookie.Value
			}
			if sessionKey == "" {
				sessionKey = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     GuestCookie,
					Value:    sessionKey,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			registry.Touch(sessionKey)
			ctx := context.WithValue(r.Context(), SessionKeyKey, sessionKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// SessionKeyFromContext returns the guest session key, if any.
func SessionKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(SessionKeyKey).(string)
	return key, ok
}
