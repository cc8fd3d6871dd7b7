package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/talgatbekov/bazarline-backend/api/responses"
	pkgauth "github.com/talgatbekov/bazarline-backend/pkg/auth"
	"github.com/talgatbekov/bazarline-backend/pkg/config"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
	"github.com/talgatbekov/bazarline-backend/pkg/shopapi"
)

// Auth validates a bearer token and seeds the request context with the
// claims. The raw token also rides along so upstream calls made on the
// shopper's behalf carry the same credential.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.UserID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing subject"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
			ctx = context.WithValue(ctx, ctxRole, string(claims.Role))
			ctx = context.WithValue(ctx, ctxAuthKey, claims.ID)
			ctx = shopapi.WithBearer(ctx, token)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    claims.UserID,
					"actor_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
