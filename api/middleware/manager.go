package middleware

import (
	"net/http"

	"github.com/talgatbekov/bazarline-backend/api/responses"
	"github.com/talgatbekov/bazarline-backend/internal/manager"
	"github.com/talgatbekov/bazarline-backend/pkg/enums"
	pkgerrors "github.com/talgatbekov/bazarline-backend/pkg/errors"
	"github.com/talgatbekov/bazarline-backend/pkg/logger"
)

// RequireManager evaluates the authorization gate and admits only settled
// authorized outcomes. Everything else fails closed: no dashboard data is
// fetched on behalf of an unauthorized, unsettled, or errored gate.
func RequireManager(gate *manager.Gate, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := UserIDFromContext(ctx)
			if userID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			result := gate.Evaluate(ctx, userID, AuthKeyFromContext(ctx))
			switch result.State {
			case enums.GateStateAuthorized:
				next.ServeHTTP(w, r)
			case enums.GateStateChecking:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "authorization check in progress"))
			case enums.GateStateError:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeTimeout, result.Message))
			default:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "manager access required"))
			}
		})
	}
}
