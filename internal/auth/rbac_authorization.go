package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
)

type RBACAuthorization struct {
	*transport.BaseHandler
	checker RoleChecker
	logger  *slog.Logger
}

func NewRBACAuthorization(checker RoleChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		checker:     checker,
		logger:      logger,
	}
}

// RequireRoles lets the request through only when the authenticated user holds one of roles.
// Must be mounted behind AuthMiddleware.
func (ra *RBACAuthorization) RequireRoles(roles ...coreuser.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: user not found in context")
				ra.HandleError(w, internal.ErrMissingToken)
				return
			}

			if !ra.checker.HasAnyRole(user, roles...) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", user.ID,
					"role", user.Role,
					"required_roles", roles)
				ra.HandleError(w, internal.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireManager() func(http.Handler) http.Handler {
	return ra.RequireRoles(coreuser.ReviewerRoles...)
}
