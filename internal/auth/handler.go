package auth

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/frahmantamala/couture-bookkeeping/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service AuthService
}

func NewHandler(svc AuthService) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// Login handles POST /token. It accepts the OAuth2 password form
// (username, password) as well as a JSON body.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			h.HandleError(w, internal.NewValidationError("invalid form body", internal.ErrCodeInvalidBody))
			return
		}
		dto.Username = r.PostFormValue("username")
		dto.Password = r.PostFormValue("password")
	default:
		if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
			h.HandleError(w, appErr)
			return
		}
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.WriteJSON(w, http.StatusOK, tokens)
}

// AuthMiddleware resolves the bearer token to a user and stores it in the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleError(w, internal.ErrMissingToken)
			return
		}

		u, err := h.Service.ResolveUser(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithUser(r.Context(), u)
		ctx = logger.With(ctx, "user_id", u.ID, "role", u.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
