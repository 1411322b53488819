package expense

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/frahmantamala/couture-bookkeeping/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitDTO, submitter *coreuser.User) (*Expense, error)
	ListAll(ctx context.Context) ([]*Expense, error)
	UpdateStatus(ctx context.Context, id string, dto StatusUpdateDTO, reviewer *coreuser.User) (*Expense, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// SubmitExpense handles POST /expenses
func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.Logger.Error("SubmitExpense: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SubmitDTO
	if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	e, err := h.Service.Submit(r.Context(), dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

// ListExpenses handles GET /expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, expenses)
}

// UpdateExpenseStatus handles PATCH /expenses/{id}/status. The new status comes from
// the status_update query parameter or a {"status": ...} body.
func (h *Handler) UpdateExpenseStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.Logger.Error("UpdateExpenseStatus: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto StatusUpdateDTO
	if status := r.URL.Query().Get("status_update"); status != "" {
		dto.Status = status
	} else if appErr := h.DecodeJSON(r, &dto, true); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	e, err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), dto, user)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}
