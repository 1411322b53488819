package procurement

import (
	"context"
	"net/http"

	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	coreuser "github.com/frahmantamala/couture-bookkeeping/internal/core/user"
	"github.com/frahmantamala/couture-bookkeeping/internal/saree"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto SubmitDTO, submitter *coreuser.User) (*Record, error)
	ListPending(ctx context.Context, requester *coreuser.User) ([]*Record, error)
	ListAll(ctx context.Context) ([]*Record, error)
	Approve(ctx context.Context, id string, dto ApproveDTO, reviewer *coreuser.User) (*Record, error)
	Reject(ctx context.Context, id string, dto RejectDTO, reviewer *coreuser.User) (*Record, error)
	SubmitLegacy(ctx context.Context, dto SubmitDTO, submitter *coreuser.User) (*saree.Saree, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// SubmitProcurement handles POST /procurements
func (h *Handler) SubmitProcurement(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto SubmitDTO
	if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	record, err := h.Service.Submit(r.Context(), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

// ListPending handles GET /procurements/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	records, err := h.Service.ListPending(r.Context(), u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, PendingResponse{PendingProcurements: records})
}

// ApproveProcurement handles POST /procurements/{id}/approve. The body may be empty.
func (h *Handler) ApproveProcurement(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto ApproveDTO
	if appErr := h.DecodeJSON(r, &dto, true); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	record, err := h.Service.Approve(r.Context(), chi.URLParam(r, "id"), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// RejectProcurement handles POST /procurements/{id}/reject. The reason is read from
// the rejection_reason query parameter first, then from a JSON body.
func (h *Handler) RejectProcurement(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto RejectDTO
	if reason := r.URL.Query().Get("rejection_reason"); reason != "" {
		dto.RejectionReason = &reason
	} else if appErr := h.DecodeJSON(r, &dto, true); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	record, err := h.Service.Reject(r.Context(), chi.URLParam(r, "id"), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

// ListProcurements handles GET /procurements
func (h *Handler) ListProcurements(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, records)
}

// SubmitLegacyProcurement handles POST /procurements/legacy
func (h *Handler) SubmitLegacyProcurement(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var dto SubmitDTO
	if appErr := h.DecodeJSON(r, &dto, false); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	item, err := h.Service.SubmitLegacy(r.Context(), dto, u)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Deprecation", "true")
	h.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*coreuser.User, bool) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return u, true
}
