package saree

import (
	"context"
	"net/http"

	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Saree, error)
	GetByID(ctx context.Context, id string) (*Saree, error)
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

// ListSarees handles GET /sarees
func (h *Handler) ListSarees(w http.ResponseWriter, r *http.Request) {
	sarees, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sarees)
}

// GetSaree handles GET /sarees/{id}
func (h *Handler) GetSaree(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, s)
}
