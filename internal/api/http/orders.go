package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) getOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.q.Orders(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.q.OrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (s *Server) deliverOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := s.mutations.DeliverOrder(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if order == nil {
		// Transition accepted without a body; the reconciling refetch
		// will surface the authoritative state.
		respondJSON(w, http.StatusAccepted, map[string]string{"status": "success"})
		return
	}
	respondJSON(w, http.StatusOK, order)
}
