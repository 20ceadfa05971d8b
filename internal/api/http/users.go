package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

func (s *Server) getCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.q.Customers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := s.q.CustomerByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (s *Server) getCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.q.Categories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds shopapi.Credentials
	if err := decodeBody(r, &creds); err != nil {
		respondError(w, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid login payload", Err: err})
		return
	}
	user, err := s.api.Login(r.Context(), creds)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var in shopapi.SignupInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid signup payload", Err: err})
		return
	}
	user, err := s.api.Signup(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.api.Me(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProductForm); err != nil {
		respondError(w, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid profile form", Err: err})
		return
	}
	in := shopapi.ProfileInput{
		Name:  r.FormValue("name"),
		Email: r.FormValue("email"),
	}
	photo, err := formUpload(r, "photo")
	if err != nil {
		respondError(w, err)
		return
	}
	in.Photo = photo

	user, err := s.api.UpdateMe(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (s *Server) updatePassword(w http.ResponseWriter, r *http.Request) {
	var in shopapi.PasswordInput
	if err := decodeBody(r, &in); err != nil {
		respondError(w, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid password payload", Err: err})
		return
	}
	if err := s.api.UpdatePassword(r.Context(), in); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
