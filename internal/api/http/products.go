package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

const maxProductForm = 32 << 20 // 32 MiB, covers cover plus gallery uploads

func (s *Server) getProducts(w http.ResponseWriter, r *http.Request) {
	params := listParams(r)
	if params == (shopapi.ListParams{}) {
		// The unfiltered list is the cached view the dashboard and the
		// optimistic mutations share; filtered reads pass through.
		list, err := s.q.Products(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
		return
	}

	list, err := s.api.Products(r.Context(), params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.q.ProductByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) getProductInsights(w http.ResponseWriter, r *http.Request) {
	d, err := s.analytics.ProductDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	in, err := productInput(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.mutations.CreateProduct(r.Context(), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	in, err := productInput(r)
	if err != nil {
		respondError(w, err)
		return
	}
	p, err := s.mutations.UpdateProduct(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.mutations.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func listParams(r *http.Request) shopapi.ListParams {
	q := r.URL.Query()
	params := shopapi.ListParams{
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 1 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
	}
	if params.Category == "all" {
		params.Category = ""
	}
	return params
}

// productInput accepts the same multipart form the upstream does, so
// the admin frontend's existing submit can point here unchanged.
func productInput(r *http.Request) (shopapi.ProductInput, error) {
	if err := r.ParseMultipartForm(maxProductForm); err != nil {
		return shopapi.ProductInput{}, &shopapi.APIError{
			Kind:    shopapi.KindValidation,
			Message: "Invalid product form",
			Err:     err,
		}
	}

	in := shopapi.ProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return shopapi.ProductInput{}, &shopapi.APIError{
				Kind:    shopapi.KindValidation,
				Message: "Invalid product price",
				Err:     err,
			}
		}
		in.Price = price
	}

	if cover, err := formUpload(r, "imageCover"); err != nil {
		return shopapi.ProductInput{}, err
	} else if cover != nil {
		in.ImageCover = cover
	}

	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["images"] {
			f, err := fh.Open()
			if err != nil {
				return shopapi.ProductInput{}, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid file upload", Err: err}
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return shopapi.ProductInput{}, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid file upload", Err: err}
			}
			in.Images = append(in.Images, shopapi.Upload{Filename: fh.Filename, Content: content})
		}
	}

	return in, nil
}

func formUpload(r *http.Request, field string) (*shopapi.Upload, error) {
	f, fh, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid file upload", Err: err}
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, &shopapi.APIError{Kind: shopapi.KindValidation, Message: "Invalid file upload", Err: err}
	}
	return &shopapi.Upload{Filename: fh.Filename, Content: content}, nil
}
