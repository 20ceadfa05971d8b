package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

type errResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("encode response", slog.String("err", err.Error()))
	}
}

// respondError maps the upstream error taxonomy onto this server's
// status codes. Upstream connectivity and 5xx failures surface as 502,
// since the fault is on the other side of the proxy.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		status = http.StatusBadRequest
	} else {
		switch shopapi.KindOf(err) {
		case shopapi.KindValidation:
			status = http.StatusBadRequest
		case shopapi.KindNotFound:
			status = http.StatusNotFound
		case shopapi.KindNetwork, shopapi.KindServer:
			status = http.StatusBadGateway
		}
	}
	respondJSON(w, status, errResponse{Status: "error", Message: shopapi.MessageOf(err)})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
