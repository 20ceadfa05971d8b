package shopapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies upstream failures for the caller: transport failures,
// 4xx validation rejections, missing entities and 5xx server faults.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindServer     Kind = "server"
)

// APIError is an upstream request failure. Message carries the
// server-provided message when one was present, otherwise the
// per-operation default.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("shopapi: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("shopapi: %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, KindNetwork for errors that never
// produced a response.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

// MessageOf extracts the surfaced message, falling back to the error
// text.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Retryable reports whether a read may be retried: transport failures
// and server faults only. Validation rejections and missing entities are
// final.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindServer:
		return true
	default:
		return false
	}
}

func networkError(fallback string, err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: fallback, Err: err}
}

func statusError(status int, body []byte, fallback string) *APIError {
	kind := KindValidation
	switch {
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status >= http.StatusInternalServerError:
		kind = KindServer
	}

	message := fallback
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}

	return &APIError{Kind: kind, Status: status, Message: message}
}
