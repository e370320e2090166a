package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperr "github.com/journeyline/journeyline/pkg/errors"
	"github.com/journeyline/journeyline/pkg/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify maps transport and store errors to codes, then defers to the
// engine classifier.
func classify(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.ErrCodeNodeNotFound, err, "node not found")
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.ErrCodeTimeout, err, "request timed out")
	}
	return apperr.Classify(err)
}

func writeError(w http.ResponseWriter, err error) {
	err = classify(err)
	code := apperr.GetCode(err)
	msg := apperr.UserMessage(err)
	if code == apperr.ErrCodeInternal {
		msg = "internal error"
	}
	writeJSON(w, apperr.HTTPStatus(code), errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func notFound(format string, args ...any) error {
	return apperr.New(apperr.ErrCodeNotFound, format, args...)
}

func invalid(format string, args ...any) error {
	return apperr.New(apperr.ErrCodeInvalidInput, format, args...)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
