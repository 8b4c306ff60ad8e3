// Package httpx holds the JSON plumbing shared by the HTTP transports.
package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable marks failures of an upstream dependency.
var ErrUnavailable = errors.New("upstream unavailable")

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Classifier maps domain errors to an HTTP status and machine code.
// It returns ok=false for errors it does not recognise.
type Classifier func(err error) (status int, code string, ok bool)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("write response body")
	}
}

// WriteError writes the error envelope. Unclassified errors are reported as
// INTERNAL without leaking their message.
func WriteError(w http.ResponseWriter, err error, classify ...Classifier) {
	status, code, msg := StatusFromError(err, classify...)
	WriteJSON(w, status, ErrorBody{Code: code, Message: msg})
}

func StatusFromError(err error, classify ...Classifier) (int, string, string) {
	for _, c := range classify {
		if status, code, ok := c(err); ok {
			return status, code, err.Error()
		}
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "UNAVAILABLE", err.Error()
	}
	return http.StatusInternalServerError, "INTERNAL", "internal error"
}

// DecodeJSON reads a JSON body, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode body")
	}
	return nil
}
