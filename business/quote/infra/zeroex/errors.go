package zeroex

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fd1az/swap-settler/internal/apperror"
	"github.com/fd1az/swap-settler/internal/httpclient"
)

// APIError is an error response from the 0x API.
type APIError struct {
	Status  int             `json:"-"`
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *APIError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("0x API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("0x API error %s (HTTP %d): %s", e.Name, e.Status, e.Message)
}

// Unavailable reports whether the failure is on the service side.
func (e *APIError) Unavailable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// errorHandler parses 0x error bodies. Unparseable bodies keep the raw text.
func errorHandler(statusCode int, body []byte) error {
	if statusCode < http.StatusBadRequest {
		return nil
	}

	apiErr := &APIError{Status: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Name == "" && apiErr.Message == "") {
		apiErr.Name = ""
		apiErr.Message = string(body)
	}
	apiErr.Status = statusCode
	return apiErr
}

// classify maps a request failure onto the quote service error taxonomy.
func classify(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Unavailable() {
			return apperror.External(apperror.CodeServiceUnavailable, op, err)
		}
		msg := apiErr.Message
		if apiErr.Name != "" {
			msg = apiErr.Name + ": " + apiErr.Message
		}
		return apperror.New(apperror.CodeAggregatorRejected,
			apperror.WithMessage(msg),
			apperror.WithContext(op),
			apperror.WithCause(err))
	}

	var decodeErr *httpclient.DecodeError
	if errors.As(err, &decodeErr) {
		return apperror.External(apperror.CodeMalformedResponse, op, err)
	}

	return apperror.External(apperror.CodeServiceUnavailable, op, err)
}

// countsAsSuccess keeps caller mistakes and bad payloads from tripping the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return !apiErr.Unavailable()
	}
	var decodeErr *httpclient.DecodeError
	return errors.As(err, &decodeErr)
}
