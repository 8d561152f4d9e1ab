// Package api holds the JSON envelope shared by every admin API handler.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cloo-solutions/litbot/internal/domain"
)

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error string `json:"error"`
}

// PartialResponse carries a result that was only partly produced, such as a
// sweep interrupted by a keyword lookup failure.
type PartialResponse struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error"`
}

const internalErrorMessage = "internal server error"

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("api: failed to encode response: %v", err)
		}
	}
}

func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, SuccessResponse{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// Partial writes data together with the error that cut it short.
func Partial(w http.ResponseWriter, data interface{}, err error) {
	JSON(w, DomainErrorToHTTP(err), PartialResponse{Data: data, Error: clientMessage(err)})
}

// DomainErrorToHTTP maps domain errors to HTTP status codes
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation, domain.ErrCodeInvalidOperation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists:
		return http.StatusConflict
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrCodeForbidden:
		return http.StatusForbidden
	case domain.ErrCodeUpstream:
		return http.StatusBadGateway
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the status for err. Domain errors are shown to the
// caller; anything else is logged and replaced by a generic message so
// database and driver details stay server-side.
func HandleError(w http.ResponseWriter, err error) {
	Error(w, DomainErrorToHTTP(err), clientMessage(err))
}

func clientMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return err.Error()
	}
	log.Printf("api: %v", err)
	return internalErrorMessage
}
