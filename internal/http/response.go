package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/service"
)

const invalidDataMessage = "The given data was invalid."

// ErrorBody is the error shape clients parse: a message plus per-field messages.
type ErrorBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// WriteJSON writes data as the raw response body.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a message-only error.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Message: message})
}

// WriteValidation writes a 422 naming the offending field.
func WriteValidation(w http.ResponseWriter, field, message string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Message: invalidDataMessage,
		Errors:  map[string][]string{field: {message}},
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Malformed JSON body.")
		return false
	}
	return true
}

// writeDomainError maps service and ledger errors onto statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var fieldErr *service.FieldError
	switch {
	case errors.As(err, &fieldErr):
		WriteValidation(w, fieldErr.Field, fieldErr.Message)
	case errors.Is(err, membership.ErrRoleTaken):
		WriteError(w, http.StatusConflict, "This role is already assigned to another member of the section.")
	case errors.Is(err, membership.ErrAlreadyMember):
		WriteError(w, http.StatusConflict, "The user is already a member of this section.")
	case errors.Is(err, membership.ErrNotMember):
		WriteValidation(w, "user_id", "The user is not a member of this section.")
	case errors.Is(err, membership.ErrUnknownRole):
		WriteValidation(w, "role_id", "The selected role is invalid.")
	case errors.Is(err, membership.ErrUnknownSection):
		WriteValidation(w, "section_id", "The selected section is invalid.")
	case errors.Is(err, membership.ErrInvalidDate):
		WriteValidation(w, "date", "The date is not a valid date.")
	case errors.Is(err, repo.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Not Found")
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, http.StatusForbidden, "This action is unauthorized.")
	default:
		log.Error().Err(err).Msg("unhandled error")
		WriteError(w, http.StatusInternalServerError, "Server Error")
	}
}
