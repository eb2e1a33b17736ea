package response

import (
	"encoding/json"
	"net/http"

	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/validation"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes err using its status code and public message.
func Error(w http.ResponseWriter, err *apperror.Error) {
	JSON(w, err.StatusCode(), ErrorBody{Success: false, Message: err.Message})
}

// ValidationError writes a 400 listing every rejected field.
func ValidationError(w http.ResponseWriter, fieldErrs []validation.FieldError) {
	message := "Invalid request data"
	if len(fieldErrs) > 0 {
		message = fieldErrs[0].Message
	}

	JSON(w, http.StatusBadRequest, ErrorBody{
		Success: false,
		Message: message,
		Errors:  fieldErrs,
	})
}
