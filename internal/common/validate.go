package common

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeAndValidate decodes the request body into dst and runs struct
// validation. Returns an AppError suitable for WriteError on failure.
func DecodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewAppError("INVALID_BODY", "invalid request body", http.StatusBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		details := map[string]string{}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return &AppError{
			Code:       "VALIDATION_ERROR",
			Message:    "request validation failed",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
			Details:    details,
		}
	}
	return nil
}
