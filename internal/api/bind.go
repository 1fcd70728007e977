package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/dispatch/pkg/notify"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// decode reads a JSON body into dst and validates it when dst is a struct
// with validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return newHTTPError(http.StatusRequestEntityTooLarge, "too_large", "request body too large", errors.Join(errBodyTooLarge, err))
		case isNotifyValidation(err):
			return unprocessable(err.Error(), err, nil)
		default:
			return badRequest("invalid JSON body", err)
		}
	}
	return check(validate.Struct(dst))
}

// check converts validator output into a 422 with per-field details.
func check(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest("invalid request", err)
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{
			Field: strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+"."),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return unprocessable("request validation failed", err, details)
}

func isNotifyValidation(err error) bool {
	for _, target := range []error{
		notify.ErrUnknownKind,
		notify.ErrInvalidPriority,
		notify.ErrNoRecipients,
		notify.ErrPayloadMismatch,
		notify.ErrNoItems,
		notify.ErrInvalidAlertType,
		notify.ErrInvalidSeverity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
