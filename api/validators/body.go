package validators

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/courierlabs/robocourier-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodeJSONBody decodes a JSON request body into dst and runs any
// struct tag validation. Unknown keys are tolerated, type mismatches
// are not.
func DecodeJSONBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New(errors.CodeValidation, "request body is required")
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New(errors.CodeValidation, "malformed JSON body")
	}

	return Check(dst)
}

// Check runs struct tag validation against an already decoded value.
func Check(dst any) error {
	value := reflect.ValueOf(dst)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}

	if err := validate.Struct(value.Interface()); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok && len(fieldErrors) > 0 {
			first := fieldErrors[0]
			return errors.New(errors.CodeValidation, fmt.Sprintf("field %s failed on %s", first.Field(), first.Tag()))
		}
		return errors.New(errors.CodeValidation, "invalid request body")
	}
	return nil
}
