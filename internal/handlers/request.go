package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodySize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so clients can map errors to inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return errors.New("request body too large")
		}
		return errors.New("invalid request body")
	}
	return nil
}

// fieldErrors validates v and returns one message per failing field, or nil.
func fieldErrors(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fieldLabel(fe.Field()) + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fieldLabel(fe.Field()) + " must be at least " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}

func fieldLabel(jsonName string) string {
	switch jsonName {
	case "firstName":
		return "First name"
	case "lastName":
		return "Last name"
	case "contactNumber":
		return "Contact number"
	case "email":
		return "Email"
	case "password":
		return "Password"
	default:
		return jsonName
	}
}
