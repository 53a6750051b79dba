package validator

import (
	"encoding/json"
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

const defaultMessage = "Valor no válido"

// MalformedBodyMessage is reported when the request body is not valid JSON.
const MalformedBodyMessage = "El cuerpo de la solicitud no es un JSON válido"

// Locations a field error can point at.
const (
	LocationBody   = "body"
	LocationParams = "params"
)

// FieldError is a single invalid input field as returned to API clients.
type FieldError struct {
	Type     string      `json:"type"`
	Value    interface{} `json:"value"`
	Msg      string      `json:"msg"`
	Path     string      `json:"path"`
	Location string      `json:"location"`
}

// NewFieldError builds a FieldError for a field that failed outside the
// binding engine, such as a path parameter.
func NewFieldError(path, location, msg string, value interface{}) FieldError {
	return FieldError{Type: "field", Value: value, Msg: msg, Path: path, Location: location}
}

// NewBodyError builds the single error reported for a body that could not
// be decoded at all. It names no field.
func NewBodyError(msg string) FieldError {
	return FieldError{Type: "body", Msg: msg, Location: LocationBody}
}

// Translate converts a binding error for obj into field errors. The message
// for a field comes from its `msg_<tag>` struct tag, then its `msg` tag.
// A type mismatch of the whole body, such as an array sent for an object,
// names no field and is left to the field rules. It returns nil when err
// carries no field information.
func Translate(obj interface{}, err error, location string) []FieldError {
	var out []FieldError
	seen := map[string]bool{}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		path := typeErr.Field
		seen[path] = true
		out = append(out, NewFieldError(path, location, messageFor(obj, path, "type", true), typeErr.Value))
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if seen[fe.Field()] {
				continue
			}
			seen[fe.Field()] = true
			out = append(out, NewFieldError(fe.Field(), location, messageFor(obj, fe.StructField(), fe.Tag(), false), fe.Value()))
		}
	}
	return out
}

// messageFor looks up the message tags of a field of obj, found either by
// its Go name or by its json name.
func messageFor(obj interface{}, name, tag string, byJSON bool) string {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return defaultMessage
	}

	var field reflect.StructField
	var ok bool
	if byJSON {
		for i := 0; i < t.NumField(); i++ {
			if jsonFieldName(t.Field(i)) == name {
				field, ok = t.Field(i), true
				break
			}
		}
	} else {
		field, ok = t.FieldByName(name)
	}
	if !ok {
		return defaultMessage
	}

	if msg := field.Tag.Get("msg_" + tag); msg != "" {
		return msg
	}
	if msg := field.Tag.Get("msg"); msg != "" {
		return msg
	}
	return defaultMessage
}
