// Package validator provides custom validation functions for Gin's binding engine
// and the translation of validation failures into per-field API errors.
package validator

import (
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tokenRegex = regexp.MustCompile(`^[0-9]{6}$`)

// maxAmount is the largest value a decimal(10,2) column holds.
const maxAmount = 99999999.99

// Register registers all custom validators with the Gin binding engine.
// Field names reported by the engine are the json names.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation("token6", validateToken)
		_ = v.RegisterValidation("money", validateMoney)
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func validateToken(fl validator.FieldLevel) bool {
	return tokenRegex.MatchString(fl.Field().String())
}

func validateMoney(fl validator.FieldLevel) bool {
	f := fl.Field()
	var amount float64
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		amount = f.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		amount = float64(f.Int())
	default:
		return false
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return false
	}
	return amount > 0 && amount <= maxAmount
}
