// Package validator registers the request rules used in binding tags and
// turns binding failures into client messages.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bluemoon/internal/domain"
)

var once sync.Once

// Register adds the "date" (YYYY-MM-DD or empty) and "period" (YYYY-MM or
// empty) rules to gin's validator and reports fields by their JSON names.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, ok := domain.ParseDate(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
			return domain.ValidPeriod(fl.Field().String())
		})
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	Register()
	err := binding.Validator.ValidateStruct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Message renders a bind or validation error for the client.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describe(fe.Field(), fe.Tag()))
		}
		sort.Strings(parts)
		return strings.Join(parts, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("%s has the wrong type", typeErr.Field)
	}
	return "invalid request body"
}

func describe(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "date":
		return field + " must be YYYY-MM-DD"
	case "period":
		return field + " must be YYYY-MM"
	case "oneof":
		return field + " has an unsupported value"
	case "gt", "gte", "min", "max", "lte":
		return field + " is out of range"
	default:
		return field + " is invalid"
	}
}

func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
