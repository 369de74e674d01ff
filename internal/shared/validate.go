package shared

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"hotel_mapping/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator. Field names in errors follow json tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the struct tags of s and reports failures as a *domain.ValidationError.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Message: translate(fe)})
	}
	return out
}

var messages = map[string]string{
	"required":  "is required",
	"email":     "must be a valid email address",
	"url":       "must be a valid URL",
	"latitude":  "must be between -90 and 90",
	"longitude": "must be between -180 and 180",
}

var messagesWithParam = map[string]string{
	"min": "must be at least %s",
	"max": "must be at most %s",
	"gte": "must be greater than or equal to %s",
	"lte": "must be less than or equal to %s",
	"gt":  "must be greater than %s",
}

func translate(fe validator.FieldError) string {
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	if m, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(m, fe.Param())
	}
	return "failed " + fe.Tag() + " validation"
}
