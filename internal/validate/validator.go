// Package validate checks catalog records and classifies manufacturer names.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// FieldError is a single failed constraint
type FieldError struct {
	Field string
	Tag   string
	Param string
	Value interface{}
}

func (e FieldError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", e.Field, e.Param, e.Value)
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", e.Field, e.Param, e.Value)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field)
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Tag)
	}
}

// RecordError collects every failed constraint of one record
type RecordError struct {
	Record string
	Fields []FieldError
}

func (e *RecordError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	if e.Record == "" {
		return strings.Join(msgs, "; ")
	}
	return fmt.Sprintf("record %q: %s", e.Record, strings.Join(msgs, "; "))
}

// Missing reports whether any failure is an absent required field
func (e *RecordError) Missing() bool {
	for _, f := range e.Fields {
		if f.Tag == "required" {
			return true
		}
	}
	return false
}

// Struct validates v against its `validate` tags. The returned error is a
// *RecordError naming every failed field, or nil.
func Struct(record string, v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", record, err)
	}

	re := &RecordError{Record: record}
	for _, fe := range verrs {
		re.Fields = append(re.Fields, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
			Value: fe.Value(),
		})
	}
	return re
}
